package models

import (
	"testing"
	"time"
)

func TestParseMinuteOfDay(t *testing.T) {
	cases := []struct {
		input   string
		want    MinuteOfDay
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"12:30", 750, false},
		{"23:59", 1439, false},
		{" 09:15 ", 555, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"0800", 0, true},
		{"ab:cd", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseMinuteOfDay(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseMinuteOfDay(%q): expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMinuteOfDay(%q): unexpected error %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseMinuteOfDay(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestMinuteOfDayString(t *testing.T) {
	if got := MinuteOfDay(480).String(); got != "08:00" {
		t.Errorf("expected 08:00, got %s", got)
	}
	if got := MinuteOfDay(1050).String(); got != "17:30" {
		t.Errorf("expected 17:30, got %s", got)
	}
}

func TestMinuteOfDayAt(t *testing.T) {
	date := time.Date(2026, 1, 5, 15, 42, 7, 0, time.UTC)
	got := MinuteOfDay(510).At(date)
	want := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("At = %v, want %v", got, want)
	}
}

func TestParseWeekdaySet(t *testing.T) {
	set, err := ParseWeekdaySet("1,2,3,4,5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !set.Has(time.Monday) || !set.Has(time.Friday) {
		t.Errorf("expected weekdays present")
	}
	if set.Has(time.Sunday) || set.Has(time.Saturday) {
		t.Errorf("expected weekend absent")
	}
	if got := set.String(); got != "1,2,3,4,5" {
		t.Errorf("round trip = %q", got)
	}

	empty, err := ParseWeekdaySet("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Errorf("expected empty set")
	}

	if _, err := ParseWeekdaySet("1,7"); err == nil {
		t.Errorf("expected error for out-of-range weekday")
	}
	if _, err := ParseWeekdaySet("1,x"); err == nil {
		t.Errorf("expected error for non-numeric weekday")
	}
}

func TestWorkScheduleValidate(t *testing.T) {
	lunch := func(start, end MinuteOfDay) (*MinuteOfDay, *MinuteOfDay) {
		return &start, &end
	}

	schedule := WorkSchedule{WorkStart: 480, WorkEnd: 1080}
	if err := schedule.Validate(); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}

	schedule.LunchStart, schedule.LunchEnd = lunch(720, 780)
	if err := schedule.Validate(); err != nil {
		t.Errorf("valid schedule with lunch rejected: %v", err)
	}

	schedule = WorkSchedule{WorkStart: 1080, WorkEnd: 480}
	if err := schedule.Validate(); err == nil {
		t.Errorf("expected error for inverted working window")
	}

	schedule = WorkSchedule{WorkStart: 480, WorkEnd: 1080}
	schedule.LunchStart, schedule.LunchEnd = lunch(780, 720)
	if err := schedule.Validate(); err == nil {
		t.Errorf("expected error for inverted lunch window")
	}

	schedule.LunchStart, schedule.LunchEnd = lunch(420, 780)
	if err := schedule.Validate(); err == nil {
		t.Errorf("expected error for lunch before work start")
	}

	schedule.LunchStart, schedule.LunchEnd = lunch(720, 1140)
	if err := schedule.Validate(); err == nil {
		t.Errorf("expected error for lunch past work end")
	}

	start := MinuteOfDay(720)
	schedule = WorkSchedule{WorkStart: 480, WorkEnd: 1080, LunchStart: &start}
	if err := schedule.Validate(); err == nil {
		t.Errorf("expected error for half-set lunch window")
	}
}
