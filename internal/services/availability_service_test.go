package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type stubScheduleLister struct {
	schedules []models.WorkSchedule
	err       error
}

func (s *stubScheduleLister) ListByOwner(ctx context.Context, ownerID int64) ([]models.WorkSchedule, error) {
	return s.schedules, s.err
}

type stubServiceReader struct {
	service *models.Service
	err     error
}

func (s *stubServiceReader) GetByID(ctx context.Context, id, ownerID int64) (*models.Service, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.service == nil {
		return nil, pgx.ErrNoRows
	}
	return s.service, nil
}

type stubAppointmentReader struct {
	active []models.Appointment

	conflict          bool
	conflictCalled    bool
	excludingCalled   bool
	gotProfessionalID int64
	gotStart          time.Time
	gotEnd            time.Time
	gotExcludedID     int64
}

func (s *stubAppointmentReader) ListActiveBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.Appointment, error) {
	return s.active, nil
}

func (s *stubAppointmentReader) HasConflict(ctx context.Context, ownerID, professionalID int64, start, end time.Time) (bool, error) {
	s.conflictCalled = true
	s.gotProfessionalID = professionalID
	s.gotStart = start
	s.gotEnd = end
	return s.conflict, nil
}

func (s *stubAppointmentReader) HasConflictExcluding(ctx context.Context, ownerID, professionalID int64, start, end time.Time, excludedID int64) (bool, error) {
	s.excludingCalled = true
	s.gotProfessionalID = professionalID
	s.gotStart = start
	s.gotEnd = end
	s.gotExcludedID = excludedID
	return s.conflict, nil
}

func mustWeekdays(t *testing.T, csv string) models.WeekdaySet {
	t.Helper()
	set, err := models.ParseWeekdaySet(csv)
	if err != nil {
		t.Fatalf("ParseWeekdaySet(%q): %v", csv, err)
	}
	return set
}

func weekdaySchedule(t *testing.T, professionalID int64) models.WorkSchedule {
	t.Helper()
	lunchStart := models.MinuteOfDay(12 * 60)
	lunchEnd := models.MinuteOfDay(13 * 60)
	return models.WorkSchedule{
		ProfessionalID: professionalID,
		WorkDays:       mustWeekdays(t, "1,2,3,4,5"),
		WorkStart:      8 * 60,
		WorkEnd:        18 * 60,
		LunchStart:     &lunchStart,
		LunchEnd:       &lunchEnd,
	}
}

func slotsByTime(slots []TimeSlot) map[string]int {
	byTime := make(map[string]int, len(slots))
	for _, slot := range slots {
		byTime[slot.Time] = slot.AvailableProfessionals
	}
	return byTime
}

// Monday.
var testDay = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

func TestTimeSlotsSchedule(t *testing.T) {
	svc := NewAvailabilityService(
		&stubScheduleLister{schedules: []models.WorkSchedule{weekdaySchedule(t, 7)}},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 60}},
		&stubAppointmentReader{},
		30,
	)

	slots, err := svc.TimeSlots(context.Background(), 1, testDay, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 20 {
		t.Fatalf("expected 20 marks from 08:00 to 17:30, got %d", len(slots))
	}
	if slots[0].Time != "08:00" || slots[len(slots)-1].Time != "17:30" {
		t.Fatalf("span = %s..%s", slots[0].Time, slots[len(slots)-1].Time)
	}

	byTime := slotsByTime(slots)
	cases := map[string]int{
		"08:00": 1, // fits before lunch
		"11:00": 1, // ends exactly at lunch start
		"11:30": 0, // would run into lunch
		"12:00": 0, // lunch
		"12:30": 0, // still overlaps lunch
		"13:00": 1, // lunch over
		"17:00": 1, // ends exactly at closing
		"17:30": 0, // would run past closing
	}
	for mark, want := range cases {
		if got, ok := byTime[mark]; !ok {
			t.Errorf("mark %s missing", mark)
		} else if got != want {
			t.Errorf("mark %s: count = %d, want %d", mark, got, want)
		}
	}
}

func TestTimeSlotsBackToBack(t *testing.T) {
	professionalID := int64(7)
	appointments := &stubAppointmentReader{
		active: []models.Appointment{
			{
				ProfessionalID: &professionalID,
				Date:           time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
				EndDate:        time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := NewAvailabilityService(
		&stubScheduleLister{schedules: []models.WorkSchedule{weekdaySchedule(t, professionalID)}},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 60}},
		appointments,
		30,
	)

	slots, err := svc.TimeSlots(context.Background(), 1, testDay, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byTime := slotsByTime(slots)

	// A booking ending at 11:00 leaves 11:00 free; starts overlapping
	// [10:00, 11:00) are blocked, as is 09:30 which would run into it.
	cases := map[string]int{
		"09:00": 1,
		"09:30": 0,
		"10:00": 0,
		"10:30": 0,
		"11:00": 1,
	}
	for mark, want := range cases {
		if byTime[mark] != want {
			t.Errorf("mark %s: count = %d, want %d", mark, byTime[mark], want)
		}
	}
}

func TestTimeSlotsCountsProfessionals(t *testing.T) {
	busyID := int64(2)
	appointments := &stubAppointmentReader{
		active: []models.Appointment{
			{
				ProfessionalID: &busyID,
				Date:           time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
				EndDate:        time.Date(2026, 1, 5, 11, 0, 0, 0, time.UTC),
			},
		},
	}
	svc := NewAvailabilityService(
		&stubScheduleLister{schedules: []models.WorkSchedule{
			weekdaySchedule(t, 1),
			weekdaySchedule(t, 2),
		}},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 60}},
		appointments,
		30,
	)

	slots, err := svc.TimeSlots(context.Background(), 1, testDay, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	byTime := slotsByTime(slots)
	if byTime["09:00"] != 2 {
		t.Errorf("09:00: count = %d, want 2", byTime["09:00"])
	}
	if byTime["10:00"] != 1 {
		t.Errorf("10:00: count = %d, want 1", byTime["10:00"])
	}
	if byTime["11:00"] != 2 {
		t.Errorf("11:00: count = %d, want 2", byTime["11:00"])
	}
}

func TestTimeSlotsStaggeredSpan(t *testing.T) {
	early := weekdaySchedule(t, 1)
	late := weekdaySchedule(t, 2)
	late.WorkStart = 10 * 60
	late.WorkEnd = 20 * 60
	late.LunchStart = nil
	late.LunchEnd = nil

	svc := NewAvailabilityService(
		&stubScheduleLister{schedules: []models.WorkSchedule{early, late}},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 30}},
		&stubAppointmentReader{},
		30,
	)

	slots, err := svc.TimeSlots(context.Background(), 1, testDay, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots[0].Time != "08:00" || slots[len(slots)-1].Time != "19:30" {
		t.Fatalf("span = %s..%s, want 08:00..19:30", slots[0].Time, slots[len(slots)-1].Time)
	}
	byTime := slotsByTime(slots)
	if byTime["09:00"] != 1 {
		t.Errorf("09:00 before the second shift starts: count = %d, want 1", byTime["09:00"])
	}
	if byTime["10:00"] != 2 {
		t.Errorf("10:00 with both on duty: count = %d, want 2", byTime["10:00"])
	}
	if byTime["19:00"] != 1 {
		t.Errorf("19:00 after the first shift ends: count = %d, want 1", byTime["19:00"])
	}
}

func TestTimeSlotsNoOneOnDuty(t *testing.T) {
	svc := NewAvailabilityService(
		&stubScheduleLister{schedules: []models.WorkSchedule{weekdaySchedule(t, 1)}},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 60}},
		&stubAppointmentReader{},
		30,
	)

	// Sunday.
	sunday := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	slots, err := svc.TimeSlots(context.Background(), 1, sunday, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slots == nil || len(slots) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", slots)
	}
}

func TestTimeSlotsServiceNotFound(t *testing.T) {
	svc := NewAvailabilityService(
		&stubScheduleLister{},
		&stubServiceReader{},
		&stubAppointmentReader{},
		30,
	)
	if _, err := svc.TimeSlots(context.Background(), 1, testDay, 99); err != ErrServiceNotFound {
		t.Errorf("expected ErrServiceNotFound, got %v", err)
	}
}

func TestWorkingDays(t *testing.T) {
	weekdays := weekdaySchedule(t, 1)
	weekend := weekdaySchedule(t, 2)
	weekend.WorkDays = mustWeekdays(t, "6")

	svc := NewAvailabilityService(
		&stubScheduleLister{schedules: []models.WorkSchedule{weekdays, weekend}},
		&stubServiceReader{},
		&stubAppointmentReader{},
		30,
	)
	days, err := svc.WorkingDays(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int{1, 2, 3, 4, 5, 6}
	if len(days) != len(want) {
		t.Fatalf("days = %v, want %v", days, want)
	}
	for i := range want {
		if days[i] != want[i] {
			t.Fatalf("days = %v, want %v", days, want)
		}
	}
}

func TestCheckConflictUnassigned(t *testing.T) {
	appointments := &stubAppointmentReader{conflict: true}
	svc := NewAvailabilityService(
		&stubScheduleLister{},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 60}},
		appointments,
		30,
	)

	conflict, err := svc.CheckConflict(context.Background(), 1, nil, testDay.Add(10*time.Hour), 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conflict {
		t.Errorf("unassigned appointment must never conflict")
	}
	if appointments.conflictCalled || appointments.excludingCalled {
		t.Errorf("repository must not be queried for unassigned appointments")
	}
}

func TestCheckConflictComputesEnd(t *testing.T) {
	appointments := &stubAppointmentReader{conflict: true}
	svc := NewAvailabilityService(
		&stubScheduleLister{},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 45}},
		appointments,
		30,
	)

	professionalID := int64(3)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	conflict, err := svc.CheckConflict(context.Background(), 1, &professionalID, start, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conflict {
		t.Errorf("expected conflict passthrough")
	}
	if !appointments.conflictCalled {
		t.Fatalf("expected HasConflict call")
	}
	if wantEnd := start.Add(45 * time.Minute); !appointments.gotEnd.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", appointments.gotEnd, wantEnd)
	}
	if appointments.gotProfessionalID != professionalID {
		t.Errorf("professionalID = %d, want %d", appointments.gotProfessionalID, professionalID)
	}
}

func TestCheckConflictExcludesSelf(t *testing.T) {
	appointments := &stubAppointmentReader{}
	svc := NewAvailabilityService(
		&stubScheduleLister{},
		&stubServiceReader{service: &models.Service{ID: 1, DurationMinutes: 60}},
		appointments,
		30,
	)

	professionalID := int64(3)
	excludeID := int64(42)
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if _, err := svc.CheckConflict(context.Background(), 1, &professionalID, start, 1, &excludeID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !appointments.excludingCalled {
		t.Fatalf("expected HasConflictExcluding call")
	}
	if appointments.gotExcludedID != excludeID {
		t.Errorf("excludedID = %d, want %d", appointments.gotExcludedID, excludeID)
	}
}
