package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrBadTimeOfDay = errors.New("time of day must be HH:MM")
	ErrBadWeekday   = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
)

// MinuteOfDay is a local time of day in minutes since midnight. Schedule times
// are parsed into this once when a row is loaded so slot generation never
// touches the "HH:MM" wire encoding.
type MinuteOfDay int

func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, ErrBadTimeOfDay
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, ErrBadTimeOfDay
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, ErrBadTimeOfDay
	}
	return MinuteOfDay(hour*60 + minute), nil
}

func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// At anchors the time of day on the given calendar date, in that date's location.
func (m MinuteOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(m)/60, int(m)%60, 0, 0, date.Location())
}

func (m MinuteOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *MinuteOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseMinuteOfDay(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// WeekdaySet is a bitmask over time.Weekday (bit 0 = Sunday).
type WeekdaySet uint8

func ParseWeekdaySet(csv string) (WeekdaySet, error) {
	var set WeekdaySet
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return 0, nil
	}
	for _, part := range strings.Split(csv, ",") {
		day, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || day < 0 || day > 6 {
			return 0, ErrBadWeekday
		}
		set |= 1 << uint(day)
	}
	return set, nil
}

func (s WeekdaySet) Has(day time.Weekday) bool {
	return s&(1<<uint(day)) != 0
}

func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

func (s WeekdaySet) Days() []int {
	days := make([]int, 0, 7)
	for day := 0; day < 7; day++ {
		if s&(1<<uint(day)) != 0 {
			days = append(days, day)
		}
	}
	return days
}

func (s WeekdaySet) String() string {
	days := s.Days()
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, strconv.Itoa(day))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (s WeekdaySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Days())
}

func (s *WeekdaySet) UnmarshalJSON(data []byte) error {
	var days []int
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	var set WeekdaySet
	for _, day := range days {
		if day < 0 || day > 6 {
			return ErrBadWeekday
		}
		set |= 1 << uint(day)
	}
	*s = set
	return nil
}

// WorkSchedule is a professional's weekly availability window with an
// optional lunch exclusion.
type WorkSchedule struct {
	ID             int64        `json:"id"`
	ProfessionalID int64        `json:"professional_id"`
	UserID         int64        `json:"user_id"`
	WorkDays       WeekdaySet   `json:"work_days"`
	WorkStart      MinuteOfDay  `json:"work_start_time"`
	WorkEnd        MinuteOfDay  `json:"work_end_time"`
	LunchStart     *MinuteOfDay `json:"lunch_start_time"`
	LunchEnd       *MinuteOfDay `json:"lunch_end_time"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// Validate enforces work_start < work_end and, when a lunch window is
// present, work_start <= lunch_start < lunch_end <= work_end.
func (w *WorkSchedule) Validate() error {
	if w.WorkStart >= w.WorkEnd {
		return errors.New("work start must be before work end")
	}
	if (w.LunchStart == nil) != (w.LunchEnd == nil) {
		return errors.New("lunch start and lunch end must both be set or both be empty")
	}
	if w.LunchStart != nil {
		if *w.LunchStart >= *w.LunchEnd {
			return errors.New("lunch start must be before lunch end")
		}
		if *w.LunchStart < w.WorkStart || *w.LunchEnd > w.WorkEnd {
			return errors.New("lunch window must fall within the working window")
		}
	}
	return nil
}

// HasLunch reports whether a lunch exclusion is configured.
func (w *WorkSchedule) HasLunch() bool {
	return w.LunchStart != nil && w.LunchEnd != nil
}
