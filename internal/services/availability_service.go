package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type scheduleLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.WorkSchedule, error)
}

type serviceReader interface {
	GetByID(ctx context.Context, id, ownerID int64) (*models.Service, error)
}

type availabilityAppointmentReader interface {
	ListActiveBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.Appointment, error)
	HasConflict(ctx context.Context, ownerID, professionalID int64, start, end time.Time) (bool, error)
	HasConflictExcluding(ctx context.Context, ownerID, professionalID int64, start, end time.Time, excludedID int64) (bool, error)
}

// TimeSlot is one candidate start time offered to the public booking flow.
// The count deliberately hides which professionals are free.
type TimeSlot struct {
	Time                   string `json:"time"`
	AvailableProfessionals int    `json:"availableProfessionals"`
}

// AvailabilityService computes free time slots and conflict answers from
// work schedules and existing bookings.
type AvailabilityService struct {
	schedules    scheduleLister
	services     serviceReader
	appointments availabilityAppointmentReader
	slotMinutes  int
}

func NewAvailabilityService(
	schedules scheduleLister,
	services serviceReader,
	appointments availabilityAppointmentReader,
	slotMinutes int,
) *AvailabilityService {
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	return &AvailabilityService{
		schedules:    schedules,
		services:     services,
		appointments: appointments,
		slotMinutes:  slotMinutes,
	}
}

// TimeSlots walks the day at the configured granularity and reports, per
// mark, how many on-duty professionals could take a booking of the service's
// duration starting there. Marks inside the day's working span are always
// emitted; a blocked mark carries a zero count.
func (s *AvailabilityService) TimeSlots(
	ctx context.Context,
	ownerID int64,
	date time.Time,
	serviceID int64,
) ([]TimeSlot, error) {
	service, err := s.services.GetByID(ctx, serviceID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if service.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}

	schedules, err := s.schedules.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	weekday := date.Weekday()
	onDuty := make([]models.WorkSchedule, 0, len(schedules))
	for _, schedule := range schedules {
		if schedule.WorkDays.Has(weekday) {
			onDuty = append(onDuty, schedule)
		}
	}
	if len(onDuty) == 0 {
		return []TimeSlot{}, nil
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	busy, err := s.appointments.ListActiveBetween(ctx, ownerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	busyByProfessional := make(map[int64][]models.Appointment, len(busy))
	for _, appointment := range busy {
		id := *appointment.ProfessionalID
		busyByProfessional[id] = append(busyByProfessional[id], appointment)
	}

	spanStart := onDuty[0].WorkStart
	spanEnd := onDuty[0].WorkEnd
	for _, schedule := range onDuty[1:] {
		if schedule.WorkStart < spanStart {
			spanStart = schedule.WorkStart
		}
		if schedule.WorkEnd > spanEnd {
			spanEnd = schedule.WorkEnd
		}
	}

	duration := models.MinuteOfDay(service.DurationMinutes)
	step := models.MinuteOfDay(s.slotMinutes)

	slots := make([]TimeSlot, 0, int((spanEnd-spanStart)/step)+1)
	for mark := spanStart; mark < spanEnd; mark += step {
		count := 0
		for _, schedule := range onDuty {
			if !fitsSchedule(&schedule, mark, mark+duration) {
				continue
			}
			slotStart := mark.At(date)
			slotEnd := (mark + duration).At(date)
			if !overlapsAny(slotStart, slotEnd, busyByProfessional[schedule.ProfessionalID]) {
				count++
			}
		}
		slots = append(slots, TimeSlot{Time: mark.String(), AvailableProfessionals: count})
	}
	return slots, nil
}

// WorkingDays returns the sorted weekdays on which at least one professional
// is on duty. An empty result means the salon offers no bookable dates.
func (s *AvailabilityService) WorkingDays(ctx context.Context, ownerID int64) ([]int, error) {
	schedules, err := s.schedules.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var union models.WeekdaySet
	for _, schedule := range schedules {
		union |= schedule.WorkDays
	}
	return union.Days(), nil
}

// CheckConflict answers whether booking the service at the given start for
// the professional would overlap an existing non-cancelled appointment.
// An unassigned candidate claims no resource and never conflicts.
func (s *AvailabilityService) CheckConflict(
	ctx context.Context,
	ownerID int64,
	professionalID *int64,
	start time.Time,
	serviceID int64,
	excludeID *int64,
) (bool, error) {
	service, err := s.services.GetByID(ctx, serviceID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrServiceNotFound
		}
		return false, err
	}
	if professionalID == nil {
		return false, nil
	}

	end := start.Add(time.Duration(service.DurationMinutes) * time.Minute)
	if excludeID != nil {
		return s.appointments.HasConflictExcluding(ctx, ownerID, *professionalID, start, end, *excludeID)
	}
	return s.appointments.HasConflict(ctx, ownerID, *professionalID, start, end)
}

// fitsSchedule reports whether [start, end) lies inside the working window
// and clear of the lunch exclusion.
func fitsSchedule(schedule *models.WorkSchedule, start, end models.MinuteOfDay) bool {
	if start < schedule.WorkStart || end > schedule.WorkEnd {
		return false
	}
	if schedule.HasLunch() && start < *schedule.LunchEnd && *schedule.LunchStart < end {
		return false
	}
	return true
}

// overlapsAny applies the half-open overlap rule: [a0,a1) and [b0,b1)
// overlap iff a0 < b1 and b0 < a1. Touching endpoints do not overlap.
func overlapsAny(start, end time.Time, appointments []models.Appointment) bool {
	for _, appointment := range appointments {
		if start.Before(appointment.EndDate) && appointment.Date.Before(end) {
			return true
		}
	}
	return false
}
