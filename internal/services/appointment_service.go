package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrConflict               = errors.New("appointment conflict")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrAlreadyPaid            = errors.New("appointment already paid")
	ErrSlotUnavailable        = errors.New("time slot unavailable")
	ErrServiceNotFound        = errors.New("service not found")
	ErrClientNotFound         = errors.New("client not found")
	ErrProfessionalNotFound   = errors.New("professional not found")
	ErrAppointmentNotFound    = errors.New("appointment not found")
)

// EventPublisher fans appointment changes out to connected dashboards.
type EventPublisher interface {
	Publish(ownerID int64, eventType string, payload any)
}

type clientReader interface {
	GetByID(ctx context.Context, id, ownerID int64) (*models.Client, error)
}

type professionalReader interface {
	GetByID(ctx context.Context, id, ownerID int64) (*models.Professional, error)
}

type AppointmentService struct {
	db               *pgxpool.Pool
	appointmentRepo  *repository.AppointmentRepository
	serviceRepo      serviceReader
	clientRepo       clientReader
	professionalRepo professionalReader
	events           EventPublisher
}

func NewAppointmentService(
	db *pgxpool.Pool,
	appointmentRepo *repository.AppointmentRepository,
	serviceRepo serviceReader,
	clientRepo clientReader,
	professionalRepo professionalReader,
	events EventPublisher,
) *AppointmentService {
	return &AppointmentService{
		db:               db,
		appointmentRepo:  appointmentRepo,
		serviceRepo:      serviceRepo,
		clientRepo:       clientRepo,
		professionalRepo: professionalRepo,
		events:           events,
	}
}

type CreateAppointmentInput struct {
	ClientID       int64
	ServiceID      int64
	ProfessionalID *int64
	Date           time.Time
	Notes          *string
	Status         string
}

func (s *AppointmentService) Create(
	ctx context.Context,
	ownerID int64,
	input CreateAppointmentInput,
) (*models.AppointmentDetail, error) {
	if input.ClientID <= 0 || input.ServiceID <= 0 || input.Date.IsZero() {
		return nil, ErrInvalidInput
	}
	if input.ProfessionalID != nil && *input.ProfessionalID <= 0 {
		return nil, ErrInvalidInput
	}
	status := input.Status
	if status == "" {
		status = models.AppointmentConfirmed
	}
	if status != models.AppointmentPending && status != models.AppointmentConfirmed {
		return nil, ErrInvalidStatus
	}

	// Validation happens strictly before any write: a failed lookup must
	// leave no partial appointment behind.
	if _, err := s.clientRepo.GetByID(ctx, input.ClientID, ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if input.ProfessionalID != nil {
		if _, err := s.professionalRepo.GetByID(ctx, *input.ProfessionalID, ownerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProfessionalNotFound
			}
			return nil, err
		}
	}
	service, err := s.serviceRepo.GetByID(ctx, input.ServiceID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	endDate := input.Date.Add(time.Duration(service.DurationMinutes) * time.Minute)
	createInput := repository.CreateAppointmentInput{
		ClientID:       input.ClientID,
		ServiceID:      input.ServiceID,
		ProfessionalID: input.ProfessionalID,
		Date:           input.Date,
		EndDate:        endDate,
		Notes:          input.Notes,
		Status:         status,
	}

	var created *models.Appointment
	if input.ProfessionalID == nil {
		// Unassigned bookings claim no professional, so there is nothing
		// to lock or conflict against.
		created, err = s.appointmentRepo.Create(ctx, ownerID, createInput)
		if err != nil {
			return nil, err
		}
	} else {
		created, err = s.createAssigned(ctx, ownerID, *input.ProfessionalID, createInput)
		if err != nil {
			return nil, err
		}
	}

	detail, err := s.appointmentRepo.GetDetail(ctx, created.ID, ownerID)
	if err != nil {
		return nil, err
	}
	s.publish(ownerID, "appointment.created", detail)
	return detail, nil
}

// createAssigned serializes the conflict check and the insert behind an
// advisory lock keyed on the professional, closing the check-then-act race
// between concurrent bookings.
func (s *AppointmentService) createAssigned(
	ctx context.Context,
	ownerID, professionalID int64,
	input repository.CreateAppointmentInput,
) (*models.Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", professionalID); err != nil {
		return nil, err
	}

	txRepo := repository.NewAppointmentRepository(tx)
	hasConflict, err := txRepo.HasConflict(ctx, ownerID, professionalID, input.Date, input.EndDate)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	created, err := txRepo.Create(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

type UpdateAppointmentInput struct {
	ClientID       *int64
	ServiceID      *int64
	ProfessionalID *int64
	Date           *time.Time
	Notes          *string
	Status         *string
}

func (s *AppointmentService) Update(
	ctx context.Context,
	ownerID, appointmentID int64,
	input UpdateAppointmentInput,
) (*models.AppointmentDetail, error) {
	current, err := s.appointmentRepo.GetByID(ctx, appointmentID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	next := repository.UpdateAppointmentInput{
		ClientID:       current.ClientID,
		ServiceID:      current.ServiceID,
		ProfessionalID: current.ProfessionalID,
		Date:           current.Date,
		EndDate:        current.EndDate,
		Notes:          current.Notes,
		Status:         current.Status,
	}

	if input.ClientID != nil {
		if _, err := s.clientRepo.GetByID(ctx, *input.ClientID, ownerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrClientNotFound
			}
			return nil, err
		}
		next.ClientID = *input.ClientID
	}
	if input.ProfessionalID != nil {
		if _, err := s.professionalRepo.GetByID(ctx, *input.ProfessionalID, ownerID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrProfessionalNotFound
			}
			return nil, err
		}
		next.ProfessionalID = input.ProfessionalID
	}
	if input.ServiceID != nil {
		next.ServiceID = *input.ServiceID
	}
	if input.Date != nil {
		next.Date = *input.Date
	}
	if input.Notes != nil {
		next.Notes = input.Notes
	}
	if input.Status != nil {
		if !models.ValidAppointmentStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		if err := validateStatusTransition(current.Status, *input.Status); err != nil {
			return nil, err
		}
		next.Status = *input.Status
	}

	// end_date is derived state: recompute it from the current service
	// duration whenever the start or the service changes. It is never
	// accepted from the caller.
	scheduleChanged := input.Date != nil || input.ServiceID != nil || input.ProfessionalID != nil
	if input.Date != nil || input.ServiceID != nil {
		service, err := s.serviceRepo.GetByID(ctx, next.ServiceID, ownerID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrServiceNotFound
			}
			return nil, err
		}
		next.EndDate = next.Date.Add(time.Duration(service.DurationMinutes) * time.Minute)
	}

	var updated *models.Appointment
	if scheduleChanged && next.ProfessionalID != nil && next.Status != models.AppointmentCancelled {
		updated, err = s.updateWithConflictCheck(ctx, ownerID, appointmentID, *next.ProfessionalID, next)
	} else {
		updated, err = s.appointmentRepo.Update(ctx, appointmentID, ownerID, next)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	detail, err := s.appointmentRepo.GetDetail(ctx, updated.ID, ownerID)
	if err != nil {
		return nil, err
	}
	s.publish(ownerID, "appointment.updated", detail)
	return detail, nil
}

func (s *AppointmentService) updateWithConflictCheck(
	ctx context.Context,
	ownerID, appointmentID, professionalID int64,
	input repository.UpdateAppointmentInput,
) (*models.Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", professionalID); err != nil {
		return nil, err
	}

	txRepo := repository.NewAppointmentRepository(tx)
	// The appointment is excluded from its own conflict check, otherwise
	// every in-place edit would collide with itself.
	hasConflict, err := txRepo.HasConflictExcluding(ctx, ownerID, professionalID, input.Date, input.EndDate, appointmentID)
	if err != nil {
		return nil, err
	}
	if hasConflict {
		return nil, ErrConflict
	}

	updated, err := txRepo.Update(ctx, appointmentID, ownerID, input)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *AppointmentService) Delete(ctx context.Context, ownerID, appointmentID int64) error {
	deleted, err := s.appointmentRepo.Delete(ctx, appointmentID, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAppointmentNotFound
	}
	s.publish(ownerID, "appointment.deleted", map[string]int64{"id": appointmentID})
	return nil
}

func (s *AppointmentService) Get(ctx context.Context, ownerID, appointmentID int64) (*models.AppointmentDetail, error) {
	detail, err := s.appointmentRepo.GetDetail(ctx, appointmentID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return detail, nil
}

func (s *AppointmentService) List(ctx context.Context, ownerID int64) ([]models.AppointmentDetail, error) {
	return s.appointmentRepo.ListDetails(ctx, ownerID)
}

func (s *AppointmentService) ListByDay(ctx context.Context, ownerID int64, day time.Time) ([]models.AppointmentDetail, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return s.appointmentRepo.ListDetailsBetween(ctx, ownerID, dayStart, dayStart.AddDate(0, 0, 1))
}

func (s *AppointmentService) ListByRange(ctx context.Context, ownerID int64, from, to time.Time) ([]models.AppointmentDetail, error) {
	return s.appointmentRepo.ListDetailsBetween(ctx, ownerID, from, to)
}

func (s *AppointmentService) publish(ownerID int64, eventType string, payload any) {
	if s.events != nil {
		s.events.Publish(ownerID, eventType, payload)
	}
}

// validateStatusTransition enforces the lifecycle: pending -> confirmed ->
// completed, with cancellation possible at any point before completion.
func validateStatusTransition(current, next string) error {
	if current == next {
		return nil
	}
	switch next {
	case models.AppointmentConfirmed:
		if current != models.AppointmentPending {
			return ErrInvalidStateTransition
		}
	case models.AppointmentCompleted:
		if current != models.AppointmentConfirmed {
			return ErrInvalidStateTransition
		}
	case models.AppointmentCancelled:
		if current == models.AppointmentCompleted {
			return ErrInvalidStateTransition
		}
	case models.AppointmentPending:
		return ErrInvalidStateTransition
	default:
		return ErrInvalidStatus
	}
	return nil
}
