package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
)

// ErrBookingUnavailable means no admin account exists to receive public
// bookings; the funnel is effectively closed.
var ErrBookingUnavailable = errors.New("online booking unavailable")

type bookingOwnerReader interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetOldestAdmin(ctx context.Context) (*models.User, error)
}

type serviceLister interface {
	GetByID(ctx context.Context, id, ownerID int64) (*models.Service, error)
	List(ctx context.Context, ownerID int64) ([]models.Service, error)
}

// BookingService backs the unauthenticated public funnel: a visitor picks a
// service, a date, and a free time mark, and leaves an unassigned pending
// appointment for the salon to staff.
type BookingService struct {
	db           *pgxpool.Pool
	users        bookingOwnerReader
	services     serviceLister
	availability *AvailabilityService
	ownerUser    string
}

func NewBookingService(
	db *pgxpool.Pool,
	users bookingOwnerReader,
	services serviceLister,
	availability *AvailabilityService,
	ownerUsername string,
) *BookingService {
	return &BookingService{
		db:           db,
		users:        users,
		services:     services,
		availability: availability,
		ownerUser:    ownerUsername,
	}
}

// ResolveOwner picks the tenant the public funnel books against: the
// configured admin username when set, otherwise the oldest admin account.
func (s *BookingService) ResolveOwner(ctx context.Context) (int64, error) {
	var (
		owner *models.User
		err   error
	)
	if s.ownerUser != "" {
		owner, err = s.users.GetByUsername(ctx, s.ownerUser)
	} else {
		owner, err = s.users.GetOldestAdmin(ctx)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrBookingUnavailable
		}
		return 0, err
	}
	if owner.Role != models.RoleAdmin {
		return 0, ErrBookingUnavailable
	}
	return owner.ID, nil
}

func (s *BookingService) ListServices(ctx context.Context) ([]models.Service, error) {
	ownerID, err := s.ResolveOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.services.List(ctx, ownerID)
}

func (s *BookingService) WorkingDays(ctx context.Context) ([]int, error) {
	ownerID, err := s.ResolveOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.availability.WorkingDays(ctx, ownerID)
}

func (s *BookingService) TimeSlots(ctx context.Context, date time.Time, serviceID int64) ([]TimeSlot, error) {
	ownerID, err := s.ResolveOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.availability.TimeSlots(ctx, ownerID, date, serviceID)
}

type PublicBookingInput struct {
	ClientName  string
	ClientPhone string
	ServiceID   int64
	Date        time.Time
	Notes       *string
}

type PublicBookingResult struct {
	BookingRef  string    `json:"bookingRef"`
	ServiceName string    `json:"serviceName"`
	Date        time.Time `json:"date"`
}

func (s *BookingService) Book(ctx context.Context, input PublicBookingInput) (*PublicBookingResult, error) {
	if input.ClientName == "" || input.ClientPhone == "" || input.ServiceID <= 0 || input.Date.IsZero() {
		return nil, ErrInvalidInput
	}

	ownerID, err := s.ResolveOwner(ctx)
	if err != nil {
		return nil, err
	}

	service, err := s.services.GetByID(ctx, input.ServiceID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	// The requested mark must still be free for at least one professional.
	slots, err := s.availability.TimeSlots(ctx, ownerID, input.Date, input.ServiceID)
	if err != nil {
		return nil, err
	}
	mark := input.Date.Format("15:04")
	available := false
	for _, slot := range slots {
		if slot.Time == mark {
			available = slot.AvailableProfessionals > 0
			break
		}
	}
	if !available {
		return nil, ErrSlotUnavailable
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txClientRepo := repository.NewClientRepository(tx)
	txAppointmentRepo := repository.NewAppointmentRepository(tx)

	client, err := txClientRepo.GetByPhone(ctx, ownerID, input.ClientPhone)
	if errors.Is(err, pgx.ErrNoRows) {
		client, err = txClientRepo.Create(ctx, ownerID, repository.CreateClientInput{
			Name:  input.ClientName,
			Phone: input.ClientPhone,
		})
	}
	if err != nil {
		return nil, err
	}

	bookingRef := uuid.NewString()
	endDate := input.Date.Add(time.Duration(service.DurationMinutes) * time.Minute)
	if _, err := txAppointmentRepo.Create(ctx, ownerID, repository.CreateAppointmentInput{
		ClientID:   client.ID,
		ServiceID:  service.ID,
		Date:       input.Date,
		EndDate:    endDate,
		Notes:      input.Notes,
		Status:     models.AppointmentPending,
		BookingRef: &bookingRef,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &PublicBookingResult{
		BookingRef:  bookingRef,
		ServiceName: service.Name,
		Date:        input.Date,
	}, nil
}
