package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/shopspring/decimal"
)

// ServiceRevenueCategory tags ledger entries generated by appointment
// payments, as opposed to manually recorded revenue.
const ServiceRevenueCategory = "service"

type clientLister interface {
	List(ctx context.Context, ownerID int64) ([]models.Client, error)
}

type FinanceService struct {
	db              *pgxpool.Pool
	appointmentRepo *repository.AppointmentRepository
	transactionRepo *repository.TransactionRepository
	clientRepo      clientLister
	events          EventPublisher
}

func NewFinanceService(
	db *pgxpool.Pool,
	appointmentRepo *repository.AppointmentRepository,
	transactionRepo *repository.TransactionRepository,
	clientRepo clientLister,
	events EventPublisher,
) *FinanceService {
	return &FinanceService{
		db:              db,
		appointmentRepo: appointmentRepo,
		transactionRepo: transactionRepo,
		clientRepo:      clientRepo,
		events:          events,
	}
}

// MarkAppointmentPaid flips the payment status and appends the matching
// revenue entry in one transaction. The transition is one-way: paying an
// already-paid appointment fails and writes nothing.
func (s *FinanceService) MarkAppointmentPaid(
	ctx context.Context,
	ownerID, appointmentID int64,
) (*models.AppointmentDetail, error) {
	detail, err := s.appointmentRepo.GetDetail(ctx, appointmentID, ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	if detail.PaymentStatus == models.PaymentPaid {
		return nil, ErrAlreadyPaid
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txAppointmentRepo := repository.NewAppointmentRepository(tx)
	txTransactionRepo := repository.NewTransactionRepository(tx)

	// The guarded update is the idempotency barrier: a concurrent payer
	// loses here and no duplicate ledger entry is written.
	if _, err := txAppointmentRepo.UpdatePaymentStatusIfCurrent(
		ctx,
		appointmentID,
		ownerID,
		models.PaymentPending,
		models.PaymentPaid,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlreadyPaid
		}
		return nil, err
	}

	description := fmt.Sprintf("%s - %s", detail.ServiceName, detail.ClientName)
	if _, err := txTransactionRepo.Create(ctx, ownerID, repository.CreateTransactionInput{
		Type:          models.TransactionRevenue,
		Category:      ServiceRevenueCategory,
		Amount:        detail.ServicePrice,
		Description:   description,
		Date:          time.Now(),
		AppointmentID: &appointmentID,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	updated, err := s.appointmentRepo.GetDetail(ctx, appointmentID, ownerID)
	if err != nil {
		return nil, err
	}
	if s.events != nil {
		s.events.Publish(ownerID, "appointment.updated", updated)
	}
	return updated, nil
}

type CreateTransactionInput struct {
	Type        string
	Category    string
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

func (s *FinanceService) CreateTransaction(
	ctx context.Context,
	ownerID int64,
	input CreateTransactionInput,
) (*models.Transaction, error) {
	if input.Type != models.TransactionRevenue && input.Type != models.TransactionExpense {
		return nil, ErrInvalidInput
	}
	if input.Category == "" || !input.Amount.IsPositive() {
		return nil, ErrInvalidInput
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}
	return s.transactionRepo.Create(ctx, ownerID, repository.CreateTransactionInput{
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		Description: input.Description,
		Date:        date,
	})
}

func (s *FinanceService) ListTransactions(
	ctx context.Context,
	ownerID int64,
	filter repository.TransactionListFilter,
) ([]models.Transaction, error) {
	return s.transactionRepo.List(ctx, ownerID, filter)
}

func (s *FinanceService) DeleteTransaction(ctx context.Context, ownerID, transactionID int64) error {
	deleted, err := s.transactionRepo.Delete(ctx, transactionID, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrInvalidInput
	}
	return nil
}

func (s *FinanceService) Summary(ctx context.Context, ownerID int64, from, to time.Time) (*models.TransactionSummary, error) {
	return s.transactionRepo.Summarize(ctx, ownerID, from, to)
}

// DashboardStats is the headline card data on the admin dashboard.
type DashboardStats struct {
	TodayAppointments int              `json:"todayAppointments"`
	ActiveClients     int              `json:"activeClients"`
	MonthlyRevenue    decimal.Decimal  `json:"monthlyRevenue"`
	NextAppointment   *NextAppointment `json:"nextAppointment"`
}

type NextAppointment struct {
	Time       string `json:"time"`
	ClientName string `json:"clientName"`
}

func (s *FinanceService) Stats(ctx context.Context, ownerID int64, now time.Time) (*DashboardStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	today, err := s.appointmentRepo.ListDetailsBetween(ctx, ownerID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	clients, err := s.clientRepo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	summary, err := s.transactionRepo.Summarize(ctx, ownerID, monthStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TodayAppointments: len(today),
		ActiveClients:     len(clients),
		MonthlyRevenue:    summary.Revenue,
	}
	for _, appointment := range today {
		if appointment.Date.After(now) && appointment.Status != models.AppointmentCancelled {
			stats.NextAppointment = &NextAppointment{
				Time:       appointment.Date.Format("15:04"),
				ClientName: appointment.ClientName,
			}
			break
		}
	}
	return stats, nil
}
