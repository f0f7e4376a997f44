package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/shopspring/decimal"
)

var (
	testDBOnce sync.Once
	testDBPool *pgxpool.Pool
	testDBErr  error
)

type integrationFixture struct {
	ownerID        int64
	clientID       int64
	serviceID      int64
	professionalID int64
}

func TestAppointmentServiceRejectsOverlappingBookings(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	fixture := createTestSalon(t, ctx, pool)
	service := newIntegrationAppointmentService(pool)

	start := time.Date(2030, 4, 1, 12, 0, 0, 0, time.UTC)
	if _, err := service.Create(ctx, fixture.ownerID, CreateAppointmentInput{
		ClientID:       fixture.clientID,
		ServiceID:      fixture.serviceID,
		ProfessionalID: &fixture.professionalID,
		Date:           start,
	}); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := service.Create(ctx, fixture.ownerID, CreateAppointmentInput{
		ClientID:       fixture.clientID,
		ServiceID:      fixture.serviceID,
		ProfessionalID: &fixture.professionalID,
		Date:           start.Add(30 * time.Minute),
	})
	if err != ErrConflict {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Starting exactly when the first one ends is legal.
	if _, err := service.Create(ctx, fixture.ownerID, CreateAppointmentInput{
		ClientID:       fixture.clientID,
		ServiceID:      fixture.serviceID,
		ProfessionalID: &fixture.professionalID,
		Date:           start.Add(60 * time.Minute),
	}); err != nil {
		t.Fatalf("back-to-back Create: %v", err)
	}
}

func TestMarkAppointmentPaidIsOneWay(t *testing.T) {
	ctx := context.Background()
	pool := integrationTestPool(t)
	fixture := createTestSalon(t, ctx, pool)
	appointmentService := newIntegrationAppointmentService(pool)
	financeService := NewFinanceService(
		pool,
		repository.NewAppointmentRepository(pool),
		repository.NewTransactionRepository(pool),
		repository.NewClientRepository(pool),
		nil,
	)

	created, err := appointmentService.Create(ctx, fixture.ownerID, CreateAppointmentInput{
		ClientID:       fixture.clientID,
		ServiceID:      fixture.serviceID,
		ProfessionalID: &fixture.professionalID,
		Date:           time.Date(2030, 5, 10, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid, err := financeService.MarkAppointmentPaid(ctx, fixture.ownerID, created.ID)
	if err != nil {
		t.Fatalf("MarkAppointmentPaid: %v", err)
	}
	if paid.PaymentStatus != models.PaymentPaid {
		t.Fatalf("expected paid, got %q", paid.PaymentStatus)
	}

	if _, err := financeService.MarkAppointmentPaid(ctx, fixture.ownerID, created.ID); err != ErrAlreadyPaid {
		t.Fatalf("expected ErrAlreadyPaid on second call, got %v", err)
	}

	transactions, err := financeService.ListTransactions(ctx, fixture.ownerID, repository.TransactionListFilter{
		Type: models.TransactionRevenue,
	})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	matching := 0
	for _, transaction := range transactions {
		if transaction.AppointmentID != nil && *transaction.AppointmentID == created.ID {
			matching++
		}
	}
	if matching != 1 {
		t.Fatalf("expected exactly one ledger entry for the appointment, got %d", matching)
	}
}

func integrationTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	testDBOnce.Do(func() {
		_ = godotenv.Load(".env")
		_ = godotenv.Load(filepath.Join("..", "..", ".env"))

		dbURL := os.Getenv("DB_URL")
		if dbURL == "" {
			testDBErr = fmt.Errorf("DB_URL is not set")
			return
		}

		cfg, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			testDBErr = err
			return
		}

		testDBPool, testDBErr = pgxpool.NewWithConfig(context.Background(), cfg)
		if testDBErr != nil {
			return
		}
		testDBErr = testDBPool.Ping(context.Background())
	})

	if testDBErr != nil {
		t.Skipf("skipping integration test: %v", testDBErr)
	}
	return testDBPool
}

func newIntegrationAppointmentService(pool *pgxpool.Pool) *AppointmentService {
	return NewAppointmentService(
		pool,
		repository.NewAppointmentRepository(pool),
		repository.NewServiceRepository(pool),
		repository.NewClientRepository(pool),
		repository.NewProfessionalRepository(pool),
		nil,
	)
}

func createTestSalon(t *testing.T, ctx context.Context, pool *pgxpool.Pool) integrationFixture {
	t.Helper()

	userRepo := repository.NewUserRepository(pool)
	owner := &models.User{
		Username:     fmt.Sprintf("salon-test-%d", time.Now().UnixNano()),
		PasswordHash: "test-hash",
		Name:         "Test Salon",
		Role:         models.RoleAdmin,
	}
	if err := userRepo.CreateUser(ctx, owner); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	client, err := repository.NewClientRepository(pool).Create(ctx, owner.ID, repository.CreateClientInput{
		Name:  "Test Client",
		Phone: fmt.Sprintf("9%d", time.Now().UnixNano()%1_000_000_000),
	})
	if err != nil {
		t.Fatalf("Create client: %v", err)
	}

	salonService, err := repository.NewServiceRepository(pool).Create(ctx, owner.ID, repository.CreateServiceInput{
		Name:            "Corte",
		DurationMinutes: 60,
		Price:           decimal.NewFromInt(25),
	})
	if err != nil {
		t.Fatalf("Create service: %v", err)
	}

	professional, err := repository.NewProfessionalRepository(pool).Create(ctx, owner.ID, repository.CreateProfessionalInput{
		Name: "Test Professional",
	})
	if err != nil {
		t.Fatalf("Create professional: %v", err)
	}

	t.Cleanup(func() {
		if _, err := pool.Exec(ctx, "DELETE FROM users WHERE id = $1", owner.ID); err != nil {
			t.Fatalf("cleanup salon: %v", err)
		}
	})

	return integrationFixture{
		ownerID:        owner.ID,
		clientID:       client.ID,
		serviceID:      salonService.ID,
		professionalID: professional.ID,
	}
}
