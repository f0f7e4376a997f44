package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/pedro17pedroo/sal-o-beleza/internal/repository"
	"github.com/shopspring/decimal"
)

type stubClientReader struct {
	client *models.Client
	err    error
}

func (r *stubClientReader) GetByID(_ context.Context, _, _ int64) (*models.Client, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.client == nil {
		return nil, pgx.ErrNoRows
	}
	return r.client, nil
}

type stubProfessionalReader struct {
	professional *models.Professional
	err          error
}

func (r *stubProfessionalReader) GetByID(_ context.Context, _, _ int64) (*models.Professional, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.professional == nil {
		return nil, pgx.ErrNoRows
	}
	return r.professional, nil
}

type recordedEvent struct {
	ownerID   int64
	eventType string
	payload   any
}

type recordingPublisher struct {
	events []recordedEvent
}

func (p *recordingPublisher) Publish(ownerID int64, eventType string, payload any) {
	p.events = append(p.events, recordedEvent{ownerID: ownerID, eventType: eventType, payload: payload})
}

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		switch target := dest[i].(type) {
		case *int64:
			*target = r.values[i].(int64)
		case **int64:
			*target = r.values[i].(*int64)
		case *int:
			*target = r.values[i].(int)
		case *string:
			*target = r.values[i].(string)
		case **string:
			*target = r.values[i].(*string)
		case *time.Time:
			*target = r.values[i].(time.Time)
		case *decimal.Decimal:
			*target = r.values[i].(decimal.Decimal)
		case *bool:
			*target = r.values[i].(bool)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type stubDBTX struct {
	queryRowFn func(ctx context.Context, query string, args ...any) stubRow
	execTag    pgconn.CommandTag
	queryCalls []string
	lastArgs   map[string][]any
}

func (db *stubDBTX) record(query string, args []any) {
	db.queryCalls = append(db.queryCalls, query)
	if db.lastArgs == nil {
		db.lastArgs = make(map[string][]any)
	}
	for _, key := range []string{"INSERT INTO appointments", "UPDATE appointments", "DELETE FROM appointments"} {
		if strings.Contains(query, key) {
			db.lastArgs[key] = args
		}
	}
}

func (db *stubDBTX) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	db.record(query, args)
	return db.execTag, nil
}

func (db *stubDBTX) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	db.record(query, args)
	return nil, errors.New("not implemented")
}

func (db *stubDBTX) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	db.record(query, args)
	return db.queryRowFn(ctx, query, args...)
}

var (
	apptCreatedAt = time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	apptStart     = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
)

func appointmentRowValues(id int64, start, end time.Time, status string) []any {
	return []any{
		id, int64(3), int64(5), (*int64)(nil), int64(1),
		start, end, (*string)(nil), status, models.PaymentPending,
		(*string)(nil), apptCreatedAt, apptCreatedAt,
	}
}

func appointmentDetailRowValues(id int64, start, end time.Time, status string) []any {
	return append(
		appointmentRowValues(id, start, end, status),
		"Maria", "912345678", "Corte", decimal.NewFromInt(25), 30, (*string)(nil),
	)
}

func TestCreateAppointmentValidatesBeforeWriting(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	service := &AppointmentService{
		appointmentRepo:  repository.NewAppointmentRepository(db),
		serviceRepo:      &stubServiceReader{service: &models.Service{ID: 5, DurationMinutes: 30}},
		clientRepo:       &stubClientReader{},
		professionalRepo: &stubProfessionalReader{professional: &models.Professional{ID: 9}},
	}

	_, err := service.Create(context.Background(), 1, CreateAppointmentInput{
		ClientID:  3,
		ServiceID: 5,
		Date:      apptStart,
	})
	if !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("expected ErrClientNotFound, got %v", err)
	}
	if len(db.queryCalls) != 0 {
		t.Fatalf("expected no writes after failed validation, got %d queries", len(db.queryCalls))
	}
}

func TestCreateAppointmentMissingReferences(t *testing.T) {
	professionalID := int64(9)
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: pgx.ErrNoRows}
		},
	}

	service := &AppointmentService{
		appointmentRepo:  repository.NewAppointmentRepository(db),
		serviceRepo:      &stubServiceReader{service: &models.Service{ID: 5, DurationMinutes: 30}},
		clientRepo:       &stubClientReader{client: &models.Client{ID: 3}},
		professionalRepo: &stubProfessionalReader{},
	}
	_, err := service.Create(context.Background(), 1, CreateAppointmentInput{
		ClientID:       3,
		ServiceID:      5,
		ProfessionalID: &professionalID,
		Date:           apptStart,
	})
	if !errors.Is(err, ErrProfessionalNotFound) {
		t.Fatalf("expected ErrProfessionalNotFound, got %v", err)
	}

	service.professionalRepo = &stubProfessionalReader{professional: &models.Professional{ID: 9}}
	service.serviceRepo = &stubServiceReader{}
	_, err = service.Create(context.Background(), 1, CreateAppointmentInput{
		ClientID:  3,
		ServiceID: 5,
		Date:      apptStart,
	})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Fatalf("expected ErrServiceNotFound, got %v", err)
	}
	if len(db.queryCalls) != 0 {
		t.Fatalf("expected no writes after failed validation, got %d queries", len(db.queryCalls))
	}
}

func TestCreateAppointmentRejectsBadInput(t *testing.T) {
	service := &AppointmentService{}

	if _, err := service.Create(context.Background(), 1, CreateAppointmentInput{ServiceID: 5, Date: apptStart}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing client: expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.Create(context.Background(), 1, CreateAppointmentInput{ClientID: 3, ServiceID: 5}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing date: expected ErrInvalidInput, got %v", err)
	}
	if _, err := service.Create(context.Background(), 1, CreateAppointmentInput{
		ClientID: 3, ServiceID: 5, Date: apptStart, Status: models.AppointmentCompleted,
	}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("completed on create: expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreateUnassignedComputesEndDate(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, query string, _ ...any) stubRow {
			if strings.Contains(query, "INSERT INTO appointments") {
				return stubRow{values: appointmentRowValues(11, apptStart, apptStart.Add(30*time.Minute), models.AppointmentConfirmed)}
			}
			if strings.Contains(query, "INNER JOIN clients") {
				return stubRow{values: appointmentDetailRowValues(11, apptStart, apptStart.Add(30*time.Minute), models.AppointmentConfirmed)}
			}
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	events := &recordingPublisher{}
	service := &AppointmentService{
		appointmentRepo:  repository.NewAppointmentRepository(db),
		serviceRepo:      &stubServiceReader{service: &models.Service{ID: 5, DurationMinutes: 30}},
		clientRepo:       &stubClientReader{client: &models.Client{ID: 3}},
		professionalRepo: &stubProfessionalReader{},
		events:           events,
	}

	detail, err := service.Create(context.Background(), 1, CreateAppointmentInput{
		ClientID:  3,
		ServiceID: 5,
		Date:      apptStart,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if detail.ID != 11 {
		t.Fatalf("expected appointment id 11, got %d", detail.ID)
	}
	if detail.Status != models.AppointmentConfirmed {
		t.Fatalf("expected default confirmed status, got %s", detail.Status)
	}

	insertArgs := db.lastArgs["INSERT INTO appointments"]
	if insertArgs == nil {
		t.Fatalf("expected insert to run")
	}
	// (client_id, service_id, professional_id, user_id, date, end_date, ...)
	gotEnd, ok := insertArgs[5].(time.Time)
	if !ok || !gotEnd.Equal(apptStart.Add(30*time.Minute)) {
		t.Fatalf("end date = %v, want %v", insertArgs[5], apptStart.Add(30*time.Minute))
	}

	if len(events.events) != 1 || events.events[0].eventType != "appointment.created" {
		t.Fatalf("expected one appointment.created event, got %+v", events.events)
	}
}

func TestUpdateRecomputesEndDateOnReschedule(t *testing.T) {
	newStart := time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC)
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, query string, _ ...any) stubRow {
			switch {
			case strings.Contains(query, "UPDATE appointments"):
				return stubRow{values: appointmentRowValues(11, newStart, newStart.Add(90*time.Minute), models.AppointmentConfirmed)}
			case strings.Contains(query, "INNER JOIN clients"):
				return stubRow{values: appointmentDetailRowValues(11, newStart, newStart.Add(90*time.Minute), models.AppointmentConfirmed)}
			case strings.Contains(query, "FROM appointments"):
				return stubRow{values: appointmentRowValues(11, apptStart, apptStart.Add(90*time.Minute), models.AppointmentConfirmed)}
			}
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	service := &AppointmentService{
		appointmentRepo:  repository.NewAppointmentRepository(db),
		serviceRepo:      &stubServiceReader{service: &models.Service{ID: 5, DurationMinutes: 90}},
		clientRepo:       &stubClientReader{client: &models.Client{ID: 3}},
		professionalRepo: &stubProfessionalReader{},
	}

	if _, err := service.Update(context.Background(), 1, 11, UpdateAppointmentInput{Date: &newStart}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	updateArgs := db.lastArgs["UPDATE appointments"]
	if updateArgs == nil {
		t.Fatalf("expected update to run")
	}
	// (id, user_id, client_id, service_id, professional_id, date, end_date, ...)
	gotEnd, ok := updateArgs[6].(time.Time)
	if !ok || !gotEnd.Equal(newStart.Add(90*time.Minute)) {
		t.Fatalf("end date = %v, want %v", updateArgs[6], newStart.Add(90*time.Minute))
	}
}

func TestUpdateRejectsInvalidTransition(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, query string, _ ...any) stubRow {
			if strings.Contains(query, "FROM appointments") {
				return stubRow{values: appointmentRowValues(11, apptStart, apptStart.Add(30*time.Minute), models.AppointmentConfirmed)}
			}
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	service := &AppointmentService{
		appointmentRepo: repository.NewAppointmentRepository(db),
	}

	back := models.AppointmentPending
	if _, err := service.Update(context.Background(), 1, 11, UpdateAppointmentInput{Status: &back}); !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	db := &stubDBTX{
		queryRowFn: func(_ context.Context, _ string, _ ...any) stubRow {
			return stubRow{err: pgx.ErrNoRows}
		},
	}
	service := &AppointmentService{appointmentRepo: repository.NewAppointmentRepository(db)}

	if _, err := service.Update(context.Background(), 1, 11, UpdateAppointmentInput{}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestDeleteAppointment(t *testing.T) {
	events := &recordingPublisher{}
	db := &stubDBTX{execTag: pgconn.NewCommandTag("DELETE 1")}
	service := &AppointmentService{
		appointmentRepo: repository.NewAppointmentRepository(db),
		events:          events,
	}

	if err := service.Delete(context.Background(), 1, 11); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(events.events) != 1 || events.events[0].eventType != "appointment.deleted" {
		t.Fatalf("expected appointment.deleted event, got %+v", events.events)
	}

	db.execTag = pgconn.NewCommandTag("DELETE 0")
	if err := service.Delete(context.Background(), 1, 11); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestValidateStatusTransition(t *testing.T) {
	cases := []struct {
		current string
		next    string
		wantErr error
	}{
		{models.AppointmentPending, models.AppointmentPending, nil},
		{models.AppointmentPending, models.AppointmentConfirmed, nil},
		{models.AppointmentPending, models.AppointmentCancelled, nil},
		{models.AppointmentPending, models.AppointmentCompleted, ErrInvalidStateTransition},
		{models.AppointmentConfirmed, models.AppointmentCompleted, nil},
		{models.AppointmentConfirmed, models.AppointmentCancelled, nil},
		{models.AppointmentConfirmed, models.AppointmentPending, ErrInvalidStateTransition},
		{models.AppointmentCompleted, models.AppointmentCancelled, ErrInvalidStateTransition},
		{models.AppointmentCompleted, models.AppointmentConfirmed, ErrInvalidStateTransition},
		{models.AppointmentCancelled, models.AppointmentConfirmed, ErrInvalidStateTransition},
		{models.AppointmentCancelled, models.AppointmentCancelled, nil},
		{models.AppointmentConfirmed, "archived", ErrInvalidStatus},
	}

	for _, tc := range cases {
		err := validateStatusTransition(tc.current, tc.next)
		if !errors.Is(err, tc.wantErr) {
			t.Errorf("%s -> %s: got %v, want %v", tc.current, tc.next, err, tc.wantErr)
		}
	}
}
