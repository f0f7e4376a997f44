package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type AppointmentRepository struct {
	db DBTX
}

func NewAppointmentRepository(db DBTX) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

type CreateAppointmentInput struct {
	ClientID       int64
	ServiceID      int64
	ProfessionalID *int64
	Date           time.Time
	EndDate        time.Time
	Notes          *string
	Status         string
	BookingRef     *string
}

type UpdateAppointmentInput struct {
	ClientID       int64
	ServiceID      int64
	ProfessionalID *int64
	Date           time.Time
	EndDate        time.Time
	Notes          *string
	Status         string
}

const appointmentColumns = `id, client_id, service_id, professional_id, user_id, date, end_date, notes, status, payment_status, booking_ref, created_at, updated_at`

func scanAppointment(row pgx.Row) (*models.Appointment, error) {
	var appointment models.Appointment
	err := row.Scan(
		&appointment.ID,
		&appointment.ClientID,
		&appointment.ServiceID,
		&appointment.ProfessionalID,
		&appointment.UserID,
		&appointment.Date,
		&appointment.EndDate,
		&appointment.Notes,
		&appointment.Status,
		&appointment.PaymentStatus,
		&appointment.BookingRef,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepository) Create(ctx context.Context, ownerID int64, input CreateAppointmentInput) (*models.Appointment, error) {
	query := `
		INSERT INTO appointments (client_id, service_id, professional_id, user_id, date, end_date, notes, status, payment_status, booking_ref)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'pending', $9)
		RETURNING ` + appointmentColumns + `
	`
	return scanAppointment(r.db.QueryRow(
		ctx,
		query,
		input.ClientID,
		input.ServiceID,
		input.ProfessionalID,
		ownerID,
		input.Date,
		input.EndDate,
		input.Notes,
		input.Status,
		input.BookingRef,
	))
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1 AND user_id = $2`
	return scanAppointment(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *AppointmentRepository) Update(ctx context.Context, id, ownerID int64, input UpdateAppointmentInput) (*models.Appointment, error) {
	query := `
		UPDATE appointments
		SET client_id = $3, service_id = $4, professional_id = $5, date = $6, end_date = $7, notes = $8, status = $9, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + appointmentColumns + `
	`
	return scanAppointment(r.db.QueryRow(
		ctx,
		query,
		id,
		ownerID,
		input.ClientID,
		input.ServiceID,
		input.ProfessionalID,
		input.Date,
		input.EndDate,
		input.Notes,
		input.Status,
	))
}

// UpdatePaymentStatusIfCurrent flips payment_status only when the row still
// holds the expected current value. Returns pgx.ErrNoRows when the guard fails.
func (r *AppointmentRepository) UpdatePaymentStatusIfCurrent(
	ctx context.Context,
	id, ownerID int64,
	currentStatus, nextStatus string,
) (*models.Appointment, error) {
	query := `
		UPDATE appointments
		SET payment_status = $4, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND payment_status = $3
		RETURNING ` + appointmentColumns + `
	`
	return scanAppointment(r.db.QueryRow(ctx, query, id, ownerID, currentStatus, nextStatus))
}

func (r *AppointmentRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM appointments WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const appointmentDetailQuery = `
	SELECT a.id, a.client_id, a.service_id, a.professional_id, a.user_id, a.date, a.end_date,
	       a.notes, a.status, a.payment_status, a.booking_ref, a.created_at, a.updated_at,
	       c.name, c.phone, s.name, s.price, s.duration, p.name
	FROM appointments a
	INNER JOIN clients c ON c.id = a.client_id
	INNER JOIN services s ON s.id = a.service_id
	LEFT JOIN professionals p ON p.id = a.professional_id
`

func scanAppointmentDetail(row pgx.Row) (*models.AppointmentDetail, error) {
	var detail models.AppointmentDetail
	err := row.Scan(
		&detail.ID,
		&detail.ClientID,
		&detail.ServiceID,
		&detail.ProfessionalID,
		&detail.UserID,
		&detail.Date,
		&detail.EndDate,
		&detail.Notes,
		&detail.Status,
		&detail.PaymentStatus,
		&detail.BookingRef,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.ClientName,
		&detail.ClientPhone,
		&detail.ServiceName,
		&detail.ServicePrice,
		&detail.ServiceDuration,
		&detail.ProfessionalName,
	)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *AppointmentRepository) GetDetail(ctx context.Context, id, ownerID int64) (*models.AppointmentDetail, error) {
	query := appointmentDetailQuery + ` WHERE a.id = $1 AND a.user_id = $2`
	return scanAppointmentDetail(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *AppointmentRepository) ListDetails(ctx context.Context, ownerID int64) ([]models.AppointmentDetail, error) {
	query := appointmentDetailQuery + ` WHERE a.user_id = $1 ORDER BY a.date ASC, a.id ASC`
	return r.queryDetails(ctx, query, ownerID)
}

// ListDetailsBetween returns appointments starting within [from, to).
func (r *AppointmentRepository) ListDetailsBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.AppointmentDetail, error) {
	query := appointmentDetailQuery + `
		WHERE a.user_id = $1 AND a.date >= $2 AND a.date < $3
		ORDER BY a.date ASC, a.id ASC`
	return r.queryDetails(ctx, query, ownerID, from, to)
}

func (r *AppointmentRepository) queryDetails(ctx context.Context, query string, args ...any) ([]models.AppointmentDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]models.AppointmentDetail, 0)
	for rows.Next() {
		detail, err := scanAppointmentDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *detail)
	}
	return details, rows.Err()
}

// HasConflict reports whether any non-cancelled appointment for the
// professional overlaps [start, end). Intervals are half-open, so a booking
// ending exactly when another starts is not a conflict.
func (r *AppointmentRepository) HasConflict(
	ctx context.Context,
	ownerID, professionalID int64,
	start, end time.Time,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE user_id = $1
			  AND professional_id = $2
			  AND status <> 'cancelled'
			  AND date < $4
			  AND end_date > $3
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, ownerID, professionalID, start, end).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

// HasConflictExcluding is HasConflict minus one appointment id, used when an
// edit is re-checked against everything but itself.
func (r *AppointmentRepository) HasConflictExcluding(
	ctx context.Context,
	ownerID, professionalID int64,
	start, end time.Time,
	excludedID int64,
) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM appointments
			WHERE user_id = $1
			  AND professional_id = $2
			  AND id <> $5
			  AND status <> 'cancelled'
			  AND date < $4
			  AND end_date > $3
		)
	`
	var hasConflict bool
	if err := r.db.QueryRow(ctx, query, ownerID, professionalID, start, end, excludedID).Scan(&hasConflict); err != nil {
		return false, err
	}
	return hasConflict, nil
}

// ListActiveBetween returns assigned, non-cancelled appointments overlapping
// [from, to). Slot generation feeds these to the overlap walk.
func (r *AppointmentRepository) ListActiveBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]models.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE user_id = $1
		  AND professional_id IS NOT NULL
		  AND status <> 'cancelled'
		  AND date < $3
		  AND end_date > $2
		ORDER BY date ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]models.Appointment, 0)
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}
	return appointments, rows.Err()
}
