package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type ScheduleRepository struct {
	db DBTX
}

func NewScheduleRepository(db DBTX) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = `id, professional_id, user_id, work_days, work_start_time, work_end_time, lunch_start_time, lunch_end_time, created_at, updated_at`

// Upsert creates or replaces the weekly schedule of a professional.
func (r *ScheduleRepository) Upsert(ctx context.Context, schedule *models.WorkSchedule) (*models.WorkSchedule, error) {
	var lunchStart, lunchEnd *string
	if schedule.HasLunch() {
		start := schedule.LunchStart.String()
		end := schedule.LunchEnd.String()
		lunchStart, lunchEnd = &start, &end
	}

	query := `
		INSERT INTO work_schedules (professional_id, user_id, work_days, work_start_time, work_end_time, lunch_start_time, lunch_end_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (professional_id) DO UPDATE
		SET work_days = EXCLUDED.work_days,
		    work_start_time = EXCLUDED.work_start_time,
		    work_end_time = EXCLUDED.work_end_time,
		    lunch_start_time = EXCLUDED.lunch_start_time,
		    lunch_end_time = EXCLUDED.lunch_end_time,
		    updated_at = NOW()
		RETURNING ` + scheduleColumns + `
	`
	return scanSchedule(r.db.QueryRow(
		ctx,
		query,
		schedule.ProfessionalID,
		schedule.UserID,
		schedule.WorkDays.String(),
		schedule.WorkStart.String(),
		schedule.WorkEnd.String(),
		lunchStart,
		lunchEnd,
	))
}

func (r *ScheduleRepository) GetByProfessionalID(ctx context.Context, professionalID, ownerID int64) (*models.WorkSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM work_schedules WHERE professional_id = $1 AND user_id = $2`
	return scanSchedule(r.db.QueryRow(ctx, query, professionalID, ownerID))
}

// ListByOwner returns every configured schedule in the owner scope. Slot
// generation loads them all for a day in one read.
func (r *ScheduleRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.WorkSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM work_schedules WHERE user_id = $1 ORDER BY professional_id ASC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schedules := make([]models.WorkSchedule, 0)
	for rows.Next() {
		schedule, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *schedule)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) DeleteByProfessionalID(ctx context.Context, professionalID, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM work_schedules WHERE professional_id = $1 AND user_id = $2`, professionalID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// scanSchedule parses the stored csv/HH:MM encodings into the value types
// the availability engine works with.
func scanSchedule(row pgx.Row) (*models.WorkSchedule, error) {
	var (
		schedule   models.WorkSchedule
		workDays   string
		workStart  string
		workEnd    string
		lunchStart *string
		lunchEnd   *string
	)
	err := row.Scan(
		&schedule.ID,
		&schedule.ProfessionalID,
		&schedule.UserID,
		&workDays,
		&workStart,
		&workEnd,
		&lunchStart,
		&lunchEnd,
		&schedule.CreatedAt,
		&schedule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if schedule.WorkDays, err = models.ParseWeekdaySet(workDays); err != nil {
		return nil, fmt.Errorf("schedule %d: %w", schedule.ID, err)
	}
	if schedule.WorkStart, err = models.ParseMinuteOfDay(workStart); err != nil {
		return nil, fmt.Errorf("schedule %d: %w", schedule.ID, err)
	}
	if schedule.WorkEnd, err = models.ParseMinuteOfDay(workEnd); err != nil {
		return nil, fmt.Errorf("schedule %d: %w", schedule.ID, err)
	}
	if lunchStart != nil && lunchEnd != nil {
		start, err := models.ParseMinuteOfDay(*lunchStart)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: %w", schedule.ID, err)
		}
		end, err := models.ParseMinuteOfDay(*lunchEnd)
		if err != nil {
			return nil, fmt.Errorf("schedule %d: %w", schedule.ID, err)
		}
		schedule.LunchStart, schedule.LunchEnd = &start, &end
	}
	return &schedule, nil
}
