package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/shopspring/decimal"
)

type ServiceRepository struct {
	db DBTX
}

func NewServiceRepository(db DBTX) *ServiceRepository {
	return &ServiceRepository{db: db}
}

type CreateServiceInput struct {
	Name            string
	DurationMinutes int
	Price           decimal.Decimal
}

const serviceColumns = `id, name, duration, price, user_id, created_at`

func (r *ServiceRepository) Create(ctx context.Context, ownerID int64, input CreateServiceInput) (*models.Service, error) {
	query := `
		INSERT INTO services (name, duration, price, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + serviceColumns + `
	`
	return r.scanService(r.db.QueryRow(ctx, query, input.Name, input.DurationMinutes, input.Price, ownerID))
}

func (r *ServiceRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1 AND user_id = $2`
	return r.scanService(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *ServiceRepository) List(ctx context.Context, ownerID int64) ([]models.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE user_id = $1 ORDER BY name ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]models.Service, 0)
	for rows.Next() {
		var service models.Service
		if err := rows.Scan(
			&service.ID,
			&service.Name,
			&service.DurationMinutes,
			&service.Price,
			&service.UserID,
			&service.CreatedAt,
		); err != nil {
			return nil, err
		}
		services = append(services, service)
	}
	return services, rows.Err()
}

func (r *ServiceRepository) Update(ctx context.Context, id, ownerID int64, input CreateServiceInput) (*models.Service, error) {
	query := `
		UPDATE services
		SET name = $3, duration = $4, price = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + serviceColumns + `
	`
	return r.scanService(r.db.QueryRow(ctx, query, id, ownerID, input.Name, input.DurationMinutes, input.Price))
}

func (r *ServiceRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ServiceRepository) scanService(row pgx.Row) (*models.Service, error) {
	var service models.Service
	err := row.Scan(
		&service.ID,
		&service.Name,
		&service.DurationMinutes,
		&service.Price,
		&service.UserID,
		&service.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &service, nil
}
