package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type ProfessionalRepository struct {
	db DBTX
}

func NewProfessionalRepository(db DBTX) *ProfessionalRepository {
	return &ProfessionalRepository{db: db}
}

type CreateProfessionalInput struct {
	Name      string
	Specialty string
	Phone     string
	Email     *string
}

const professionalColumns = `id, name, specialty, phone, email, user_id, created_at`

func (r *ProfessionalRepository) Create(ctx context.Context, ownerID int64, input CreateProfessionalInput) (*models.Professional, error) {
	query := `
		INSERT INTO professionals (name, specialty, phone, email, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + professionalColumns + `
	`
	return r.scanProfessional(r.db.QueryRow(ctx, query, input.Name, input.Specialty, input.Phone, input.Email, ownerID))
}

func (r *ProfessionalRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professionals WHERE id = $1 AND user_id = $2`
	return r.scanProfessional(r.db.QueryRow(ctx, query, id, ownerID))
}

func (r *ProfessionalRepository) List(ctx context.Context, ownerID int64) ([]models.Professional, error) {
	query := `SELECT ` + professionalColumns + ` FROM professionals WHERE user_id = $1 ORDER BY name ASC, id ASC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	professionals := make([]models.Professional, 0)
	for rows.Next() {
		professional, err := r.scanProfessional(rows)
		if err != nil {
			return nil, err
		}
		professionals = append(professionals, *professional)
	}
	return professionals, rows.Err()
}

func (r *ProfessionalRepository) Update(ctx context.Context, id, ownerID int64, input CreateProfessionalInput) (*models.Professional, error) {
	query := `
		UPDATE professionals
		SET name = $3, specialty = $4, phone = $5, email = $6
		WHERE id = $1 AND user_id = $2
		RETURNING ` + professionalColumns + `
	`
	return r.scanProfessional(r.db.QueryRow(ctx, query, id, ownerID, input.Name, input.Specialty, input.Phone, input.Email))
}

func (r *ProfessionalRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM professionals WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProfessionalRepository) scanProfessional(row pgx.Row) (*models.Professional, error) {
	var professional models.Professional
	err := row.Scan(
		&professional.ID,
		&professional.Name,
		&professional.Specialty,
		&professional.Phone,
		&professional.Email,
		&professional.UserID,
		&professional.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &professional, nil
}
