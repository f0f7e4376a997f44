package repository

import (
	"context"

	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type ClientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

type CreateClientInput struct {
	Name  string
	Phone string
	Email *string
}

const clientColumns = `id, name, phone, email, user_id, created_at`

func (r *ClientRepository) Create(ctx context.Context, ownerID int64, input CreateClientInput) (*models.Client, error) {
	query := `
		INSERT INTO clients (name, phone, email, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + clientColumns + `
	`
	var client models.Client
	err := r.db.QueryRow(ctx, query, input.Name, input.Phone, input.Email, ownerID).Scan(
		&client.ID,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.UserID,
		&client.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) GetByID(ctx context.Context, id, ownerID int64) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND user_id = $2`
	var client models.Client
	err := r.db.QueryRow(ctx, query, id, ownerID).Scan(
		&client.ID,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.UserID,
		&client.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// GetByPhone is used by the public funnel to reuse an existing client record
// instead of creating a duplicate per booking.
func (r *ClientRepository) GetByPhone(ctx context.Context, ownerID int64, phone string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1 AND phone = $2 ORDER BY id ASC LIMIT 1`
	var client models.Client
	err := r.db.QueryRow(ctx, query, ownerID, phone).Scan(
		&client.ID,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.UserID,
		&client.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context, ownerID int64) ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE user_id = $1 ORDER BY name ASC, id ASC`
	return r.queryClients(ctx, query, ownerID)
}

func (r *ClientRepository) Search(ctx context.Context, ownerID int64, term string) ([]models.Client, error) {
	query := `
		SELECT ` + clientColumns + `
		FROM clients
		WHERE user_id = $1 AND (name ILIKE '%' || $2 || '%' OR phone ILIKE '%' || $2 || '%')
		ORDER BY name ASC, id ASC
	`
	return r.queryClients(ctx, query, ownerID, term)
}

func (r *ClientRepository) Update(ctx context.Context, id, ownerID int64, input CreateClientInput) (*models.Client, error) {
	query := `
		UPDATE clients
		SET name = $3, phone = $4, email = $5
		WHERE id = $1 AND user_id = $2
		RETURNING ` + clientColumns + `
	`
	var client models.Client
	err := r.db.QueryRow(ctx, query, id, ownerID, input.Name, input.Phone, input.Email).Scan(
		&client.ID,
		&client.Name,
		&client.Phone,
		&client.Email,
		&client.UserID,
		&client.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *ClientRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ClientRepository) queryClients(ctx context.Context, query string, args ...any) ([]models.Client, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := make([]models.Client, 0)
	for rows.Next() {
		var client models.Client
		if err := rows.Scan(
			&client.ID,
			&client.Name,
			&client.Phone,
			&client.Email,
			&client.UserID,
			&client.CreatedAt,
		); err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}
