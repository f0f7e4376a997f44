package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, name, email, role, owner_user_id, professional_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.OwnerUserID,
		&user.ProfessionalID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, name, email, role, owner_user_id, professional_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRow(
		ctx,
		query,
		user.Username,
		user.PasswordHash,
		user.Name,
		user.Email,
		user.Role,
		user.OwnerUserID,
		user.ProfessionalID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// GetOldestAdmin returns the first admin account ever created. The public
// booking funnel falls back to it when no owner is configured.
func (r *UserRepository) GetOldestAdmin(ctx context.Context) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = 'admin' ORDER BY id ASC LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query))
}

// GetByProfessionalID returns the system-access account bound to a
// professional, if one exists.
func (r *UserRepository) GetByProfessionalID(ctx context.Context, professionalID int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE professional_id = $1`
	return scanUser(r.db.QueryRow(ctx, query, professionalID))
}

// ListByOwner returns the professional accounts operating under an admin.
func (r *UserRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE owner_user_id = $1 ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
