package repository

import (
	"context"

	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
)

type PermissionRepository struct {
	db DBTX
}

func NewPermissionRepository(db DBTX) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) ListByUserID(ctx context.Context, userID int64) ([]models.Permission, error) {
	query := `SELECT permission FROM user_permissions WHERE user_id = $1 ORDER BY permission ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	permissions := make([]models.Permission, 0)
	for rows.Next() {
		var permission models.Permission
		if err := rows.Scan(&permission); err != nil {
			return nil, err
		}
		permissions = append(permissions, permission)
	}
	return permissions, rows.Err()
}

// ReplaceForUser swaps the full grant set of a user. Callers run it inside a
// transaction so a failed insert never leaves the user half-granted.
func (r *PermissionRepository) ReplaceForUser(ctx context.Context, userID int64, permissions []models.Permission) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
		return err
	}
	for _, permission := range permissions {
		if _, err := r.db.Exec(
			ctx,
			`INSERT INTO user_permissions (user_id, permission) VALUES ($1, $2)`,
			userID,
			permission,
		); err != nil {
			return err
		}
	}
	return nil
}
