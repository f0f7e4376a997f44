package models

import "time"

const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	Name           string    `json:"name"`
	Email          *string   `json:"email"`
	Role           string    `json:"role"`
	OwnerUserID    *int64    `json:"owner_user_id,omitempty"`
	ProfessionalID *int64    `json:"professional_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnerScope returns the id under which the user's salon data is partitioned.
// Admins own their data; professional accounts operate against their admin's.
func (u *User) OwnerScope() int64 {
	if u.Role == RoleProfessional && u.OwnerUserID != nil {
		return *u.OwnerUserID
	}
	return u.ID
}
