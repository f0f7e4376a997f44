package models

import "time"

type Professional struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	Phone     string    `json:"phone"`
	Email     *string   `json:"email"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
