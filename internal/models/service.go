package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Service struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	DurationMinutes int             `json:"duration"`
	Price           decimal.Decimal `json:"price"`
	UserID          int64           `json:"user_id"`
	CreatedAt       time.Time       `json:"created_at"`
}
