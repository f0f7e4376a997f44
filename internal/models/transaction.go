package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionRevenue = "revenue"
	TransactionExpense = "expense"
)

type Transaction struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	Type          string          `json:"type"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	Date          time.Time       `json:"date"`
	AppointmentID *int64          `json:"appointment_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionSummary aggregates the ledger over a period.
type TransactionSummary struct {
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}
