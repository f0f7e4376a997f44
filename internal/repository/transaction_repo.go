package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pedro17pedroo/sal-o-beleza/internal/models"
	"github.com/shopspring/decimal"
)

type TransactionRepository struct {
	db DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{db: db}
}

type CreateTransactionInput struct {
	Type          string
	Category      string
	Amount        decimal.Decimal
	Description   string
	Date          time.Time
	AppointmentID *int64
}

type TransactionListFilter struct {
	Type string
	From *time.Time
	To   *time.Time
}

const transactionColumns = `id, user_id, type, category, amount, description, date, appointment_id, created_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var transaction models.Transaction
	err := row.Scan(
		&transaction.ID,
		&transaction.UserID,
		&transaction.Type,
		&transaction.Category,
		&transaction.Amount,
		&transaction.Description,
		&transaction.Date,
		&transaction.AppointmentID,
		&transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *TransactionRepository) Create(ctx context.Context, ownerID int64, input CreateTransactionInput) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, type, category, amount, description, date, appointment_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + transactionColumns + `
	`
	return scanTransaction(r.db.QueryRow(
		ctx,
		query,
		ownerID,
		input.Type,
		input.Category,
		input.Amount,
		input.Description,
		input.Date,
		input.AppointmentID,
	))
}

func (r *TransactionRepository) List(ctx context.Context, ownerID int64, filter TransactionListFilter) ([]models.Transaction, error) {
	args := []any{ownerID}
	whereParts := []string{"user_id = $1"}

	if transactionType := strings.TrimSpace(filter.Type); transactionType != "" {
		args = append(args, transactionType)
		whereParts = append(whereParts, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		whereParts = append(whereParts, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		whereParts = append(whereParts, fmt.Sprintf("date < $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM transactions
		WHERE %s
		ORDER BY date DESC, id DESC
	`, transactionColumns, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *transaction)
	}
	return transactions, rows.Err()
}

func (r *TransactionRepository) Delete(ctx context.Context, id, ownerID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Summarize totals revenue and expense over [from, to).
func (r *TransactionRepository) Summarize(ctx context.Context, ownerID int64, from, to time.Time) (*models.TransactionSummary, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'revenue'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'expense'), 0)
		FROM transactions
		WHERE user_id = $1 AND date >= $2 AND date < $3
	`
	var summary models.TransactionSummary
	if err := r.db.QueryRow(ctx, query, ownerID, from, to).Scan(&summary.Revenue, &summary.Expense); err != nil {
		return nil, err
	}
	summary.Balance = summary.Revenue.Sub(summary.Expense)
	return &summary, nil
}
