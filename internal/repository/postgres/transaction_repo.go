package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/db/sqlc"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{
		pool:    pool,
		queries: sqlc.New(pool),
	}
}

// GetByID retrieves a transaction owned by userID
func (r *TransactionRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	t, err := r.queries.GetTransactionByID(ctx, sqlc.GetTransactionByIDParams{
		UserID: userID,
		ID:     id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return sqlcTransactionToDomain(t), nil
}

// ListByAccount retrieves an account's transactions, newest first
func (r *TransactionRepository) ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, sqlc.ListTransactionsByAccountParams{
		UserID:    userID,
		AccountID: accountID,
	})
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Transaction, len(rows))
	for i, t := range rows {
		result[i] = sqlcTransactionToDomain(t)
	}
	return result, nil
}

// ListDueRecurring returns every recurring COMPLETED transaction that was
// never processed or whose next occurrence is at or before now
func (r *TransactionRepository) ListDueRecurring(ctx context.Context, now time.Time) ([]domain.DueRecurring, error) {
	rows, err := r.queries.ListDueRecurringTransactions(ctx, timeToPgTimestamptz(now))
	if err != nil {
		return nil, err
	}
	result := make([]domain.DueRecurring, len(rows))
	for i, row := range rows {
		result[i] = domain.DueRecurring{TransactionID: row.ID, UserID: row.UserID}
	}
	return result, nil
}

// SumExpenses totals EXPENSE amounts for an account with from <= date < to
func (r *TransactionRepository) SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error) {
	total, err := r.queries.SumExpensesByAccount(ctx, sqlc.SumExpensesByAccountParams{
		UserID:    userID,
		AccountID: accountID,
		StartDate: timeToPgTimestamptz(from),
		EndDate:   timeToPgTimestamptz(to),
	})
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}
