package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/db/sqlc"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(pool *pgxpool.Pool) *BudgetRepository {
	return &BudgetRepository{
		pool:    pool,
		queries: sqlc.New(pool),
	}
}

// Upsert creates the user's budget or replaces its amount
func (r *BudgetRepository) Upsert(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Budget, error) {
	pgAmount, err := decimalToPgNumeric(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}
	budget, err := r.queries.UpsertBudget(ctx, sqlc.UpsertBudgetParams{
		UserID: userID,
		Amount: pgAmount,
	})
	if err != nil {
		return nil, err
	}
	return sqlcBudgetToDomain(budget), nil
}

// GetByUser retrieves the user's budget
func (r *BudgetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.Budget, error) {
	budget, err := r.queries.GetBudgetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, err
	}
	return sqlcBudgetToDomain(budget), nil
}

// ListAlertCandidates returns every budget with its owner and default account
func (r *BudgetRepository) ListAlertCandidates(ctx context.Context) ([]*domain.BudgetAlertCandidate, error) {
	rows, err := r.queries.ListBudgetsForAlertCheck(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.BudgetAlertCandidate, len(rows))
	for i, row := range rows {
		c := &domain.BudgetAlertCandidate{
			Budget: domain.Budget{
				ID:            row.ID,
				UserID:        row.UserID,
				Amount:        pgNumericToDecimal(row.Amount),
				LastAlertSent: pgTimestamptzToTimePtr(row.LastAlertSent),
			},
			UserEmail: row.UserEmail,
			UserName:  pgTextToStringPtr(row.UserName),
		}
		if row.AccountID.Valid {
			accountID := uuid.UUID(row.AccountID.Bytes)
			c.DefaultAccountID = &accountID
			c.DefaultAccountName = row.AccountName.String
		}
		result[i] = c
	}
	return result, nil
}

// ClaimAlert stamps lastAlertSent unless another sweep already did so this month
func (r *BudgetRepository) ClaimAlert(ctx context.Context, budgetID uuid.UUID, alertedAt, monthStart, nextMonthStart time.Time) (bool, error) {
	n, err := r.queries.ClaimBudgetAlert(ctx, sqlc.ClaimBudgetAlertParams{
		AlertedAt:      timeToPgTimestamptz(alertedAt),
		ID:             budgetID,
		MonthStart:     timeToPgTimestamptz(monthStart),
		NextMonthStart: timeToPgTimestamptz(nextMonthStart),
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
