package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/spendsmart/spendsmart-backend/db/sqlc"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository implements domain.AccountRepository using PostgreSQL
type AccountRepository struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
}

// NewAccountRepository creates a new AccountRepository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{
		pool:    pool,
		queries: sqlc.New(pool),
	}
}

// GetByID retrieves an account owned by userID
func (r *AccountRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	account, err := r.queries.GetAccountByID(ctx, sqlc.GetAccountByIDParams{
		UserID: userID,
		ID:     id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return sqlcAccountToDomain(account), nil
}

// ListByUser retrieves all accounts for a user with their transaction counts
func (r *AccountRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.AccountWithCount, error) {
	rows, err := r.queries.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]*domain.AccountWithCount, len(rows))
	for i, row := range rows {
		result[i] = &domain.AccountWithCount{
			Account: *sqlcAccountToDomain(sqlc.Account{
				ID:        row.ID,
				UserID:    row.UserID,
				Name:      row.Name,
				Type:      row.Type,
				Balance:   row.Balance,
				IsDefault: row.IsDefault,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			}),
			TransactionCount: row.TransactionCount,
		}
	}
	return result, nil
}

// GetDefault retrieves the user's default account
func (r *AccountRepository) GetDefault(ctx context.Context, userID uuid.UUID) (*domain.Account, error) {
	account, err := r.queries.GetDefaultAccountByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoDefaultAccount
		}
		return nil, err
	}
	return sqlcAccountToDomain(account), nil
}

// CountByUser returns how many accounts the user owns
func (r *AccountRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return r.queries.CountAccountsByUser(ctx, userID)
}
