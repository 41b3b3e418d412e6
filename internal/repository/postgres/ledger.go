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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerStore implements domain.TxManager on a pgx pool
type LedgerStore struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{
		pool:    pool,
		queries: sqlc.New(pool),
	}
}

// WithinTx runs fn inside a single database transaction and commits only if fn succeeds
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&ledgerTx{q: s.queries.WithTx(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type ledgerTx struct {
	q *sqlc.Queries
}

func (t *ledgerTx) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	balance, err := decimalToPgNumeric(account.Balance)
	if err != nil {
		return nil, fmt.Errorf("invalid balance: %w", err)
	}
	created, err := t.q.CreateAccount(ctx, sqlc.CreateAccountParams{
		UserID:    account.UserID,
		Name:      account.Name,
		Type:      string(account.Type),
		Balance:   balance,
		IsDefault: account.IsDefault,
	})
	if err != nil {
		return nil, err
	}
	return sqlcAccountToDomain(created), nil
}

func (t *ledgerTx) ClearDefaultAccounts(ctx context.Context, userID uuid.UUID) error {
	return t.q.ClearDefaultAccounts(ctx, userID)
}

func (t *ledgerTx) SetDefaultAccount(ctx context.Context, userID, accountID uuid.UUID) (*domain.Account, error) {
	account, err := t.q.SetDefaultAccount(ctx, sqlc.SetDefaultAccountParams{
		UserID: userID,
		ID:     accountID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return sqlcAccountToDomain(account), nil
}

func (t *ledgerTx) AdjustAccountBalance(ctx context.Context, userID, accountID uuid.UUID, delta decimal.Decimal) (*domain.Account, error) {
	pgDelta, err := decimalToPgNumeric(delta)
	if err != nil {
		return nil, fmt.Errorf("invalid balance delta: %w", err)
	}
	account, err := t.q.AdjustAccountBalance(ctx, sqlc.AdjustAccountBalanceParams{
		Delta:  pgDelta,
		UserID: userID,
		ID:     accountID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	return sqlcAccountToDomain(account), nil
}

func (t *ledgerTx) CreateTransaction(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	interval := pgtype.Text{}
	if transaction.RecurringInterval != nil {
		interval = pgtype.Text{String: string(*transaction.RecurringInterval), Valid: true}
	}

	created, err := t.q.CreateTransaction(ctx, sqlc.CreateTransactionParams{
		UserID:            transaction.UserID,
		AccountID:         transaction.AccountID,
		Type:              string(transaction.Type),
		Amount:            amount,
		Description:       stringPtrToPgText(transaction.Description),
		Date:              timeToPgTimestamptz(transaction.Date),
		Category:          transaction.Category,
		ReceiptUrl:        stringPtrToPgText(transaction.ReceiptURL),
		IsRecurring:       transaction.IsRecurring,
		RecurringInterval: interval,
		NextRecurringDate: timePtrToPgTimestamptz(transaction.NextRecurringDate),
		Status:            string(transaction.Status),
	})
	if err != nil {
		return nil, err
	}
	return sqlcTransactionToDomain(created), nil
}

func (t *ledgerTx) GetTransactionForUpdate(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	row, err := t.q.GetTransactionByIDForUpdate(ctx, sqlc.GetTransactionByIDForUpdateParams{
		UserID: userID,
		ID:     id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return sqlcTransactionToDomain(row), nil
}

func (t *ledgerTx) MarkRecurringProcessed(ctx context.Context, userID, id uuid.UUID, processedAt, nextRecurringDate time.Time) error {
	n, err := t.q.MarkRecurringProcessed(ctx, sqlc.MarkRecurringProcessedParams{
		ProcessedAt:       timeToPgTimestamptz(processedAt),
		NextRecurringDate: timeToPgTimestamptz(nextRecurringDate),
		UserID:            userID,
		ID:                id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (t *ledgerTx) DeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Transaction, error) {
	rows, err := t.q.DeleteTransactionsByIDs(ctx, sqlc.DeleteTransactionsByIDsParams{
		UserID: userID,
		Ids:    ids,
	})
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Transaction, len(rows))
	for i, row := range rows {
		result[i] = sqlcTransactionToDomain(row)
	}
	return result, nil
}
