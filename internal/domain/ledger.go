package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerTx is the set of writes that must commit together. Every method runs
// inside the store transaction opened by TxManager.WithinTx.
type LedgerTx interface {
	CreateAccount(ctx context.Context, account *Account) (*Account, error)
	ClearDefaultAccounts(ctx context.Context, userID uuid.UUID) error
	SetDefaultAccount(ctx context.Context, userID, accountID uuid.UUID) (*Account, error)
	// AdjustAccountBalance increments the balance by delta (which may be negative)
	AdjustAccountBalance(ctx context.Context, userID, accountID uuid.UUID, delta decimal.Decimal) (*Account, error)

	CreateTransaction(ctx context.Context, transaction *Transaction) (*Transaction, error)
	// GetTransactionForUpdate reads a transaction and holds it until commit
	GetTransactionForUpdate(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	MarkRecurringProcessed(ctx context.Context, userID, id uuid.UUID, processedAt, nextRecurringDate time.Time) error
	DeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]*Transaction, error)
}

// TxManager runs fn in one all-or-nothing store transaction. If fn returns an
// error nothing it wrote is persisted.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}
