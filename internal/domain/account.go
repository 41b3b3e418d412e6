package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeSavings AccountType = "SAVINGS"
)

// IsValid reports whether t is a known account type
func (t AccountType) IsValid() bool {
	return t == AccountTypeCurrent || t == AccountTypeSavings
}

type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"userId"`
	Name      string          `json:"name"`
	Type      AccountType     `json:"type"`
	Balance   decimal.Decimal `json:"balance"`
	IsDefault bool            `json:"isDefault"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// AccountWithCount is an account plus the number of transactions booked against it
type AccountWithCount struct {
	Account
	TransactionCount int64 `json:"transactionCount"`
}

// AccountRepository covers the read side of accounts. Writes that must stay
// consistent with the ledger go through LedgerTx.
type AccountRepository interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*AccountWithCount, error)
	GetDefault(ctx context.Context, userID uuid.UUID) (*Account, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
