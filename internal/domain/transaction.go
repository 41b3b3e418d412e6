package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "INCOME"
	TransactionTypeExpense TransactionType = "EXPENSE"
)

// IsValid reports whether t is a known transaction type
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is a single ledger entry. Amount is never negative; the sign
// applied to the account balance is derived from Type.
type Transaction struct {
	ID                uuid.UUID          `json:"id"`
	UserID            uuid.UUID          `json:"userId"`
	AccountID         uuid.UUID          `json:"accountId"`
	Type              TransactionType    `json:"type"`
	Amount            decimal.Decimal    `json:"amount"`
	Description       *string            `json:"description,omitempty"`
	Date              time.Time          `json:"date"`
	Category          string             `json:"category"`
	ReceiptURL        *string            `json:"receiptUrl,omitempty"`
	IsRecurring       bool               `json:"isRecurring"`
	RecurringInterval *RecurringInterval `json:"recurringInterval,omitempty"`
	NextRecurringDate *time.Time         `json:"nextRecurringDate,omitempty"`
	LastProcessed     *time.Time         `json:"lastProcessed,omitempty"`
	Status            TransactionStatus  `json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// SignedAmount returns the balance delta this transaction applies:
// +amount for income, -amount for expense.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// IsDue reports whether a recurring transaction should be materialized at now.
// A transaction that was never processed is due; otherwise it is due once
// nextRecurringDate is at or before now.
func (t *Transaction) IsDue(now time.Time) bool {
	if !t.IsRecurring || t.Status != TransactionStatusCompleted {
		return false
	}
	if t.LastProcessed == nil {
		return true
	}
	return t.NextRecurringDate != nil && !t.NextRecurringDate.After(now)
}

// DueRecurring identifies one due recurring transaction and its owner
type DueRecurring struct {
	TransactionID uuid.UUID
	UserID        uuid.UUID
}

type TransactionRepository interface {
	GetByID(ctx context.Context, userID, id uuid.UUID) (*Transaction, error)
	ListByAccount(ctx context.Context, userID, accountID uuid.UUID) ([]*Transaction, error)
	ListDueRecurring(ctx context.Context, now time.Time) ([]DueRecurring, error)
	// SumExpenses totals EXPENSE amounts for an account with from <= date < to
	SumExpenses(ctx context.Context, userID, accountID uuid.UUID, from, to time.Time) (decimal.Decimal, error)
}
