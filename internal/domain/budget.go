package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a user's monthly spending ceiling. One per user.
type Budget struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	LastAlertSent *time.Time      `json:"lastAlertSent,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BudgetAlertCandidate is a budget joined with what the alert sweep needs
// about its owner. DefaultAccountID is nil when the owner has no default account.
type BudgetAlertCandidate struct {
	Budget             Budget
	UserEmail          string
	UserName           *string
	DefaultAccountID   *uuid.UUID
	DefaultAccountName string
}

type BudgetRepository interface {
	Upsert(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*Budget, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*Budget, error)
	ListAlertCandidates(ctx context.Context) ([]*BudgetAlertCandidate, error)
	// ClaimAlert sets lastAlertSent to alertedAt only if it is still null or
	// outside [monthStart, nextMonthStart). It reports whether this caller won.
	ClaimAlert(ctx context.Context, budgetID uuid.UUID, alertedAt, monthStart, nextMonthStart time.Time) (bool, error)
}
