package service

import (
	"context"
	"errors"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetService handles budget-related business logic
type BudgetService struct {
	budgetRepo  domain.BudgetRepository
	accountRepo domain.AccountRepository
	monitor     *BudgetAlertMonitor
}

// NewBudgetService creates a new BudgetService. Usage is computed with the
// monitor so the view matches what alerts are based on.
func NewBudgetService(budgetRepo domain.BudgetRepository, accountRepo domain.AccountRepository, monitor *BudgetAlertMonitor) *BudgetService {
	return &BudgetService{
		budgetRepo:  budgetRepo,
		accountRepo: accountRepo,
		monitor:     monitor,
	}
}

// CurrentBudget is the user's budget and its usage for one account. Budget
// is nil when none has been set.
type CurrentBudget struct {
	Budget        *domain.Budget  `json:"budget"`
	AccountID     uuid.UUID       `json:"accountId"`
	TotalExpenses decimal.Decimal `json:"currentExpenses"`
	Usage         *BudgetUsage    `json:"usage,omitempty"`
}

// UpdateBudget sets the user's budget amount, creating the budget if needed
func (s *BudgetService) UpdateBudget(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (*domain.Budget, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	return s.budgetRepo.Upsert(ctx, userID, amount)
}

// GetCurrentBudget returns the budget and the expenses booked against
// accountID in the alert window
func (s *BudgetService) GetCurrentBudget(ctx context.Context, userID, accountID uuid.UUID) (*CurrentBudget, error) {
	if _, err := s.accountRepo.GetByID(ctx, userID, accountID); err != nil {
		return nil, err
	}

	budget, err := s.budgetRepo.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrBudgetNotFound) {
			return &CurrentBudget{AccountID: accountID, TotalExpenses: decimal.Zero}, nil
		}
		return nil, err
	}

	usage, err := s.monitor.Usage(ctx, budget, accountID)
	if err != nil {
		return nil, err
	}
	return &CurrentBudget{
		Budget:        budget,
		AccountID:     accountID,
		TotalExpenses: usage.TotalExpenses,
		Usage:         usage,
	}, nil
}
