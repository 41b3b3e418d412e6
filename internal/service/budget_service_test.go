package service

import (
	"context"
	"testing"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupBudgetService(t *testing.T, now time.Time) (*BudgetService, *testutil.MockStore, *domain.User, *domain.Account) {
	store, user, account := seedLedger(t, "1000")
	monitor := NewBudgetAlertMonitor(store.BudgetRepo(), store.TransactionRepo(), &testutil.RecordingSender{}, nil, zerolog.Nop(), BudgetAlertConfig{})
	monitor.now = testutil.FixedClock(now)
	return NewBudgetService(store.BudgetRepo(), store.AccountRepo(), monitor), store, user, account
}

func TestUpdateBudget_Upserts(t *testing.T) {
	svc, _, user, _ := setupBudgetService(t, time.Now())
	ctx := context.Background()

	first, err := svc.UpdateBudget(ctx, user.ID, decimal.NewFromInt(500))
	require.NoError(t, err)

	second, err := svc.UpdateBudget(ctx, user.ID, decimal.NewFromInt(750))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.Amount.Equal(decimal.NewFromInt(750)))
}

func TestUpdateBudget_RejectsNonPositive(t *testing.T) {
	svc, _, user, _ := setupBudgetService(t, time.Now())

	for _, amount := range []int64{0, -10} {
		_, err := svc.UpdateBudget(context.Background(), user.ID, decimal.NewFromInt(amount))
		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	}
}

func TestGetCurrentBudget(t *testing.T) {
	svc, store, user, account := setupBudgetService(t, date(2024, time.March, 20))
	ctx := context.Background()

	empty, err := svc.GetCurrentBudget(ctx, user.ID, account.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Budget)
	assert.True(t, empty.TotalExpenses.IsZero())

	_, err = svc.UpdateBudget(ctx, user.ID, decimal.NewFromInt(400))
	require.NoError(t, err)
	store.AddTransaction(&domain.Transaction{
		UserID: user.ID, AccountID: account.ID, Type: domain.TransactionTypeExpense,
		Amount: decimal.NewFromInt(100), Date: date(2024, time.February, 10), Category: "food",
		Status: domain.TransactionStatusCompleted,
	})

	current, err := svc.GetCurrentBudget(ctx, user.ID, account.ID)
	require.NoError(t, err)
	require.NotNil(t, current.Budget)
	assert.True(t, current.TotalExpenses.Equal(decimal.NewFromInt(100)))
	assert.True(t, current.Usage.PercentageUsed.Equal(decimal.NewFromInt(25)))

	_, err = svc.GetCurrentBudget(ctx, user.ID, uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
