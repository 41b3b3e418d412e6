package service

import (
	"testing"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func ptr[T any](v T) *T {
	return &v
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// seedLedger creates a store with one user owning one default account
func seedLedger(t *testing.T, balance string) (*testutil.MockStore, *domain.User, *domain.Account) {
	t.Helper()
	store := testutil.NewMockStore()
	user := store.AddUser(&domain.User{
		Auth0ID: "auth0|alice",
		Email:   "alice@example.com",
		Name:    ptr("Alice"),
	})
	account := store.AddAccount(&domain.Account{
		UserID:    user.ID,
		Name:      "Main",
		Type:      domain.AccountTypeCurrent,
		Balance:   decimal.RequireFromString(balance),
		IsDefault: true,
	})
	return store, user, account
}

// addRecurring stores a COMPLETED recurring transaction
func addRecurring(store *testutil.MockStore, user *domain.User, account *domain.Account, txType domain.TransactionType, amount string, interval domain.RecurringInterval, on time.Time, lastProcessed *time.Time) *domain.Transaction {
	next := domain.NextRecurringDate(on, interval)
	return store.AddTransaction(&domain.Transaction{
		UserID:            user.ID,
		AccountID:         account.ID,
		Type:              txType,
		Amount:            decimal.RequireFromString(amount),
		Description:       ptr("Rent"),
		Date:              on,
		Category:          "housing",
		IsRecurring:       true,
		RecurringInterval: &interval,
		NextRecurringDate: &next,
		LastProcessed:     lastProcessed,
		Status:            domain.TransactionStatusCompleted,
	})
}
