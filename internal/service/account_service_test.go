package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAccountService() (*AccountService, *testutil.MockStore, *testutil.RecordingPublisher) {
	store := testutil.NewMockStore()
	publisher := &testutil.RecordingPublisher{}
	return NewAccountService(store, store.AccountRepo(), store.TransactionRepo(), publisher), store, publisher
}

func TestCreateAccount_FirstAccountIsDefault(t *testing.T) {
	svc, _, publisher := setupAccountService()
	userID := uuid.New()

	account, err := svc.CreateAccount(context.Background(), userID, CreateAccountInput{
		Name:    "  Checking  ",
		Type:    domain.AccountTypeCurrent,
		Balance: decimal.NewFromFloat(1000.50),
	})
	require.NoError(t, err)

	assert.Equal(t, "Checking", account.Name)
	assert.True(t, account.IsDefault)
	assert.True(t, account.Balance.Equal(decimal.NewFromFloat(1000.50)))
	assert.Equal(t, userID, account.UserID)
	assert.Len(t, publisher.EventsOfType("account.created"), 1)
}

func TestCreateAccount_DefaultMovesToNewAccount(t *testing.T) {
	svc, store, _ := setupAccountService()
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "First", Type: domain.AccountTypeCurrent})
	require.NoError(t, err)

	second, err := svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "Second", Type: domain.AccountTypeSavings})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)
	assert.True(t, store.Account(first.ID).IsDefault)

	third, err := svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "Third", Type: domain.AccountTypeSavings, IsDefault: true})
	require.NoError(t, err)
	assert.True(t, third.IsDefault)
	assert.False(t, store.Account(first.ID).IsDefault)
	assert.False(t, store.Account(second.ID).IsDefault)
}

func TestCreateAccount_Validation(t *testing.T) {
	svc, _, _ := setupAccountService()

	tests := []struct {
		name        string
		input       CreateAccountInput
		expectedErr error
	}{
		{"empty name", CreateAccountInput{Name: "   ", Type: domain.AccountTypeCurrent}, domain.ErrNameRequired},
		{"name too long", CreateAccountInput{Name: strings.Repeat("a", domain.MaxAccountNameLength+1), Type: domain.AccountTypeCurrent}, domain.ErrNameTooLong},
		{"invalid type", CreateAccountInput{Name: "Wallet", Type: "CREDIT"}, domain.ErrInvalidAccountType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), uuid.New(), tt.input)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestCreateAccount_FailureLeavesDefaultUntouched(t *testing.T) {
	svc, store, _ := setupAccountService()
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "First", Type: domain.AccountTypeCurrent})
	require.NoError(t, err)

	store.SetFailure("CreateAccount", errors.New("unique violation"))
	_, err = svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "Second", Type: domain.AccountTypeCurrent, IsDefault: true})
	require.Error(t, err)

	assert.True(t, store.Account(first.ID).IsDefault)
}

func TestSetDefaultAccount(t *testing.T) {
	svc, store, publisher := setupAccountService()
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "First", Type: domain.AccountTypeCurrent})
	require.NoError(t, err)
	second, err := svc.CreateAccount(ctx, userID, CreateAccountInput{Name: "Second", Type: domain.AccountTypeCurrent})
	require.NoError(t, err)

	updated, err := svc.SetDefaultAccount(ctx, userID, second.ID)
	require.NoError(t, err)
	assert.True(t, updated.IsDefault)
	assert.False(t, store.Account(first.ID).IsDefault)
	assert.Len(t, publisher.EventsOfType("account.updated"), 1)
}

func TestSetDefaultAccount_NotOwned(t *testing.T) {
	svc, store, _ := setupAccountService()
	ctx := context.Background()
	owner := uuid.New()

	account, err := svc.CreateAccount(ctx, owner, CreateAccountInput{Name: "Mine", Type: domain.AccountTypeCurrent})
	require.NoError(t, err)

	_, err = svc.SetDefaultAccount(ctx, uuid.New(), account.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.True(t, store.Account(account.ID).IsDefault)
}

func TestGetAccountWithTransactions(t *testing.T) {
	store, user, account := seedLedger(t, "100")
	svc := NewAccountService(store, store.AccountRepo(), store.TransactionRepo(), nil)

	for _, day := range []int{3, 10, 7} {
		store.AddTransaction(&domain.Transaction{
			UserID: user.ID, AccountID: account.ID, Type: domain.TransactionTypeExpense,
			Amount: decimal.NewFromInt(1), Date: date(2024, time.May, day), Category: "food",
			Status: domain.TransactionStatusCompleted,
		})
	}

	detail, err := svc.GetAccountWithTransactions(context.Background(), user.ID, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, detail.ID)
	require.Len(t, detail.Transactions, 3)
	assert.Equal(t, 10, detail.Transactions[0].Date.Day())
	assert.Equal(t, 3, detail.Transactions[2].Date.Day())

	_, err = svc.GetAccountWithTransactions(context.Background(), uuid.New(), account.ID)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetAccounts_IncludesTransactionCount(t *testing.T) {
	store, user, account := seedLedger(t, "100")
	svc := NewAccountService(store, store.AccountRepo(), store.TransactionRepo(), nil)
	addRecurring(store, user, account, domain.TransactionTypeIncome, "5", domain.RecurringIntervalDaily, date(2024, time.May, 1), nil)

	accounts, err := svc.GetAccounts(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(1), accounts[0].TransactionCount)
}
