package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/service"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTransactionHandler() (*TransactionHandler, *testutil.MockStore) {
	store := testutil.NewMockStore()
	svc := service.NewTransactionService(store, store.TransactionRepo(), store.AccountRepo(), &websocket.NoOpPublisher{})
	return NewTransactionHandler(svc), store
}

func TestCreateTransaction_ExpenseUpdatesBalance(t *testing.T) {
	handler, store := newTransactionHandler()
	user, account := seedUser(store, "1000")

	body := fmt.Sprintf(`{"accountId": %q, "type": "EXPENSE", "amount": "200", "date": "2024-01-15", "category": "housing", "description": "Rent"}`, account.ID)
	c, rec := newContext(http.MethodPost, "/api/v1/transactions", body)
	setupUserContext(c, user)

	require.NoError(t, handler.CreateTransaction(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "200.00", response.Amount)
	assert.Equal(t, "EXPENSE", response.Type)
	assert.Equal(t, "COMPLETED", response.Status)
	assert.False(t, response.IsRecurring)
	assert.Nil(t, response.NextRecurringDate)

	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(800)))
}

func TestCreateTransaction_RecurringGetsNextDate(t *testing.T) {
	handler, store := newTransactionHandler()
	user, account := seedUser(store, "0")

	body := fmt.Sprintf(`{"accountId": %q, "type": "INCOME", "amount": "3000", "date": "2024-01-31", "category": "salary", "isRecurring": true, "recurringInterval": "MONTHLY"}`, account.ID)
	c, rec := newContext(http.MethodPost, "/api/v1/transactions", body)
	setupUserContext(c, user)

	require.NoError(t, handler.CreateTransaction(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var response TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.NotNil(t, response.NextRecurringDate)
	require.NotNil(t, response.RecurringInterval)
	assert.Equal(t, "MONTHLY", *response.RecurringInterval)

	next, err := time.Parse(time.RFC3339, *response.NextRecurringDate)
	require.NoError(t, err)
	assert.Equal(t, domain.NextRecurringDate(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), domain.RecurringIntervalMonthly), next.UTC())
}

func TestCreateTransaction_Validation(t *testing.T) {
	accountPlaceholder := "{account}"
	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"bad account id", `{"accountId": "nope", "type": "EXPENSE", "amount": "1", "date": "2024-01-01", "category": "x"}`, http.StatusBadRequest},
		{"unknown account", fmt.Sprintf(`{"accountId": %q, "type": "EXPENSE", "amount": "1", "date": "2024-01-01", "category": "x"}`, uuid.New()), http.StatusNotFound},
		{"bad amount", `{"accountId": "{account}", "type": "EXPENSE", "amount": "ten", "date": "2024-01-01", "category": "x"}`, http.StatusBadRequest},
		{"negative amount", `{"accountId": "{account}", "type": "EXPENSE", "amount": "-5", "date": "2024-01-01", "category": "x"}`, http.StatusBadRequest},
		{"bad type", `{"accountId": "{account}", "type": "TRANSFER", "amount": "1", "date": "2024-01-01", "category": "x"}`, http.StatusBadRequest},
		{"bad date", `{"accountId": "{account}", "type": "EXPENSE", "amount": "1", "date": "15/01/2024", "category": "x"}`, http.StatusBadRequest},
		{"missing category", `{"accountId": "{account}", "type": "EXPENSE", "amount": "1", "date": "2024-01-01"}`, http.StatusBadRequest},
		{"recurring without interval", `{"accountId": "{account}", "type": "EXPENSE", "amount": "1", "date": "2024-01-01", "category": "x", "isRecurring": true}`, http.StatusBadRequest},
		{"recurring with unknown interval", `{"accountId": "{account}", "type": "EXPENSE", "amount": "1", "date": "2024-01-01", "category": "x", "isRecurring": true, "recurringInterval": "HOURLY"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := newTransactionHandler()
			user, account := seedUser(store, "100")

			body := strings.ReplaceAll(tt.body, accountPlaceholder, account.ID.String())
			c, rec := newContext(http.MethodPost, "/api/v1/transactions", body)
			setupUserContext(c, user)

			_ = handler.CreateTransaction(c)

			assert.Equal(t, tt.expected, rec.Code)
			assert.Equal(t, 0, store.TransactionCount())
			assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(100)))
		})
	}
}

func TestGetTransaction(t *testing.T) {
	handler, store := newTransactionHandler()
	user, account := seedUser(store, "0")
	other, _ := seedUser(store, "0")
	tx := store.AddTransaction(&domain.Transaction{
		UserID:    user.ID,
		AccountID: account.ID,
		Type:      domain.TransactionTypeExpense,
		Amount:    decimal.NewFromInt(42),
		Date:      time.Now(),
		Category:  "food",
		Status:    domain.TransactionStatusCompleted,
	})

	c, rec := newContext(http.MethodGet, "/api/v1/transactions/"+tx.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(tx.ID.String())
	setupUserContext(c, user)

	require.NoError(t, handler.GetTransaction(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Another user cannot see it
	c, rec = newContext(http.MethodGet, "/api/v1/transactions/"+tx.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(tx.ID.String())
	setupUserContext(c, other)

	_ = handler.GetTransaction(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBulkDeleteTransactions_RestoresBalances(t *testing.T) {
	handler, store := newTransactionHandler()
	user, account := seedUser(store, "800")
	expense := store.AddTransaction(&domain.Transaction{
		UserID:    user.ID,
		AccountID: account.ID,
		Type:      domain.TransactionTypeExpense,
		Amount:    decimal.NewFromInt(200),
		Date:      time.Now(),
		Category:  "housing",
		Status:    domain.TransactionStatusCompleted,
	})
	income := store.AddTransaction(&domain.Transaction{
		UserID:    user.ID,
		AccountID: account.ID,
		Type:      domain.TransactionTypeIncome,
		Amount:    decimal.NewFromInt(50),
		Date:      time.Now(),
		Category:  "gift",
		Status:    domain.TransactionStatusCompleted,
	})

	body := fmt.Sprintf(`{"ids": [%q, %q]}`, expense.ID, income.ID)
	c, rec := newContext(http.MethodPost, "/api/v1/transactions/bulk-delete", body)
	setupUserContext(c, user)

	require.NoError(t, handler.BulkDeleteTransactions(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var response BulkDeleteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Deleted)
	require.Len(t, response.Accounts, 1)
	assert.Equal(t, "950.00", response.Accounts[0].Balance)
	assert.Equal(t, 0, store.TransactionCount())
}

func TestBulkDeleteTransactions_Validation(t *testing.T) {
	tooMany := make([]string, domain.MaxBulkDeleteSize+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("%q", uuid.NewString())
	}

	tests := []struct {
		name string
		body string
	}{
		{"empty", `{"ids": []}`},
		{"invalid id", `{"ids": ["nope"]}`},
		{"too many", `{"ids": [` + strings.Join(tooMany, ",") + `]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, store := newTransactionHandler()
			user, _ := seedUser(store, "0")

			c, rec := newContext(http.MethodPost, "/api/v1/transactions/bulk-delete", tt.body)
			setupUserContext(c, user)

			_ = handler.BulkDeleteTransactions(c)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
