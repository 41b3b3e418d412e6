package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionSignedAmount(t *testing.T) {
	expense := &Transaction{Type: TransactionTypeExpense, Amount: decimal.NewFromInt(200)}
	income := &Transaction{Type: TransactionTypeIncome, Amount: decimal.NewFromInt(200)}

	assert.True(t, expense.SignedAmount().Equal(decimal.NewFromInt(-200)))
	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(200)))
}

func TestTransactionIsDue(t *testing.T) {
	now := time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	monthly := RecurringIntervalMonthly

	recurring := func(next *time.Time, last *time.Time) *Transaction {
		return &Transaction{
			IsRecurring:       true,
			RecurringInterval: &monthly,
			NextRecurringDate: next,
			LastProcessed:     last,
			Status:            TransactionStatusCompleted,
		}
	}

	tests := []struct {
		name     string
		tx       *Transaction
		expected bool
	}{
		{"never processed is due even with future next date", recurring(&future, nil), true},
		{"next date in the past is due", recurring(&past, &past), true},
		{"next date exactly now is due", recurring(&now, &past), true},
		{"next date in the future is not due", recurring(&future, &past), false},
		{"non recurring is never due", &Transaction{Status: TransactionStatusCompleted}, false},
		{"pending status is not due", &Transaction{IsRecurring: true, RecurringInterval: &monthly, NextRecurringDate: &past, Status: TransactionStatusPending}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.tx.IsDue(now))
		})
	}
}

func TestUserDisplayName(t *testing.T) {
	name := "Asha"
	empty := ""

	assert.Equal(t, "Asha", (&User{Email: "a@example.com", Name: &name}).DisplayName())
	assert.Equal(t, "a@example.com", (&User{Email: "a@example.com", Name: &empty}).DisplayName())
	assert.Equal(t, "a@example.com", (&User{Email: "a@example.com"}).DisplayName())
}
