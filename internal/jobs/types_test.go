package jobs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurringTransactionJob_Validate(t *testing.T) {
	txID := uuid.New()
	userID := uuid.New()

	tests := []struct {
		name    string
		job     RecurringTransactionJob
		wantErr bool
	}{
		{"valid", RecurringTransactionJob{TransactionID: txID.String(), UserID: userID.String()}, false},
		{"missing both", RecurringTransactionJob{}, true},
		{"missing transaction id", RecurringTransactionJob{UserID: userID.String()}, true},
		{"missing user id", RecurringTransactionJob{TransactionID: txID.String()}, true},
		{"malformed transaction id", RecurringTransactionJob{TransactionID: "abc", UserID: userID.String()}, true},
		{"malformed user id", RecurringTransactionJob{TransactionID: txID.String(), UserID: "42"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTx, gotUser, err := tt.job.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidWorkItem))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, txID, gotTx)
			assert.Equal(t, userID, gotUser)
		})
	}
}

func TestPermanent(t *testing.T) {
	base := errors.New("boom")

	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(base))

	perm := Permanent(base)
	assert.True(t, IsPermanent(perm))
	assert.True(t, errors.Is(perm, base))
	assert.Equal(t, "boom", perm.Error())

	wrapped := fmt.Errorf("processing: %w", perm)
	assert.True(t, IsPermanent(wrapped))
}
