package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs/inmemory"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(store *testutil.MockStore, now time.Time) (*RecurringProcessor, *testutil.RecordingPublisher) {
	publisher := &testutil.RecordingPublisher{}
	p := NewRecurringProcessor(store, store.TransactionRepo(), publisher, zerolog.Nop())
	p.now = testutil.FixedClock(now)
	return p, publisher
}

func jobFor(tx *domain.Transaction) *jobs.RecurringTransactionJob {
	return &jobs.RecurringTransactionJob{
		JobID:         uuid.NewString(),
		TransactionID: tx.ID.String(),
		UserID:        tx.UserID.String(),
	}
}

func TestRecurringProcessor_MonthlyScenario(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	ctx := context.Background()

	txService := NewTransactionService(store, store.TransactionRepo(), store.AccountRepo(), nil)
	source, err := txService.CreateTransaction(ctx, user.ID, CreateTransactionInput{
		AccountID:         account.ID,
		Type:              domain.TransactionTypeExpense,
		Amount:            decimal.NewFromInt(200),
		Description:       ptr("Rent"),
		Date:              date(2024, time.January, 15),
		Category:          "housing",
		IsRecurring:       true,
		RecurringInterval: ptr(domain.RecurringIntervalMonthly),
	})
	require.NoError(t, err)
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(800)))

	now := date(2024, time.February, 15)
	p, publisher := newTestProcessor(store, now)

	result, err := p.Process(ctx, jobFor(source))
	require.NoError(t, err)
	require.Equal(t, ProcessStatusProcessed, result.Status)

	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(600)))

	instance := store.Transaction(result.Instance.ID)
	require.NotNil(t, instance)
	assert.Equal(t, domain.TransactionTypeExpense, instance.Type)
	assert.True(t, instance.Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, now, instance.Date)
	assert.Equal(t, "Rent (Recurring)", *instance.Description)
	assert.Equal(t, "housing", instance.Category)
	assert.False(t, instance.IsRecurring)
	assert.Nil(t, instance.RecurringInterval)
	assert.Equal(t, domain.TransactionStatusCompleted, instance.Status)

	updated := store.Transaction(source.ID)
	require.NotNil(t, updated.LastProcessed)
	assert.Equal(t, now, *updated.LastProcessed)
	assert.Equal(t, date(2024, time.March, 15), *updated.NextRecurringDate)

	assert.Len(t, publisher.EventsOfType("transaction.created"), 1)
	assert.Len(t, publisher.EventsOfType("account.updated"), 1)
}

func TestRecurringProcessor_RedeliveryIsNoOp(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeIncome, "250", domain.RecurringIntervalWeekly, date(2024, time.May, 1), nil)
	p, publisher := newTestProcessor(store, date(2024, time.May, 8))
	job := jobFor(source)

	first, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, ProcessStatusProcessed, first.Status)

	second, err := p.Process(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, ProcessStatusSkipped, second.Status)

	assert.Equal(t, 2, store.TransactionCount())
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(1250)))
	assert.Equal(t, date(2024, time.May, 15), *store.Transaction(source.ID).NextRecurringDate)
	assert.Len(t, publisher.EventsOfType("transaction.created"), 1)
}

func TestRecurringProcessor_ConcurrentDeliveriesMaterialiseOnce(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "100", domain.RecurringIntervalDaily, date(2024, time.June, 1), nil)
	p, _ := newTestProcessor(store, date(2024, time.June, 2))

	var wg sync.WaitGroup
	var mu sync.Mutex
	processed := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := p.Process(context.Background(), jobFor(source))
			if err == nil && result.Status == ProcessStatusProcessed {
				mu.Lock()
				processed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, processed)
	assert.Equal(t, 2, store.TransactionCount())
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(900)))
}

func TestRecurringProcessor_BalanceFailureRollsBackEverything(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "200", domain.RecurringIntervalMonthly, date(2024, time.January, 15), nil)
	store.SetFailure("AdjustAccountBalance", errors.New("connection reset"))
	p, publisher := newTestProcessor(store, date(2024, time.February, 15))

	result, err := p.Process(context.Background(), jobFor(source))
	require.Error(t, err)
	assert.Nil(t, result)
	assert.False(t, jobs.IsPermanent(err), "store failures must be retried")

	assert.Equal(t, 1, store.TransactionCount())
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(1000)))
	after := store.Transaction(source.ID)
	assert.Nil(t, after.LastProcessed)
	assert.Equal(t, date(2024, time.February, 15), *after.NextRecurringDate)
	assert.Empty(t, publisher.Events())

	// Once the store recovers the retry succeeds
	store.SetFailure("AdjustAccountBalance", nil)
	result, err = p.Process(context.Background(), jobFor(source))
	require.NoError(t, err)
	assert.Equal(t, ProcessStatusProcessed, result.Status)
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(800)))
}

func TestRecurringProcessor_AdvanceFailureRollsBack(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "200", domain.RecurringIntervalMonthly, date(2024, time.January, 15), nil)
	store.SetFailure("MarkRecurringProcessed", errors.New("deadlock detected"))
	p, _ := newTestProcessor(store, date(2024, time.February, 15))

	_, err := p.Process(context.Background(), jobFor(source))
	require.Error(t, err)

	assert.Equal(t, 1, store.TransactionCount())
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, store.Transaction(source.ID).LastProcessed)
}

func TestRecurringProcessor_DueBoundary(t *testing.T) {
	now := date(2024, time.March, 15)
	lastProcessed := date(2024, time.February, 15)

	tests := []struct {
		name     string
		next     time.Time
		expected ProcessStatus
	}{
		{"next equals now is due", now, ProcessStatusProcessed},
		{"next before now is due", now.Add(-time.Second), ProcessStatusProcessed},
		{"next after now is not due", now.Add(time.Second), ProcessStatusSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, user, account := seedLedger(t, "1000")
			source := addRecurring(store, user, account, domain.TransactionTypeExpense, "10", domain.RecurringIntervalMonthly, date(2024, time.January, 15), &lastProcessed)
			source.NextRecurringDate = &tt.next
			store.AddTransaction(source)
			p, _ := newTestProcessor(store, now)

			result, err := p.Process(context.Background(), jobFor(source))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result.Status)
		})
	}
}

func TestRecurringProcessor_SkipsWithoutError(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	other := store.AddUser(&domain.User{Auth0ID: "auth0|bob", Email: "bob@example.com"})
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "10", domain.RecurringIntervalDaily, date(2024, time.January, 1), nil)
	pending := addRecurring(store, user, account, domain.TransactionTypeExpense, "10", domain.RecurringIntervalDaily, date(2024, time.January, 1), nil)
	pending.Status = domain.TransactionStatusPending
	store.AddTransaction(pending)
	p, _ := newTestProcessor(store, date(2024, time.January, 2))

	tests := []struct {
		name string
		job  *jobs.RecurringTransactionJob
	}{
		{"unknown transaction", &jobs.RecurringTransactionJob{TransactionID: uuid.NewString(), UserID: user.ID.String()}},
		{"owned by another user", &jobs.RecurringTransactionJob{TransactionID: source.ID.String(), UserID: other.ID.String()}},
		{"not completed", jobFor(pending)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Process(context.Background(), tt.job)
			require.NoError(t, err)
			assert.Equal(t, ProcessStatusSkipped, result.Status)
		})
	}
	assert.Equal(t, 2, store.TransactionCount())
}

func TestRecurringProcessor_RejectsMalformedWorkItem(t *testing.T) {
	store, _, _ := seedLedger(t, "1000")
	p, _ := newTestProcessor(store, time.Now())

	tests := []struct {
		name string
		job  *jobs.RecurringTransactionJob
	}{
		{"both missing", &jobs.RecurringTransactionJob{}},
		{"user missing", &jobs.RecurringTransactionJob{TransactionID: uuid.NewString()}},
		{"transaction missing", &jobs.RecurringTransactionJob{UserID: uuid.NewString()}},
		{"malformed id", &jobs.RecurringTransactionJob{TransactionID: "abc", UserID: uuid.NewString()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Process(context.Background(), tt.job)
			require.Error(t, err)
			assert.True(t, jobs.IsPermanent(err))
			assert.ErrorIs(t, err, domain.ErrInvalidWorkItem)
		})
	}
}

func TestRecurringProcessor_UnknownIntervalLeavesDateUnchanged(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "10", domain.RecurringInterval("HOURLY"), date(2024, time.January, 1), nil)
	now := date(2024, time.January, 2)
	p, _ := newTestProcessor(store, now)

	result, err := p.Process(context.Background(), jobFor(source))
	require.NoError(t, err)
	assert.Equal(t, ProcessStatusProcessed, result.Status)
	assert.Equal(t, now, *store.Transaction(source.ID).NextRecurringDate)
}

func TestRecurringProcessor_MissingDescription(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "10", domain.RecurringIntervalDaily, date(2024, time.January, 1), nil)
	source.Description = nil
	store.AddTransaction(source)
	p, _ := newTestProcessor(store, date(2024, time.January, 2))

	result, err := p.Process(context.Background(), jobFor(source))
	require.NoError(t, err)
	assert.Equal(t, "(Recurring)", *result.Instance.Description)
}

func TestRecurringProcessor_QueueRedelivery(t *testing.T) {
	store, user, account := seedLedger(t, "1000")
	source := addRecurring(store, user, account, domain.TransactionTypeExpense, "200", domain.RecurringIntervalMonthly, date(2024, time.January, 15), nil)
	p, _ := newTestProcessor(store, date(2024, time.February, 15))

	jobStore := inmemory.NewStore()
	queue := inmemory.NewQueue(inmemory.Config{Workers: 3, MaxAttempts: 3, RetryBaseDelay: time.Millisecond}, jobStore, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, queue.Start(ctx, p.Handle))

	// The same work item delivered three times
	batch := []*jobs.RecurringTransactionJob{jobFor(source), jobFor(source), jobFor(source)}
	require.NoError(t, queue.PublishRecurring(ctx, batch))

	require.Eventually(t, func() bool {
		completed, _ := jobStore.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted})
		return len(completed) == 3
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, queue.Stop(context.Background()))

	assert.Equal(t, 2, store.TransactionCount())
	assert.True(t, store.Account(account.ID).Balance.Equal(decimal.NewFromInt(800)))
}
