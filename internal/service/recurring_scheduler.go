package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/rs/zerolog"
)

// RecurringScheduler finds due recurring transactions and hands each one to
// the processor as a work item
type RecurringScheduler struct {
	transactionRepo domain.TransactionRepository
	publisher       jobs.Publisher
	logger          zerolog.Logger
	now             func() time.Time
}

// NewRecurringScheduler creates a new RecurringScheduler
func NewRecurringScheduler(transactionRepo domain.TransactionRepository, publisher jobs.Publisher, logger zerolog.Logger) *RecurringScheduler {
	return &RecurringScheduler{
		transactionRepo: transactionRepo,
		publisher:       publisher,
		logger:          logger.With().Str("component", "recurring_scheduler").Logger(),
		now:             time.Now,
	}
}

// Sweep emits one work item per due recurring transaction as a single batch.
// A store error aborts the sweep before anything is published.
func (s *RecurringScheduler) Sweep(ctx context.Context) (int, error) {
	due, err := s.transactionRepo.ListDueRecurring(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("list due recurring transactions: %w", err)
	}
	if len(due) == 0 {
		s.logger.Debug().Msg("No recurring transactions due")
		return 0, nil
	}

	batch := make([]*jobs.RecurringTransactionJob, 0, len(due))
	for _, d := range due {
		batch = append(batch, &jobs.RecurringTransactionJob{
			TransactionID: d.TransactionID.String(),
			UserID:        d.UserID.String(),
		})
	}

	if err := s.publisher.PublishRecurring(ctx, batch); err != nil {
		return 0, fmt.Errorf("publish recurring jobs: %w", err)
	}

	s.logger.Info().Int("count", len(batch)).Msg("Queued recurring transactions")
	return len(batch), nil
}
