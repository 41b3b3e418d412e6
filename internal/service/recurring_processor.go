package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/jobs"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ProcessStatus describes what processing one work item did
type ProcessStatus string

const (
	ProcessStatusProcessed ProcessStatus = "processed"
	ProcessStatusSkipped   ProcessStatus = "skipped"
)

// ProcessResult is the outcome of a handled work item
type ProcessResult struct {
	Status        ProcessStatus
	TransactionID uuid.UUID
	// Instance is the materialised occurrence, nil when skipped
	Instance *domain.Transaction
	Account  *domain.Account
}

// RecurringProcessor materialises one occurrence of a due recurring transaction
type RecurringProcessor struct {
	txManager       domain.TxManager
	transactionRepo domain.TransactionRepository
	publisher       websocket.EventPublisher
	logger          zerolog.Logger
	now             func() time.Time
}

// NewRecurringProcessor creates a new RecurringProcessor. publisher may be nil.
func NewRecurringProcessor(
	txManager domain.TxManager,
	transactionRepo domain.TransactionRepository,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
) *RecurringProcessor {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &RecurringProcessor{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		publisher:       publisher,
		logger:          logger.With().Str("component", "recurring_processor").Logger(),
		now:             time.Now,
	}
}

// Handle adapts Process to the queue's handler signature
func (p *RecurringProcessor) Handle(ctx context.Context, job *jobs.RecurringTransactionJob) error {
	_, err := p.Process(ctx, job)
	return err
}

// Process handles one work item. Missing or already-advanced transactions
// are skipped without error so redelivery never materialises twice. Store
// failures are returned for the queue to retry.
func (p *RecurringProcessor) Process(ctx context.Context, job *jobs.RecurringTransactionJob) (*ProcessResult, error) {
	transactionID, userID, err := job.Validate()
	if err != nil {
		p.logger.Warn().Err(err).Str("job_id", job.JobID).Msg("Rejected malformed work item")
		return nil, jobs.Permanent(err)
	}

	logger := p.logger.With().
		Str("job_id", job.JobID).
		Str("transaction_id", transactionID.String()).
		Str("user_id", userID.String()).
		Logger()

	skipped := &ProcessResult{Status: ProcessStatusSkipped, TransactionID: transactionID}
	now := p.now()

	source, err := p.transactionRepo.GetByID(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			logger.Debug().Msg("Recurring transaction not found, skipping")
			return skipped, nil
		}
		return nil, fmt.Errorf("get recurring transaction: %w", err)
	}
	if !source.IsDue(now) {
		logger.Debug().Msg("Recurring transaction not due, skipping")
		return skipped, nil
	}

	var result *ProcessResult
	err = p.txManager.WithinTx(ctx, func(tx domain.LedgerTx) error {
		locked, err := tx.GetTransactionForUpdate(ctx, userID, transactionID)
		if err != nil {
			return err
		}
		// Another delivery may have advanced it since the read above
		if !locked.IsDue(now) {
			result = skipped
			return nil
		}

		interval := domain.RecurringInterval("")
		if locked.RecurringInterval != nil {
			interval = *locked.RecurringInterval
		}
		if !interval.IsValid() {
			logger.Warn().Str("interval", string(interval)).Msg("Unknown recurring interval, next date left unchanged")
		}

		instance, err := tx.CreateTransaction(ctx, &domain.Transaction{
			UserID:      locked.UserID,
			AccountID:   locked.AccountID,
			Type:        locked.Type,
			Amount:      locked.Amount,
			Description: recurringDescription(locked.Description),
			Date:        now,
			Category:    locked.Category,
			IsRecurring: false,
			Status:      domain.TransactionStatusCompleted,
		})
		if err != nil {
			return fmt.Errorf("create recurring instance: %w", err)
		}

		account, err := tx.AdjustAccountBalance(ctx, locked.UserID, locked.AccountID, locked.SignedAmount())
		if err != nil {
			return fmt.Errorf("adjust account balance: %w", err)
		}

		next := domain.NextRecurringDate(now, interval)
		if err := tx.MarkRecurringProcessed(ctx, locked.UserID, locked.ID, now, next); err != nil {
			return fmt.Errorf("advance recurring transaction: %w", err)
		}

		result = &ProcessResult{
			Status:        ProcessStatusProcessed,
			TransactionID: transactionID,
			Instance:      instance,
			Account:       account,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			logger.Debug().Msg("Recurring transaction disappeared, skipping")
			return skipped, nil
		}
		logger.Error().Err(err).Int("attempt", job.Attempt).Msg("Failed to process recurring transaction")
		return nil, err
	}

	if result.Status == ProcessStatusProcessed {
		p.publisher.Publish(userID, websocket.TransactionCreated(result.Instance))
		p.publisher.Publish(userID, websocket.AccountUpdated(result.Account))
		logger.Info().
			Str("instance_id", result.Instance.ID.String()).
			Str("amount", result.Instance.Amount.String()).
			Msg("Processed recurring transaction")
	} else {
		logger.Debug().Msg("Recurring transaction already processed, skipping")
	}
	return result, nil
}

func recurringDescription(description *string) *string {
	d := domain.RecurringInstanceNote[1:]
	if description != nil && *description != "" {
		d = *description + domain.RecurringInstanceNote
	}
	return &d
}
