package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	txManager       domain.TxManager
	transactionRepo domain.TransactionRepository
	accountRepo     domain.AccountRepository
	publisher       websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	txManager domain.TxManager,
	transactionRepo domain.TransactionRepository,
	accountRepo domain.AccountRepository,
	publisher websocket.EventPublisher,
) *TransactionService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &TransactionService{
		txManager:       txManager,
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		publisher:       publisher,
	}
}

// CreateTransactionInput holds the input for creating a transaction
type CreateTransactionInput struct {
	AccountID         uuid.UUID
	Type              domain.TransactionType
	Amount            decimal.Decimal
	Description       *string
	Date              time.Time
	Category          string
	ReceiptURL        *string
	IsRecurring       bool
	RecurringInterval *domain.RecurringInterval
}

// BulkDeleteResult reports what a bulk delete removed
type BulkDeleteResult struct {
	Deleted  int               `json:"deleted"`
	Accounts []*domain.Account `json:"accounts"`
}

// CreateTransaction records a transaction and applies it to the account
// balance in one store transaction
func (s *TransactionService) CreateTransaction(ctx context.Context, userID uuid.UUID, input CreateTransactionInput) (*domain.Transaction, error) {
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidTransactionType
	}
	if input.Amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if input.Date.IsZero() {
		return nil, domain.ErrDateRequired
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		return nil, domain.ErrCategoryRequired
	}

	var description *string
	if input.Description != nil {
		trimmed := strings.TrimSpace(*input.Description)
		if trimmed != "" {
			if len(trimmed) > domain.MaxDescriptionLength {
				return nil, domain.ErrInvalidInput
			}
			description = &trimmed
		}
	}

	transaction := &domain.Transaction{
		UserID:      userID,
		AccountID:   input.AccountID,
		Type:        input.Type,
		Amount:      input.Amount,
		Description: description,
		Date:        input.Date,
		Category:    category,
		ReceiptURL:  input.ReceiptURL,
		IsRecurring: input.IsRecurring,
		Status:      domain.TransactionStatusCompleted,
	}
	if input.IsRecurring {
		if input.RecurringInterval == nil || !input.RecurringInterval.IsValid() {
			return nil, domain.ErrInvalidInterval
		}
		interval := *input.RecurringInterval
		next := domain.NextRecurringDate(input.Date, interval)
		transaction.RecurringInterval = &interval
		transaction.NextRecurringDate = &next
	}

	if _, err := s.accountRepo.GetByID(ctx, userID, input.AccountID); err != nil {
		return nil, err
	}

	var created *domain.Transaction
	var account *domain.Account
	err := s.txManager.WithinTx(ctx, func(tx domain.LedgerTx) error {
		var err error
		created, err = tx.CreateTransaction(ctx, transaction)
		if err != nil {
			return err
		}
		account, err = tx.AdjustAccountBalance(ctx, userID, input.AccountID, created.SignedAmount())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.TransactionCreated(created))
	s.publisher.Publish(userID, websocket.AccountUpdated(account))
	return created, nil
}

// GetTransaction retrieves one of the user's transactions
func (s *TransactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(ctx, userID, id)
}

// BulkDeleteTransactions deletes the user's transactions and reverses their
// effect on each affected account, all in one store transaction. Ids that do
// not belong to the user are ignored.
func (s *TransactionService) BulkDeleteTransactions(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, domain.ErrNoTransactionsSelected
	}
	if len(ids) > domain.MaxBulkDeleteSize {
		return nil, domain.ErrInvalidInput
	}

	var deleted []*domain.Transaction
	var accounts []*domain.Account
	err := s.txManager.WithinTx(ctx, func(tx domain.LedgerTx) error {
		var err error
		deleted, err = tx.DeleteTransactions(ctx, userID, ids)
		if err != nil {
			return err
		}

		// Undo each transaction's signed amount, one update per account
		changes := make(map[uuid.UUID]decimal.Decimal)
		var order []uuid.UUID
		for _, t := range deleted {
			if _, ok := changes[t.AccountID]; !ok {
				order = append(order, t.AccountID)
			}
			changes[t.AccountID] = changes[t.AccountID].Sub(t.SignedAmount())
		}
		for _, accountID := range order {
			account, err := tx.AdjustAccountBalance(ctx, userID, accountID, changes[accountID])
			if err != nil {
				return err
			}
			accounts = append(accounts, account)
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Int("count", len(ids)).Msg("Failed to bulk delete transactions")
		return nil, err
	}

	for _, t := range deleted {
		s.publisher.Publish(userID, websocket.TransactionDeleted(t))
	}
	for _, a := range accounts {
		s.publisher.Publish(userID, websocket.AccountUpdated(a))
	}
	if accounts == nil {
		accounts = []*domain.Account{}
	}
	return &BulkDeleteResult{Deleted: len(deleted), Accounts: accounts}, nil
}
