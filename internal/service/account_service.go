package service

import (
	"context"
	"strings"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService handles account-related business logic
type AccountService struct {
	txManager       domain.TxManager
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
	publisher       websocket.EventPublisher
}

// NewAccountService creates a new AccountService
func NewAccountService(
	txManager domain.TxManager,
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	publisher websocket.EventPublisher,
) *AccountService {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &AccountService{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		publisher:       publisher,
	}
}

// CreateAccountInput holds the input for creating an account
type CreateAccountInput struct {
	Name      string
	Type      domain.AccountType
	Balance   decimal.Decimal
	IsDefault bool
}

// AccountDetail is an account with its transactions, newest first
type AccountDetail struct {
	*domain.Account
	Transactions []*domain.Transaction `json:"transactions"`
}

// CreateAccount creates a new account. A user's first account is always the
// default; asking for a default clears the previous one in the same transaction.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, input CreateAccountInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxAccountNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidAccountType
	}

	existing, err := s.accountRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	isDefault := existing == 0 || input.IsDefault

	var created *domain.Account
	err = s.txManager.WithinTx(ctx, func(tx domain.LedgerTx) error {
		if isDefault {
			if err := tx.ClearDefaultAccounts(ctx, userID); err != nil {
				return err
			}
		}
		var err error
		created, err = tx.CreateAccount(ctx, &domain.Account{
			UserID:    userID,
			Name:      name,
			Type:      input.Type,
			Balance:   input.Balance,
			IsDefault: isDefault,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.NewEvent(websocket.EventTypeCreated, websocket.EntityTypeAccount, created))
	return created, nil
}

// GetAccounts lists a user's accounts with their transaction counts
func (s *AccountService) GetAccounts(ctx context.Context, userID uuid.UUID) ([]*domain.AccountWithCount, error) {
	return s.accountRepo.ListByUser(ctx, userID)
}

// GetAccountWithTransactions returns one account and its transactions
func (s *AccountService) GetAccountWithTransactions(ctx context.Context, userID, id uuid.UUID) (*AccountDetail, error) {
	account, err := s.accountRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	transactions, err := s.transactionRepo.ListByAccount(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	return &AccountDetail{Account: account, Transactions: transactions}, nil
}

// SetDefaultAccount makes id the user's only default account
func (s *AccountService) SetDefaultAccount(ctx context.Context, userID, id uuid.UUID) (*domain.Account, error) {
	var updated *domain.Account
	err := s.txManager.WithinTx(ctx, func(tx domain.LedgerTx) error {
		if err := tx.ClearDefaultAccounts(ctx, userID); err != nil {
			return err
		}
		var err error
		updated, err = tx.SetDefaultAccount(ctx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(userID, websocket.AccountUpdated(updated))
	return updated, nil
}
