package domain

import "errors"

// Domain errors
var (
	ErrNotFound               = errors.New("resource not found")
	ErrInvalidInput           = errors.New("invalid input")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrUserNotFound           = errors.New("user not found")
	ErrAccountNotFound        = errors.New("account not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrBudgetNotFound         = errors.New("budget not found")
	ErrNoDefaultAccount       = errors.New("no default account")
	ErrNameRequired           = errors.New("name is required")
	ErrNameTooLong            = errors.New("name exceeds maximum length")
	ErrInvalidAccountType     = errors.New("invalid account type")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidInterval        = errors.New("invalid recurring interval")
	ErrCategoryRequired       = errors.New("category is required")
	ErrDateRequired           = errors.New("date is required")
	ErrNoTransactionsSelected = errors.New("no transactions selected")
	ErrInvalidWorkItem        = errors.New("invalid work item")
)

// Validation constants
const (
	MaxAccountNameLength  = 255
	MaxDescriptionLength  = 500
	MaxBulkDeleteSize     = 100
	RecurringInstanceNote = " (Recurring)"
)
