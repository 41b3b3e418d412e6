package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/middleware"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	AccountID         string  `json:"accountId"`
	Type              string  `json:"type"`
	Amount            string  `json:"amount"`
	Description       *string `json:"description,omitempty"`
	Date              string  `json:"date"`
	Category          string  `json:"category"`
	ReceiptURL        *string `json:"receiptUrl,omitempty"`
	IsRecurring       bool    `json:"isRecurring"`
	RecurringInterval *string `json:"recurringInterval,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                string  `json:"id"`
	AccountID         string  `json:"accountId"`
	Type              string  `json:"type"`
	Amount            string  `json:"amount"`
	Description       *string `json:"description,omitempty"`
	Date              string  `json:"date"`
	Category          string  `json:"category"`
	ReceiptURL        *string `json:"receiptUrl,omitempty"`
	IsRecurring       bool    `json:"isRecurring"`
	RecurringInterval *string `json:"recurringInterval,omitempty"`
	NextRecurringDate *string `json:"nextRecurringDate,omitempty"`
	LastProcessed     *string `json:"lastProcessed,omitempty"`
	Status            string  `json:"status"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// BulkDeleteRequest represents the bulk delete request body
type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

// BulkDeleteResponse represents the bulk delete response
type BulkDeleteResponse struct {
	Deleted  int               `json:"deleted"`
	Accounts []AccountResponse `json:"accounts"`
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                t.ID.String(),
		AccountID:         t.AccountID.String(),
		Type:              string(t.Type),
		Amount:            t.Amount.StringFixed(2),
		Description:       t.Description,
		Date:              t.Date.Format(time.RFC3339),
		Category:          t.Category,
		ReceiptURL:        t.ReceiptURL,
		IsRecurring:       t.IsRecurring,
		NextRecurringDate: formatTimePtr(t.NextRecurringDate),
		LastProcessed:     formatTimePtr(t.LastProcessed),
		Status:            string(t.Status),
		CreatedAt:         t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         t.UpdatedAt.Format(time.RFC3339),
	}
	if t.RecurringInterval != nil {
		interval := string(*t.RecurringInterval)
		resp.RecurringInterval = &interval
	}
	return resp
}

// parseTransactionDate accepts either a full RFC 3339 timestamp or a plain date
func parseTransactionDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Create an income or expense and apply it to the account balance
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction creation request"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "accountId", Message: "Account ID is required"},
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date, err := parseTransactionDate(req.Date)
	if err != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{
			{Field: "date", Message: "Must be in YYYY-MM-DD or RFC 3339 format"},
		})
	}

	var interval *domain.RecurringInterval
	if req.RecurringInterval != nil && *req.RecurringInterval != "" {
		ri := domain.RecurringInterval(*req.RecurringInterval)
		interval = &ri
	}

	transaction, err := h.transactionService.CreateTransaction(c.Request().Context(), userID, service.CreateTransactionInput{
		AccountID:         accountID,
		Type:              domain.TransactionType(req.Type),
		Amount:            amount,
		Description:       req.Description,
		Date:              date,
		Category:          req.Category,
		ReceiptURL:        req.ReceiptURL,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: interval,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAccountNotFound):
			return NewNotFoundError(c, "Account not found")
		case errors.Is(err, domain.ErrInvalidTransactionType):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: INCOME, EXPENSE"},
			})
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must not be negative"},
			})
		case errors.Is(err, domain.ErrDateRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "date", Message: "Date is required"},
			})
		case errors.Is(err, domain.ErrCategoryRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "category", Message: "Category is required"},
			})
		case errors.Is(err, domain.ErrInvalidInterval):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "recurringInterval", Message: "Recurring interval must be one of: DAILY, WEEKLY, MONTHLY, YEARLY"},
			})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "description", Message: "Description must be 500 characters or less"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	log.Info().Str("user_id", userID.String()).Str("transaction_id", transaction.ID.String()).Str("type", string(transaction.Type)).Msg("Transaction created")

	return c.JSON(http.StatusCreated, toTransactionResponse(transaction))
}

// GetTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("transaction_id", id.String()).Msg("Failed to get transaction")
		return NewInternalError(c, "Failed to get transaction")
	}

	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// BulkDeleteTransactions godoc
// @Summary Delete transactions
// @Description Deletes up to 100 transactions and reverses their effect on account balances
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkDeleteRequest true "Transaction ids"
// @Success 200 {object} BulkDeleteResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions/bulk-delete [post]
func (h *TransactionHandler) BulkDeleteTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "ids", Message: "All ids must be valid UUIDs"},
			})
		}
		ids = append(ids, id)
	}

	result, err := h.transactionService.BulkDeleteTransactions(c.Request().Context(), userID, ids)
	if err != nil {
		if errors.Is(err, domain.ErrNoTransactionsSelected) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "ids", Message: "No transactions selected"},
			})
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "ids", Message: "At most 100 transactions can be deleted at once"},
			})
		}
		return NewInternalError(c, "Failed to delete transactions")
	}

	response := BulkDeleteResponse{
		Deleted:  result.Deleted,
		Accounts: make([]AccountResponse, len(result.Accounts)),
	}
	for i, a := range result.Accounts {
		response.Accounts[i] = toAccountResponse(a)
	}

	return c.JSON(http.StatusOK, response)
}
