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

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// CreateAccountRequest represents the create account request body
type CreateAccountRequest struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Balance   string `json:"balance,omitempty"`
	IsDefault bool   `json:"isDefault"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	Balance          string `json:"balance"`
	IsDefault        bool   `json:"isDefault"`
	TransactionCount *int64 `json:"transactionCount,omitempty"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
}

// AccountDetailResponse is an account with its transactions
type AccountDetailResponse struct {
	AccountResponse
	Transactions []TransactionResponse `json:"transactions"`
}

func toAccountResponse(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID.String(),
		Name:      account.Name,
		Type:      string(account.Type),
		Balance:   account.Balance.StringFixed(2),
		IsDefault: account.IsDefault,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
		UpdatedAt: account.UpdatedAt.Format(time.RFC3339),
	}
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, NewValidationError(c, "Invalid "+name, []ValidationError{
			{Field: name, Message: "Must be a valid UUID"},
		})
	}
	return id, nil
}

// CreateAccount handles POST /api/v1/accounts
// @Summary Create account
// @Description The first account a user creates is always the default
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body CreateAccountRequest true "Account"
// @Success 201 {object} AccountResponse
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /accounts [post]
func (h *AccountHandler) CreateAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	var req CreateAccountRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	balance := decimal.Zero
	if req.Balance != "" {
		var err error
		balance, err = decimal.NewFromString(req.Balance)
		if err != nil {
			return NewValidationError(c, "Invalid balance", []ValidationError{
				{Field: "balance", Message: "Must be a valid decimal number"},
			})
		}
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), userID, service.CreateAccountInput{
		Name:      req.Name,
		Type:      domain.AccountType(req.Type),
		Balance:   balance,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNameRequired) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name is required"},
			})
		}
		if errors.Is(err, domain.ErrNameTooLong) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "name", Message: "Name must be 255 characters or less"},
			})
		}
		if errors.Is(err, domain.ErrInvalidAccountType) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "type", Message: "Type must be one of: CURRENT, SAVINGS"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create account")
		return NewInternalError(c, "Failed to create account")
	}

	log.Info().Str("user_id", userID.String()).Str("account_id", account.ID.String()).Str("name", account.Name).Msg("Account created")

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// GetAccounts handles GET /api/v1/accounts
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {array} AccountResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *AccountHandler) GetAccounts(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	accounts, err := h.accountService.GetAccounts(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get accounts")
		return NewInternalError(c, "Failed to get accounts")
	}

	response := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		response[i] = toAccountResponse(&a.Account)
		count := a.TransactionCount
		response[i].TransactionCount = &count
	}

	return c.JSON(http.StatusOK, response)
}

// GetAccount handles GET /api/v1/accounts/:id
// @Summary Get account with transactions
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} AccountDetailResponse
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *AccountHandler) GetAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.accountService.GetAccountWithTransactions(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to get account")
		return NewInternalError(c, "Failed to get account")
	}

	response := AccountDetailResponse{
		AccountResponse: toAccountResponse(detail.Account),
		Transactions:    make([]TransactionResponse, len(detail.Transactions)),
	}
	for i, t := range detail.Transactions {
		response.Transactions[i] = toTransactionResponse(t)
	}

	return c.JSON(http.StatusOK, response)
}

// SetDefaultAccount handles PATCH /api/v1/accounts/:id/default
// @Summary Make account the default
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} AccountResponse
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /accounts/{id}/default [patch]
func (h *AccountHandler) SetDefaultAccount(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}

	account, err := h.accountService.SetDefaultAccount(c.Request().Context(), userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Str("account_id", id.String()).Msg("Failed to set default account")
		return NewInternalError(c, "Failed to set default account")
	}

	return c.JSON(http.StatusOK, toAccountResponse(account))
}
