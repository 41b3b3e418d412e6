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

// BudgetHandler handles budget-related HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// UpdateBudgetRequest represents the update budget request body
type UpdateBudgetRequest struct {
	Amount string `json:"amount"`
}

// BudgetResponse represents a budget in API responses
type BudgetResponse struct {
	ID            string  `json:"id"`
	Amount        string  `json:"amount"`
	LastAlertSent *string `json:"lastAlertSent,omitempty"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// CurrentBudgetResponse is the budget plus what has been spent against it
type CurrentBudgetResponse struct {
	Budget          *BudgetResponse `json:"budget"`
	AccountID       string          `json:"accountId"`
	CurrentExpenses string          `json:"currentExpenses"`
	PercentageUsed  *string         `json:"percentageUsed,omitempty"`
}

func toBudgetResponse(b *domain.Budget) *BudgetResponse {
	return &BudgetResponse{
		ID:            b.ID.String(),
		Amount:        b.Amount.StringFixed(2),
		LastAlertSent: formatTimePtr(b.LastAlertSent),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     b.UpdatedAt.Format(time.RFC3339),
	}
}

// UpdateBudget godoc
// @Summary Set the monthly budget
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateBudgetRequest true "Budget amount"
// @Success 200 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets [put]
func (h *BudgetHandler) UpdateBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	var req UpdateBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	budget, err := h.budgetService.UpdateBudget(c.Request().Context(), userID, amount)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAmount) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "amount", Message: "Amount must be greater than zero"},
			})
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to update budget")
		return NewInternalError(c, "Failed to update budget")
	}

	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// GetCurrentBudget godoc
// @Summary Current budget usage
// @Description Budget and expenses on the account from the start of last month to the end of this month
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param accountId query string true "Account ID"
// @Success 200 {object} CurrentBudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /budgets/current [get]
func (h *BudgetHandler) GetCurrentBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	accountID, err := uuid.Parse(c.QueryParam("accountId"))
	if err != nil {
		return NewValidationError(c, "Invalid accountId", []ValidationError{
			{Field: "accountId", Message: "Must be a valid UUID"},
		})
	}

	current, err := h.budgetService.GetCurrentBudget(c.Request().Context(), userID, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return NewNotFoundError(c, "Account not found")
		}
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to get current budget")
		return NewInternalError(c, "Failed to get current budget")
	}

	response := CurrentBudgetResponse{
		AccountID:       current.AccountID.String(),
		CurrentExpenses: current.TotalExpenses.StringFixed(2),
	}
	if current.Budget != nil {
		response.Budget = toBudgetResponse(current.Budget)
	}
	if current.Usage != nil {
		pct := current.Usage.PercentageUsed.StringFixed(2)
		response.PercentageUsed = &pct
	}

	return c.JSON(http.StatusOK, response)
}
