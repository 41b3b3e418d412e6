package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/middleware"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/receipt"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReceiptHandler handles receipt scanning requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// ScanReceiptResponse is the extracted transaction draft. Fields are empty
// when the image is not a receipt.
type ScanReceiptResponse struct {
	Type         string  `json:"type,omitempty"`
	Amount       string  `json:"amount"`
	Date         *string `json:"date,omitempty"`
	Description  string  `json:"description,omitempty"`
	MerchantName string  `json:"merchantName,omitempty"`
	Category     string  `json:"category,omitempty"`
	ReceiptURL   *string `json:"receiptUrl,omitempty"`
}

// ScanReceipt handles POST /api/v1/receipts/scan
// @Summary Scan a receipt
// @Description Extracts amount, date, merchant and category from a receipt image
// @Tags receipts
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Receipt image (JPEG or PNG, max 5MB)"
// @Success 200 {object} ScanReceiptResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /receipts/scan [post]
func (h *ReceiptHandler) ScanReceipt(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "User required")
	}

	if h.receiptService == nil || !h.receiptService.IsEnabled() {
		return NewServiceUnavailableError(c, "Receipt scanning is disabled (scanner not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > service.MaxReceiptSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File too large. Maximum size is 5MB"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	result, err := h.receiptService.ScanReceipt(c.Request().Context(), userID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReceiptTooLarge):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "File too large. Maximum size is 5MB"},
			})
		case errors.Is(err, service.ErrInvalidReceiptFormat):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid format. Supported: JPEG, PNG"},
			})
		case errors.Is(err, service.ErrReceiptTooSmall):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Image too small. Minimum 50x50 pixels"},
			})
		case errors.Is(err, service.ErrInvalidReceiptData):
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "file", Message: "Invalid image data"},
			})
		case errors.Is(err, service.ErrReceiptScanNotConfigured):
			return NewServiceUnavailableError(c, "Receipt scanning is disabled (scanner not configured)")
		case errors.Is(err, receipt.ErrScanFailed):
			return NewServiceUnavailableError(c, "Failed to scan receipt")
		default:
			log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to scan receipt")
			return NewInternalError(c, "Failed to scan receipt")
		}
	}

	return c.JSON(http.StatusOK, toScanReceiptResponse(result))
}

func toScanReceiptResponse(result *service.ReceiptScanResult) ScanReceiptResponse {
	resp := ScanReceiptResponse{ReceiptURL: result.ReceiptURL, Amount: "0.00"}
	if result.Scan == nil {
		return resp
	}
	resp.Type = string(result.Type)
	resp.Amount = result.Amount.StringFixed(2)
	if result.Date != nil {
		d := result.Date.Format("2006-01-02")
		resp.Date = &d
	}
	resp.Description = result.Description
	resp.MerchantName = result.MerchantName
	resp.Category = result.Category
	return resp
}
