// Package receipt extracts transaction details from receipt images.
package receipt

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrScanFailed is returned when the model output cannot be understood
var ErrScanFailed = errors.New("receipt scan failed")

// Categories the model may suggest for an expense
var Categories = []string{
	"housing", "transportation", "groceries", "utilities", "entertainment",
	"food", "shopping", "healthcare", "education", "personal", "travel",
	"insurance", "gifts", "bills", "other-expense",
}

// Scan is what a receipt yields. A zero value means the image was not a receipt.
type Scan struct {
	Type         domain.TransactionType `json:"type,omitempty"`
	Amount       decimal.Decimal        `json:"amount"`
	Date         *time.Time             `json:"date,omitempty"`
	Description  string                 `json:"description,omitempty"`
	MerchantName string                 `json:"merchantName,omitempty"`
	Category     string                 `json:"category,omitempty"`
}

// Empty reports whether nothing was recognised
func (s *Scan) Empty() bool {
	return s.Type == "" && s.Amount.IsZero() && s.Date == nil && s.MerchantName == ""
}

// Scanner reads a receipt image
type Scanner interface {
	Scan(ctx context.Context, image []byte, mimeType string) (*Scan, error)
}
