package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/receipt"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/repository/storage"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxReceiptSize     = 5 * 1024 * 1024 // 5MB
	MinReceiptWidth    = 50
	MinReceiptHeight   = 50
	ReceiptMaxWidth    = 1600
	ReceiptJPEGQuality = 85
	ReceiptURLExpiry   = 7 * 24 * time.Hour
	receiptContentType = "image/jpeg"
	receiptObjectExt   = "jpg"
)

var (
	ErrReceiptTooLarge          = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidReceiptFormat     = errors.New("invalid format. Supported: JPEG, PNG")
	ErrReceiptTooSmall          = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidReceiptData       = errors.New("invalid image data")
	ErrReceiptScanNotConfigured = errors.New("receipt scanning not configured")
)

// AllowedReceiptExtensions maps extensions to content types
var AllowedReceiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ReceiptScanResult is a scan plus where the normalised image was stored.
// ReceiptURL is nil when storage is not configured.
type ReceiptScanResult struct {
	*receipt.Scan
	ObjectKey  string  `json:"objectKey,omitempty"`
	ReceiptURL *string `json:"receiptUrl,omitempty"`
}

// ReceiptService validates receipt images, stores them and extracts
// transaction details
type ReceiptService struct {
	scanner receipt.Scanner
	store   storage.ReceiptStore
	now     func() time.Time
}

// NewReceiptService creates a new ReceiptService. Either collaborator may be
// nil: without a scanner scanning is disabled, without a store images are
// not kept.
func NewReceiptService(scanner receipt.Scanner, store storage.ReceiptStore) *ReceiptService {
	return &ReceiptService{scanner: scanner, store: store, now: time.Now}
}

// IsEnabled indicates whether receipt scanning is available
func (s *ReceiptService) IsEnabled() bool {
	return s != nil && s.scanner != nil
}

// normalize validates the upload and re-encodes it as an upright JPEG no
// wider than ReceiptMaxWidth
func (s *ReceiptService) normalize(data []byte, filename string) ([]byte, error) {
	if len(data) > MaxReceiptSize {
		return nil, ErrReceiptTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedReceiptExtensions[ext]; !ok {
		return nil, ErrInvalidReceiptFormat
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, ErrInvalidReceiptData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinReceiptWidth || bounds.Dy() < MinReceiptHeight {
		return nil, ErrReceiptTooSmall
	}
	if bounds.Dx() > ReceiptMaxWidth {
		img = imaging.Resize(img, ReceiptMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(ReceiptJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// ScanReceipt normalises the image, stores it when storage is configured and
// asks the scanner for transaction details
func (s *ReceiptService) ScanReceipt(ctx context.Context, userID uuid.UUID, data []byte, filename string) (*ReceiptScanResult, error) {
	if !s.IsEnabled() {
		return nil, ErrReceiptScanNotConfigured
	}

	normalized, err := s.normalize(data, filename)
	if err != nil {
		return nil, err
	}

	result := &ReceiptScanResult{}
	if s.store != nil {
		key := storage.ReceiptObjectKey(userID, s.now(), receiptObjectExt)
		if err := s.store.Put(ctx, key, normalized, receiptContentType); err != nil {
			log.Error().Err(err).Str("user_id", userID.String()).Str("object_key", key).Msg("Failed to store receipt image")
			return nil, fmt.Errorf("failed to store receipt: %w", err)
		}
		result.ObjectKey = key

		url, err := s.store.PresignedURL(ctx, key, ReceiptURLExpiry)
		if err != nil {
			log.Warn().Err(err).Str("object_key", key).Msg("Failed to presign receipt URL")
		} else {
			result.ReceiptURL = &url
		}
	}

	scan, err := s.scanner.Scan(ctx, normalized, receiptContentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to scan receipt")
		return nil, err
	}
	result.Scan = scan
	return result, nil
}
