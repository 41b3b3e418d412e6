package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// ReceiptStore persists receipt images and hands out short-lived links to them
type ReceiptStore interface {
	Put(ctx context.Context, objectKey string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// ReceiptObjectKey builds the storage key for a user's receipt image:
// receipts/{userID}/{yyyy}/{mm}/{uuid}.{ext}
func ReceiptObjectKey(userID uuid.UUID, now time.Time, ext string) string {
	return path.Join(
		"receipts",
		userID.String(),
		fmt.Sprintf("%04d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		uuid.New().String()+"."+ext,
	)
}
