package ledger

import (
	"errors"
	"strings"
)

// MaxProofSizeBytes is the default cap for payment-proof uploads.
const MaxProofSizeBytes int64 = 1024 * 1024

var (
	ErrProofTooLarge = errors.New("ledger: payment proof exceeds the size limit")
	ErrProofNotImage = errors.New("ledger: payment proof must be an image")
)

// ValidatePaymentProof is the boundary check for transfer receipts,
// applied before an order is created. maxSize <= 0 falls back to
// MaxProofSizeBytes.
func ValidatePaymentProof(contentType string, size int64, maxSize int64) error {
	if maxSize <= 0 {
		maxSize = MaxProofSizeBytes
	}
	if size > maxSize {
		return ErrProofTooLarge
	}
	if !strings.HasPrefix(contentType, "image/") {
		return ErrProofNotImage
	}
	return nil
}
