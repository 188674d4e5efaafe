package domain

import (
	"errors"
	"time"
)

// ConfidenceTier buckets an extraction confidence score for display.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")
var ErrNoTextExtracted = errors.New("no text could be extracted from file")
var ErrAmountNotDetected = errors.New("no amount could be detected in the document")

// ConfidenceToTier buckets a score in [0,1]: ≥0.8 high, ≥0.6 medium, below low.
func ConfidenceToTier(score float64) ConfidenceTier {
	switch {
	case score >= 0.8:
		return TierHigh
	case score >= 0.6:
		return TierMedium
	default:
		return TierLow
	}
}

// ExtractionResult is the best-effort structured parse of a scanned invoice.
// Every field is independently optional: a nil pointer means "not detected"
// and never fails the intake pipeline on its own.
type ExtractionResult struct {
	Amount        *float64        `json:"amount" bson:"amount,omitempty"`
	Provider      *string         `json:"provider" bson:"provider,omitempty"`
	Date          *time.Time      `json:"date" bson:"date,omitempty"`
	InvoiceNumber *string         `json:"invoice_number" bson:"invoice_number,omitempty"`
	NIT           *string         `json:"nit" bson:"nit,omitempty"`
	PaymentMethod *PaymentMethod  `json:"payment_method" bson:"payment_method,omitempty"`
	Category      ExpenseCategory `json:"category" bson:"category"`
	Confidence    float64         `json:"confidence" bson:"confidence"`
	RawText       string          `json:"raw_text" bson:"raw_text"`
	UserID        int64           `json:"user_id" bson:"user_id"`
}

// Tier returns the display bucket for the result's confidence score.
func (r *ExtractionResult) Tier() ConfidenceTier {
	return ConfidenceToTier(r.Confidence)
}
