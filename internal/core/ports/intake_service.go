package ports

import (
	"context"
	"io"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// TextExtractor turns a document (image or PDF) into raw text.
type TextExtractor interface {
	// SupportedFormat reports whether the filename's extension is on the
	// intake allow-list.
	SupportedFormat(filename string) bool
	// ExtractText runs OCR / PDF text extraction over the document bytes.
	ExtractText(ctx context.Context, content []byte, filename string) (string, error)
}

// ProcessFileInput is one OCR extraction request.
type ProcessFileInput struct {
	UserID   int64
	File     io.Reader
	Filename string
}

// CommitInvoiceInput is the final intake stage: re-extract server-side and
// create the persisted invoice in one call.
type CommitInvoiceInput struct {
	UserID        int64
	File          io.Reader
	Filename      string
	PaymentMethod domain.PaymentMethod
	Category      domain.ExpenseCategory
	Description   string // optional
}

// IntakeService orchestrates the OCR-assisted invoice intake pipeline.
type IntakeService interface {
	// Process extracts candidate fields from the document. The result is
	// ephemeral: nothing is persisted.
	Process(ctx context.Context, input ProcessFileInput) (*domain.ExtractionResult, error)
	// Commit re-runs extraction, stores the attachment, and creates the
	// invoice. Requires a detected amount.
	Commit(ctx context.Context, input CommitInvoiceInput) (*domain.Invoice, error)
	// SupportedFormats lists the accepted file extensions.
	SupportedFormats() []string
}
