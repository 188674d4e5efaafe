package ports

import (
	"context"
	"io"
	"time"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// CreateInvoiceInput carries all data needed to register a new invoice.
// Attachment is optional; when present it is stored server-side and the
// resulting path recorded on the invoice.
type CreateInvoiceInput struct {
	UserID        int64
	Date          time.Time
	Provider      string
	Amount        float64
	PaymentMethod domain.PaymentMethod
	Category      domain.ExpenseCategory
	Description   string
	NIT           string
	Attachment    io.Reader // optional
	Filename      string    // required when Attachment is set
	// OCRData is set when the invoice comes through the OCR intake
	// pipeline; it is persisted verbatim alongside the invoice.
	OCRData *domain.ExtractionResult
}

// ValidateInvoiceInput carries the pending→terminal transition request.
type ValidateInvoiceInput struct {
	InvoiceID int64
	NewStatus domain.InvoiceStatus // validada or rechazada
	Notes     string               // optional; "" and omitted are equivalent
}

// InvoicePage is the standard paginated list envelope.
type InvoicePage struct {
	Items []*domain.Invoice `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
	Pages int               `json:"pages"`
}

// ExportResult describes a server-side generated export file.
type ExportResult struct {
	FilePath      string `json:"file_path"`
	TotalInvoices int    `json:"total_invoices"`
}

// Attachment is an opened invoice attachment ready for streaming.
type Attachment struct {
	Content  io.ReadCloser
	Filename string
}

// InvoiceService defines the use-case operations on invoices, including
// the validation lifecycle.
type InvoiceService interface {
	Create(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error)
	Get(ctx context.Context, id int64) (*domain.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) (*InvoicePage, error)
	// Validate moves a pending invoice to validada or rechazada. Invoices
	// already in a terminal state are refused with ErrInvoiceNotPending.
	Validate(ctx context.Context, input ValidateInvoiceInput) (*domain.Invoice, error)
	// Update patches editable fields. Terminal invoices are refused.
	Update(ctx context.Context, id int64, patch InvoicePatch) (*domain.Invoice, error)
	Delete(ctx context.Context, id int64) error
	ExportExcel(ctx context.Context, filter InvoiceFilter) (*ExportResult, error)
	Download(ctx context.Context, id int64) (*Attachment, error)
}
