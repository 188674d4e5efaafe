package ports

import (
	"context"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

// Mailbox abstracts the Gmail API client. Implementations hold the OAuth
// token state; Authenticated reports whether a usable token is loaded.
type Mailbox interface {
	Authenticated(ctx context.Context) bool
	// AuthURL returns the provider consent URL for the manual
	// (out-of-band) authorization flow.
	AuthURL() (string, error)
	// Exchange trades the pasted authorization code for a token and
	// persists it.
	Exchange(ctx context.Context, code string) error
	// Search returns message summaries matching a Gmail search query.
	Search(ctx context.Context, query string, max int) ([]*domain.EmailMessage, error)
	// Message fetches one message with body and attachment metadata.
	Message(ctx context.Context, id string) (*domain.EmailMessage, error)
	// Attachment downloads one attachment's content.
	Attachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
	// MarkRead clears the unread flag on a message.
	MarkRead(ctx context.Context, messageID string) error
}

// IngestionResult is the outcome of a single mailbox scan.
type IngestionResult struct {
	Message        string                   `json:"message"`
	Processed      []domain.IngestedInvoice `json:"processed_invoices"`
	TotalProcessed int                      `json:"total_processed"`
}

// IngestionService orchestrates the Gmail invoice ingestion workflow.
type IngestionService interface {
	Status(ctx context.Context) *domain.MailboxStatus
	// RequestAuthorization returns the consent URL plus instructions and
	// moves the workflow to awaiting_code.
	RequestAuthorization(ctx context.Context) (url, instructions string, err error)
	// Authorize exchanges the pasted code; on success the workflow is
	// connected and the status/stats caches are invalidated.
	Authorize(ctx context.Context, code string) error
	// ProcessInvoices scans recent mail for invoice-looking attachments
	// and creates invoices. Only one scan runs at a time.
	ProcessInvoices(ctx context.Context, limit int) (*IngestionResult, error)
	Stats(ctx context.Context) (*domain.MailboxStats, error)
}
