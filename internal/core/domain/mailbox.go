package domain

import "errors"

// MailboxState is the connection state of the Gmail integration.
//
//	disconnected → (authorization requested) → awaiting_code → connected
//
// The state only moves forward via explicit operations; polling the status
// endpoint never changes it.
type MailboxState string

const (
	MailboxDisconnected MailboxState = "disconnected"
	MailboxAwaitingCode MailboxState = "awaiting_code"
	MailboxConnected    MailboxState = "connected"
)

var ErrMailboxNotConnected = errors.New("gmail integration is not connected")
var ErrEmptyAuthCode = errors.New("authorization code must not be empty")
var ErrIngestionInProgress = errors.New("invoice ingestion is already running")

// MailboxStatus is the polled connection snapshot.
type MailboxStatus struct {
	State         MailboxState `json:"state"`
	Authenticated bool         `json:"authenticated"`
	Message       string       `json:"message,omitempty"`
}

// MailboxStats is a read-only 7-day aggregate over the connected mailbox.
// It is purely informational and tolerates staleness.
type MailboxStats struct {
	TotalEmails7d     int     `json:"total_emails_7d"`
	WithAttachments7d int     `json:"emails_with_attachments_7d"`
	Unread7d          int     `json:"unread_emails_7d"`
	AttachmentRatePct float64 `json:"attachment_rate"`
}

// EmailAttachment is one attachment on a mailbox message.
type EmailAttachment struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// EmailMessage is the subset of a mailbox message the ingestion pipeline
// inspects. Body carries the plain-text part only.
type EmailMessage struct {
	ID          string            `json:"id"`
	From        string            `json:"from"`
	Subject     string            `json:"subject"`
	Date        string            `json:"date"`
	Snippet     string            `json:"snippet"`
	Body        string            `json:"body"`
	Unread      bool              `json:"unread"`
	Attachments []EmailAttachment `json:"attachments"`
}

// IngestedInvoice is the session-scoped summary returned for each invoice
// created by a mailbox scan.
type IngestedInvoice struct {
	InvoiceID    int64   `json:"invoice_id"`
	Provider     string  `json:"provider"`
	Amount       float64 `json:"amount"`
	EmailSubject string  `json:"email_subject"`
}
