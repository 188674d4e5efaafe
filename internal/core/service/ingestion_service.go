package service

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

const (
	statsCacheTTL    = 30 * time.Second
	defaultScanLimit = 10
	maxScanLimit     = 50
	authInstructions = "Abra la URL en su navegador, autorice el acceso a la cuenta y pegue el código de autorización en el endpoint de autorización."
)

// invoiceKeywords mark a message as invoice-looking when any of them
// appears in the subject or snippet.
var invoiceKeywords = []string{"factura", "invoice", "cobro", "recibo", "comprobante", "pago"}

// ingestFormats are the attachment extensions the mailbox scan accepts.
var ingestFormats = []string{".pdf", ".jpg", ".jpeg", ".png"}

type ingestionService struct {
	mailbox     ports.Mailbox
	intake      ports.IntakeService
	users       ports.UserRepository
	cache       ports.Cache
	defaultUser string
	log         zerolog.Logger

	mu       sync.Mutex
	state    domain.MailboxState
	scanning atomic.Bool
}

// NewIngestionService returns an IngestionService implementation.
// defaultUser is the email of the user mailbox invoices are attributed to.
func NewIngestionService(
	mailbox ports.Mailbox,
	intake ports.IntakeService,
	users ports.UserRepository,
	cache ports.Cache,
	defaultUser string,
	log zerolog.Logger,
) ports.IngestionService {
	return &ingestionService{
		mailbox:     mailbox,
		intake:      intake,
		users:       users,
		cache:       cache,
		defaultUser: defaultUser,
		log:         log,
		state:       domain.MailboxDisconnected,
	}
}

// Status reports the connection snapshot. A stored token always wins over
// the in-memory workflow state, so a restart lands back on connected.
func (s *ingestionService) Status(ctx context.Context) *domain.MailboxStatus {
	if s.mailbox.Authenticated(ctx) {
		return &domain.MailboxStatus{
			State:         domain.MailboxConnected,
			Authenticated: true,
			Message:       "Gmail conectado",
		}
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if state == domain.MailboxConnected {
		state = domain.MailboxDisconnected
	}

	msg := "Gmail no conectado"
	if state == domain.MailboxAwaitingCode {
		msg = "Esperando código de autorización"
	}
	return &domain.MailboxStatus{State: state, Authenticated: false, Message: msg}
}

// RequestAuthorization starts the manual consent flow and moves the
// workflow to awaiting_code.
func (s *ingestionService) RequestAuthorization(ctx context.Context) (string, string, error) {
	url, err := s.mailbox.AuthURL()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to build consent url")
		return "", "", fmt.Errorf("request authorization: %w", err)
	}

	s.mu.Lock()
	s.state = domain.MailboxAwaitingCode
	s.mu.Unlock()

	s.log.Info().Msg("gmail authorization requested")
	return url, authInstructions, nil
}

// Authorize exchanges the pasted code for a token. An empty code is
// refused before touching the provider.
func (s *ingestionService) Authorize(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.ErrEmptyAuthCode
	}

	if err := s.mailbox.Exchange(ctx, code); err != nil {
		s.log.Error().Err(err).Msg("authorization code exchange failed")
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	s.mu.Lock()
	s.state = domain.MailboxConnected
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKeyGmailStatus, cacheKeyGmailStats); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate gmail caches")
		}
	}

	s.log.Info().Msg("gmail connected")
	return nil
}

// ProcessInvoices scans recent mail for invoice-looking attachments and
// creates one invoice per usable attachment. Only one scan runs at a
// time; a concurrent call is refused, never queued.
func (s *ingestionService) ProcessInvoices(ctx context.Context, limit int) (*ports.IngestionResult, error) {
	if !s.mailbox.Authenticated(ctx) {
		return nil, domain.ErrMailboxNotConnected
	}
	if !s.scanning.CompareAndSwap(false, true) {
		return nil, domain.ErrIngestionInProgress
	}
	defer s.scanning.Store(false)

	if limit < 1 {
		limit = defaultScanLimit
	}
	if limit > maxScanLimit {
		limit = maxScanLimit
	}

	owner, err := s.users.FindByEmail(ctx, s.defaultUser)
	if err != nil {
		s.log.Error().Err(err).Str("email", s.defaultUser).Msg("default ingestion user missing")
		return nil, fmt.Errorf("resolve default user: %w", err)
	}

	messages, err := s.mailbox.Search(ctx, "has:attachment newer_than:7d", limit)
	if err != nil {
		return nil, fmt.Errorf("search mailbox: %w", err)
	}

	var processed []domain.IngestedInvoice
	for _, summary := range messages {
		msg, err := s.mailbox.Message(ctx, summary.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("message_id", summary.ID).Msg("failed to fetch message")
			continue
		}
		if !looksLikeInvoice(msg) {
			continue
		}

		invoice := s.processMessage(ctx, msg, owner.ID)
		if invoice == nil {
			continue
		}

		processed = append(processed, domain.IngestedInvoice{
			InvoiceID:    invoice.ID,
			Provider:     invoice.Provider,
			Amount:       invoice.Amount,
			EmailSubject: msg.Subject,
		})

		if err := s.mailbox.MarkRead(ctx, msg.ID); err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Msg("failed to mark message read")
		}
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, cacheKeyGmailStats, cacheKeyDashboardStats); err != nil {
			s.log.Warn().Err(err).Msg("failed to invalidate caches after scan")
		}
	}

	s.log.Info().Int("created", len(processed)).Int("scanned", len(messages)).Msg("mailbox scan finished")

	return &ports.IngestionResult{
		Message:        fmt.Sprintf("Procesados %d correos, %d facturas creadas", len(messages), len(processed)),
		Processed:      processed,
		TotalProcessed: len(processed),
	}, nil
}

// processMessage runs the first usable attachment of msg through the OCR
// intake pipeline. Extraction failures skip the message, never abort the
// scan.
func (s *ingestionService) processMessage(ctx context.Context, msg *domain.EmailMessage, userID int64) *domain.Invoice {
	for _, att := range msg.Attachments {
		if !ingestableAttachment(att.Filename) {
			continue
		}

		content, err := s.mailbox.Attachment(ctx, msg.ID, att.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("message_id", msg.ID).Str("file", att.Filename).Msg("failed to download attachment")
			continue
		}

		invoice, err := s.intake.Commit(ctx, ports.CommitInvoiceInput{
			UserID:      userID,
			File:        bytes.NewReader(content),
			Filename:    att.Filename,
			Description: fmt.Sprintf("Importada de correo: %s", msg.Subject),
		})
		if err != nil {
			s.log.Debug().Err(err).Str("message_id", msg.ID).Str("file", att.Filename).Msg("attachment skipped")
			continue
		}
		return invoice
	}
	return nil
}

// Stats returns the 7-day mailbox aggregates, cached briefly to keep the
// dashboard from hammering the provider.
func (s *ingestionService) Stats(ctx context.Context) (*domain.MailboxStats, error) {
	if !s.mailbox.Authenticated(ctx) {
		return nil, domain.ErrMailboxNotConnected
	}

	if s.cache != nil {
		var cached domain.MailboxStats
		if hit, err := s.cache.Get(ctx, cacheKeyGmailStats, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	total, err := s.mailbox.Search(ctx, "newer_than:7d", 500)
	if err != nil {
		return nil, fmt.Errorf("mailbox stats: %w", err)
	}
	withAttachments, err := s.mailbox.Search(ctx, "newer_than:7d has:attachment", 500)
	if err != nil {
		return nil, fmt.Errorf("mailbox stats: %w", err)
	}
	unread, err := s.mailbox.Search(ctx, "newer_than:7d is:unread", 500)
	if err != nil {
		return nil, fmt.Errorf("mailbox stats: %w", err)
	}

	stats := &domain.MailboxStats{
		TotalEmails7d:     len(total),
		WithAttachments7d: len(withAttachments),
		Unread7d:          len(unread),
	}
	if stats.TotalEmails7d > 0 {
		rate := float64(stats.WithAttachments7d) / float64(stats.TotalEmails7d) * 100
		stats.AttachmentRatePct = math.Round(rate*100) / 100
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyGmailStats, stats, statsCacheTTL); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache mailbox stats")
		}
	}

	return stats, nil
}

// looksLikeInvoice filters messages by keyword and attachment type.
func looksLikeInvoice(msg *domain.EmailMessage) bool {
	text := strings.ToLower(msg.Subject + " " + msg.Snippet)
	keyword := false
	for _, kw := range invoiceKeywords {
		if strings.Contains(text, kw) {
			keyword = true
			break
		}
	}
	if !keyword {
		return false
	}
	for _, att := range msg.Attachments {
		if ingestableAttachment(att.Filename) {
			return true
		}
	}
	return false
}

func ingestableAttachment(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range ingestFormats {
		if ext == f {
			return true
		}
	}
	return false
}
