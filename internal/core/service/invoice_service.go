package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Cache keys shared by the write path (invalidation) and the dashboard
// read path.
const (
	cacheKeyDashboardStats = "cache:dashboard:stats"
	cacheKeyGmailStatus    = "cache:gmail:status"
	cacheKeyGmailStats     = "cache:gmail:stats"
)

// InvoiceExporter writes a set of invoices to a spreadsheet file and
// returns its path.
type InvoiceExporter interface {
	Export(invoices []*domain.Invoice) (string, error)
}

type invoiceService struct {
	repo     ports.InvoiceRepository
	users    ports.UserRepository
	files    ports.FileStore
	cache    ports.Cache
	exporter InvoiceExporter
	log      zerolog.Logger
}

// NewInvoiceService returns an InvoiceService implementation.
func NewInvoiceService(
	repo ports.InvoiceRepository,
	users ports.UserRepository,
	files ports.FileStore,
	cache ports.Cache,
	exporter InvoiceExporter,
	log zerolog.Logger,
) ports.InvoiceService {
	return &invoiceService{
		repo:     repo,
		users:    users,
		files:    files,
		cache:    cache,
		exporter: exporter,
		log:      log,
	}
}

// Create registers a new invoice in pendiente. Validation failures surface
// before anything is persisted or stored.
func (s *invoiceService) Create(ctx context.Context, input ports.CreateInvoiceInput) (*domain.Invoice, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if len(strings.TrimSpace(input.Provider)) < 2 {
		return nil, domain.ErrInvalidProvider
	}
	if !domain.ValidPaymentMethod(input.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidStatus, input.PaymentMethod)
	}
	if !domain.ValidCategory(input.Category) {
		return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidStatus, input.Category)
	}

	owner, err := s.users.FindByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	var filePath string
	if input.Attachment != nil {
		filePath, err = s.files.Save(ctx, input.Attachment, input.Filename)
		if err != nil {
			s.log.Error().Err(err).Str("filename", input.Filename).Msg("failed to store attachment")
			return nil, fmt.Errorf("store attachment: %w", err)
		}
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		UserID:        owner.ID,
		Date:          input.Date,
		Provider:      strings.TrimSpace(input.Provider),
		Amount:        input.Amount,
		PaymentMethod: input.PaymentMethod,
		Category:      input.Category,
		Description:   input.Description,
		FilePath:      filePath,
		NIT:           input.NIT,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
		User:          domain.UserSummary{Name: owner.Name, Email: owner.Email},
	}
	if input.OCRData != nil {
		invoice.OCRData = input.OCRData
		invoice.OCRConfidence = input.OCRData.Confidence
	}

	created, err := s.repo.Create(ctx, invoice)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", input.UserID).Msg("failed to create invoice")
		return nil, err
	}

	s.invalidateDashboards(ctx)
	s.log.Info().
		Int64("invoice_id", created.ID).
		Int64("user_id", owner.ID).
		Str("provider", created.Provider).
		Float64("amount", created.Amount).
		Msg("invoice created")

	return created, nil
}

func (s *invoiceService) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns one page of invoices. Size is capped so a single request
// cannot pull the full table.
func (s *invoiceService) List(ctx context.Context, filter ports.InvoiceFilter) (*ports.InvoicePage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Size < 1 {
		filter.Size = defaultPageSize
	}
	if filter.Size > maxPageSize {
		filter.Size = maxPageSize
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := int((total + int64(filter.Size) - 1) / int64(filter.Size))

	return &ports.InvoicePage{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Size:  filter.Size,
		Pages: pages,
	}, nil
}

// Validate moves a pending invoice to validada or rechazada. Both target
// states are terminal; a second validation attempt is refused.
func (s *invoiceService) Validate(ctx context.Context, input ports.ValidateInvoiceInput) (*domain.Invoice, error) {
	if input.NewStatus != domain.StatusValidated && input.NewStatus != domain.StatusRejected {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, input.NewStatus)
	}

	invoice, err := s.repo.FindByID(ctx, input.InvoiceID)
	if err != nil {
		return nil, err
	}

	if !invoice.Status.CanTransitionTo(input.NewStatus) {
		return nil, fmt.Errorf("%w (current status %s)", domain.ErrInvoiceNotPending, invoice.Status)
	}

	now := time.Now().UTC()
	invoice.Status = input.NewStatus
	invoice.ValidationNotes = input.Notes
	invoice.ValidatedAt = &now
	invoice.UpdatedAt = now

	if err := s.repo.Update(ctx, invoice); err != nil {
		s.log.Error().Err(err).Int64("invoice_id", invoice.ID).Msg("failed to update invoice status")
		return nil, err
	}

	s.invalidateDashboards(ctx)
	s.log.Info().
		Int64("invoice_id", invoice.ID).
		Str("status", string(invoice.Status)).
		Msg("invoice validated")

	return invoice, nil
}

// Update patches the editable fields of a pending invoice. Terminal
// invoices are immutable apart from their audit fields.
func (s *invoiceService) Update(ctx context.Context, id int64, patch ports.InvoicePatch) (*domain.Invoice, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status.IsTerminal() {
		return nil, fmt.Errorf("%w (current status %s)", domain.ErrInvoiceNotPending, invoice.Status)
	}

	if patch.Amount != nil {
		if *patch.Amount <= 0 {
			return nil, domain.ErrInvalidAmount
		}
		invoice.Amount = *patch.Amount
	}
	if patch.Provider != nil {
		if len(strings.TrimSpace(*patch.Provider)) < 2 {
			return nil, domain.ErrInvalidProvider
		}
		invoice.Provider = strings.TrimSpace(*patch.Provider)
	}
	if patch.Date != nil {
		invoice.Date = *patch.Date
	}
	if patch.PaymentMethod != nil {
		if !domain.ValidPaymentMethod(*patch.PaymentMethod) {
			return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidStatus, *patch.PaymentMethod)
		}
		invoice.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Category != nil {
		if !domain.ValidCategory(*patch.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidStatus, *patch.Category)
		}
		invoice.Category = *patch.Category
	}
	if patch.Description != nil {
		invoice.Description = *patch.Description
	}
	if patch.UserID != nil && *patch.UserID != invoice.UserID {
		owner, err := s.users.FindByID(ctx, *patch.UserID)
		if err != nil {
			return nil, err
		}
		invoice.UserID = owner.ID
		invoice.User = domain.UserSummary{Name: owner.Name, Email: owner.Email}
	}

	invoice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, invoice); err != nil {
		s.log.Error().Err(err).Int64("invoice_id", id).Msg("failed to update invoice")
		return nil, err
	}

	s.invalidateDashboards(ctx)
	return invoice, nil
}

// Delete removes the invoice and its stored attachment, if any.
func (s *invoiceService) Delete(ctx context.Context, id int64) error {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if invoice.FilePath != "" {
		if err := s.files.Remove(ctx, invoice.FilePath); err != nil {
			s.log.Warn().Err(err).Str("path", invoice.FilePath).Msg("failed to remove attachment")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateDashboards(ctx)
	s.log.Info().Int64("invoice_id", id).Msg("invoice deleted")
	return nil
}

// ExportExcel writes every invoice matching the filter to a spreadsheet.
func (s *invoiceService) ExportExcel(ctx context.Context, filter ports.InvoiceFilter) (*ports.ExportResult, error) {
	invoices, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	path, err := s.exporter.Export(invoices)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to export invoices")
		return nil, fmt.Errorf("export invoices: %w", err)
	}

	s.log.Info().Str("path", path).Int("invoices", len(invoices)).Msg("invoices exported")
	return &ports.ExportResult{FilePath: path, TotalInvoices: len(invoices)}, nil
}

// Download opens the invoice's attachment for streaming.
func (s *invoiceService) Download(ctx context.Context, id int64) (*ports.Attachment, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.FilePath == "" {
		return nil, domain.ErrAttachmentNotFound
	}

	content, err := s.files.Open(ctx, invoice.FilePath)
	if err != nil {
		return nil, domain.ErrAttachmentNotFound
	}

	return &ports.Attachment{
		Content:  content,
		Filename: filepath.Base(invoice.FilePath),
	}, nil
}

// invalidateDashboards drops the cached dashboard aggregates after any
// invoice write. Failures are logged, never propagated.
func (s *invoiceService) invalidateDashboards(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cacheKeyDashboardStats); err != nil {
		s.log.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
