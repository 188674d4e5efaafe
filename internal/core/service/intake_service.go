package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

// FieldParser turns raw document text into structured candidate fields.
type FieldParser interface {
	Parse(text string) *domain.ExtractionResult
}

type intakeService struct {
	extractor ports.TextExtractor
	parser    FieldParser
	invoices  ports.InvoiceService
	formats   []string
	log       zerolog.Logger
}

// NewIntakeService returns an IntakeService implementation.
func NewIntakeService(
	extractor ports.TextExtractor,
	parser FieldParser,
	invoices ports.InvoiceService,
	formats []string,
	log zerolog.Logger,
) ports.IntakeService {
	return &intakeService{
		extractor: extractor,
		parser:    parser,
		invoices:  invoices,
		formats:   formats,
		log:       log,
	}
}

// Process extracts candidate fields from the uploaded document without
// persisting anything. Missing fields come back nil; only a document that
// yields no text at all fails.
func (s *intakeService) Process(ctx context.Context, input ports.ProcessFileInput) (*domain.ExtractionResult, error) {
	result, err := s.extract(ctx, input.File, input.Filename)
	if err != nil {
		return nil, err
	}
	result.UserID = input.UserID

	s.log.Info().
		Str("file", input.Filename).
		Int64("user_id", input.UserID).
		Float64("confidence", result.Confidence).
		Msg("document processed")

	return result, nil
}

// Commit re-runs extraction server-side and creates the invoice in one
// step. The client's earlier preview is never trusted as input.
func (s *intakeService) Commit(ctx context.Context, input ports.CommitInvoiceInput) (*domain.Invoice, error) {
	content, err := io.ReadAll(input.File)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}

	result, err := s.extractBytes(ctx, content, input.Filename)
	if err != nil {
		return nil, err
	}
	if result.Amount == nil {
		return nil, domain.ErrAmountNotDetected
	}

	create := ports.CreateInvoiceInput{
		UserID:        input.UserID,
		Date:          time.Now().UTC(),
		Amount:        *result.Amount,
		Provider:      "Proveedor no identificado",
		PaymentMethod: input.PaymentMethod,
		Category:      input.Category,
		Description:   input.Description,
		Attachment:    bytes.NewReader(content),
		Filename:      input.Filename,
		OCRData:       result,
	}
	if result.Provider != nil {
		create.Provider = *result.Provider
	}
	if result.Date != nil {
		create.Date = *result.Date
	}
	if result.NIT != nil {
		create.NIT = *result.NIT
	}
	if input.PaymentMethod == "" {
		// Most scanned documents never spell out how they were paid;
		// transfers are the default attribution.
		create.PaymentMethod = domain.PaymentTransfer
		if result.PaymentMethod != nil {
			create.PaymentMethod = *result.PaymentMethod
		}
	}
	if input.Category == "" {
		create.Category = result.Category
	}
	if create.Category == "" {
		create.Category = domain.CategoryOther
	}

	invoice, err := s.invoices.Create(ctx, create)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int64("invoice_id", invoice.ID).
		Float64("confidence", result.Confidence).
		Msg("invoice created from document")

	return invoice, nil
}

func (s *intakeService) SupportedFormats() []string {
	out := make([]string, len(s.formats))
	copy(out, s.formats)
	return out
}

func (s *intakeService) extract(ctx context.Context, file io.Reader, filename string) (*domain.ExtractionResult, error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return s.extractBytes(ctx, content, filename)
}

func (s *intakeService) extractBytes(ctx context.Context, content []byte, filename string) (*domain.ExtractionResult, error) {
	if !s.extractor.SupportedFormat(filename) {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, filename)
	}

	text, err := s.extractor.ExtractText(ctx, content, filename)
	if err != nil {
		return nil, err
	}

	return s.parser.Parse(text), nil
}
