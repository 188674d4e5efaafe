package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

type stubIntakeService struct {
	processFn func(ctx context.Context, input ports.ProcessFileInput) (*domain.ExtractionResult, error)
	commitFn  func(ctx context.Context, input ports.CommitInvoiceInput) (*domain.Invoice, error)
	formats   []string
}

func (s *stubIntakeService) Process(ctx context.Context, input ports.ProcessFileInput) (*domain.ExtractionResult, error) {
	return s.processFn(ctx, input)
}
func (s *stubIntakeService) Commit(ctx context.Context, input ports.CommitInvoiceInput) (*domain.Invoice, error) {
	return s.commitFn(ctx, input)
}
func (s *stubIntakeService) SupportedFormats() []string {
	return s.formats
}

func TestIntakeHandler_Process_ReturnsTier(t *testing.T) {
	amount := 85000.0
	h := NewIntakeHandler(&stubIntakeService{
		processFn: func(ctx context.Context, input ports.ProcessFileInput) (*domain.ExtractionResult, error) {
			if input.UserID != 7 || input.Filename != "factura.jpg" {
				t.Fatalf("unexpected input: %+v", input)
			}
			return &domain.ExtractionResult{Amount: &amount, Confidence: 0.85}, nil
		},
	}, nil)

	body, contentType := multipartInvoiceForm(t, map[string]string{"user_id": "7"}, "factura.jpg", []byte{0xFF, 0xD8})
	c, rec := newTestContext(t, http.MethodPost, "/v1/ocr/process", body, contentType)

	if err := h.Process(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["confidence_tier"] != "high" {
		t.Fatalf("tier missing: %v", resp)
	}
	if resp["amount"] != 85000.0 {
		t.Fatalf("amount missing: %v", resp)
	}
}

func TestIntakeHandler_Process_FileRequired(t *testing.T) {
	h := NewIntakeHandler(&stubIntakeService{}, nil)

	body, contentType := multipartInvoiceForm(t, map[string]string{"user_id": "7"}, "", nil)
	c, _ := newTestContext(t, http.MethodPost, "/v1/ocr/process", body, contentType)

	err := h.Process(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestIntakeHandler_Process_UnsupportedFormatPropagates(t *testing.T) {
	h := NewIntakeHandler(&stubIntakeService{
		processFn: func(ctx context.Context, input ports.ProcessFileInput) (*domain.ExtractionResult, error) {
			return nil, domain.ErrUnsupportedFormat
		},
	}, nil)

	body, contentType := multipartInvoiceForm(t, map[string]string{"user_id": "7"}, "factura.docx", []byte("x"))
	c, _ := newTestContext(t, http.MethodPost, "/v1/ocr/process", body, contentType)

	if err := h.Process(c); err != domain.ErrUnsupportedFormat {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestIntakeHandler_Commit_MapsForm(t *testing.T) {
	var got ports.CommitInvoiceInput
	h := NewIntakeHandler(&stubIntakeService{
		commitFn: func(ctx context.Context, input ports.CommitInvoiceInput) (*domain.Invoice, error) {
			got = input
			return &domain.Invoice{ID: 5, Status: domain.StatusPending, Category: input.Category}, nil
		},
	}, nil)

	fields := map[string]string{
		"user_id":        "3",
		"payment_method": "transferencia",
		"category":       "comunicacion",
		"description":    "Factura Claro",
	}
	body, contentType := multipartInvoiceForm(t, fields, "claro.pdf", []byte("%PDF-1.4"))
	c, rec := newTestContext(t, http.MethodPost, "/v1/ocr/process-and-create", body, contentType)

	if err := h.Commit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.UserID != 3 || got.PaymentMethod != domain.PaymentTransfer || got.Category != domain.CategoryCommunication {
		t.Fatalf("unexpected input: %+v", got)
	}
	if got.Filename != "claro.pdf" || got.File == nil {
		t.Fatalf("file not wired: %+v", got)
	}
}

func TestIntakeHandler_Commit_AmountNotDetectedPropagates(t *testing.T) {
	h := NewIntakeHandler(&stubIntakeService{
		commitFn: func(ctx context.Context, input ports.CommitInvoiceInput) (*domain.Invoice, error) {
			return nil, domain.ErrAmountNotDetected
		},
	}, nil)

	fields := map[string]string{"user_id": "3", "payment_method": "efectivo", "category": "otros"}
	body, contentType := multipartInvoiceForm(t, fields, "borroso.jpg", []byte{0xFF})
	c, _ := newTestContext(t, http.MethodPost, "/v1/ocr/process-and-create", body, contentType)

	if err := h.Commit(c); err != domain.ErrAmountNotDetected {
		t.Fatalf("expected ErrAmountNotDetected, got %v", err)
	}
}

func TestIntakeHandler_Formats(t *testing.T) {
	h := NewIntakeHandler(&stubIntakeService{formats: []string{".pdf", ".jpg", ".png"}}, nil)

	c, rec := newTestContext(t, http.MethodGet, "/v1/ocr/supported-formats", nil, "")
	if err := h.Formats(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp formatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Formats) != 3 || resp.Formats[0] != ".pdf" {
		t.Fatalf("unexpected formats: %v", resp.Formats)
	}
}

func TestIntakeHandler_OCRData(t *testing.T) {
	amount := 85000.0
	h := NewIntakeHandler(&stubIntakeService{}, &stubInvoiceService{
		getFn: func(ctx context.Context, id int64) (*domain.Invoice, error) {
			return &domain.Invoice{
				ID:      id,
				OCRData: &domain.ExtractionResult{Amount: &amount, Confidence: 0.65},
			}, nil
		},
	})

	c, rec := newTestContext(t, http.MethodGet, "/v1/ocr/invoice/4/ocr-data", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	if err := h.OCRData(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["confidence_tier"] != "medium" {
		t.Fatalf("unexpected tier: %v", resp)
	}
}

func TestIntakeHandler_OCRData_NoneStored(t *testing.T) {
	h := NewIntakeHandler(&stubIntakeService{}, &stubInvoiceService{
		getFn: func(ctx context.Context, id int64) (*domain.Invoice, error) {
			return &domain.Invoice{ID: id}, nil
		},
	})

	c, _ := newTestContext(t, http.MethodGet, "/v1/ocr/invoice/4/ocr-data", nil, "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	err := h.OCRData(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}
