package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/api/metrics"
	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

// IntakeHandler handles the OCR-assisted invoice intake endpoints.
type IntakeHandler struct {
	service  ports.IntakeService
	invoices ports.InvoiceService
}

func NewIntakeHandler(service ports.IntakeService, invoices ports.InvoiceService) *IntakeHandler {
	return &IntakeHandler{service: service, invoices: invoices}
}

type processFileRequest struct {
	UserID int64 `form:"user_id" validate:"required,gt=0"`
}

type commitInvoiceRequest struct {
	UserID        int64  `form:"user_id"        validate:"required,gt=0"`
	PaymentMethod string `form:"payment_method" validate:"required,oneof=efectivo tarjeta_bst tarjeta_personal transferencia cheque"`
	Category      string `form:"category"       validate:"required,oneof=transporte alimentacion hospedaje suministros comunicacion otros"`
	Description   string `form:"description"`
}

type extractionResponse struct {
	*domain.ExtractionResult
	ConfidenceTier domain.ConfidenceTier `json:"confidence_tier"`
}

type formatsResponse struct {
	Formats []string `json:"supported_formats"`
}

// Process handles POST /v1/ocr/process: runs OCR over the uploaded
// document and returns the detected fields without persisting anything.
//
// @Summary      Extract invoice fields from a document
// @Tags         ocr
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        user_id  formData  int   true  "Requesting user id"
// @Param        file     formData  file  true  "Invoice document (PDF or image)"
// @Success      200  {object}  extractionResponse
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/ocr/process [post]
func (h *IntakeHandler) Process(c echo.Context) error {
	var req processFileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	started := time.Now()
	result, err := h.service.Process(c.Request().Context(), ports.ProcessFileInput{
		UserID:   req.UserID,
		File:     src,
		Filename: fh.Filename,
	})
	if err != nil {
		metrics.OCRExtractionsTotal.WithLabelValues(extractionFailureReason(err)).Inc()
		return err
	}

	metrics.OCRExtractionsTotal.WithLabelValues("ok").Inc()
	metrics.OCRConfidence.Observe(result.Confidence)
	metrics.OCRExtractionDuration.Observe(time.Since(started).Seconds())

	return c.JSON(http.StatusOK, extractionResponse{
		ExtractionResult: result,
		ConfidenceTier:   result.Tier(),
	})
}

// Commit handles POST /v1/ocr/process-and-create: re-extracts server-side and
// creates the invoice with the stored attachment in one step.
//
// @Summary      Create an invoice from a scanned document
// @Tags         ocr
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        user_id         formData  int     true   "Owner user id"
// @Param        payment_method  formData  string  true   "Payment method"
// @Param        category        formData  string  true   "Expense category"
// @Param        description     formData  string  false  "Free-text description"
// @Param        file            formData  file    true   "Invoice document (PDF or image)"
// @Success      201  {object}  domain.Invoice
// @Failure      400  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/ocr/process-and-create [post]
func (h *IntakeHandler) Commit(c echo.Context) error {
	var req commitInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read file")
	}
	defer src.Close()

	inv, err := h.service.Commit(c.Request().Context(), ports.CommitInvoiceInput{
		UserID:        req.UserID,
		File:          src,
		Filename:      fh.Filename,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Category:      domain.ExpenseCategory(req.Category),
		Description:   req.Description,
	})
	if err != nil {
		return err
	}

	metrics.InvoicesCreatedTotal.WithLabelValues("ocr", string(inv.Category)).Inc()
	return c.JSON(http.StatusCreated, inv)
}

// Formats handles GET /v1/ocr/supported-formats.
//
// @Summary      List supported intake file formats
// @Tags         ocr
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  formatsResponse
// @Router       /v1/ocr/supported-formats [get]
func (h *IntakeHandler) Formats(c echo.Context) error {
	return c.JSON(http.StatusOK, formatsResponse{Formats: h.service.SupportedFormats()})
}

// OCRData handles GET /v1/ocr/invoice/:id/ocr-data: returns the raw
// extraction persisted with an invoice that came through the intake
// pipeline.
//
// @Summary      Get the stored OCR extraction of an invoice
// @Tags         ocr
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  extractionResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/ocr/invoice/{id}/ocr-data [get]
func (h *IntakeHandler) OCRData(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	inv, err := h.invoices.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if inv.OCRData == nil {
		return echo.NewHTTPError(http.StatusNotFound, "invoice has no OCR data")
	}
	return c.JSON(http.StatusOK, extractionResponse{
		ExtractionResult: inv.OCRData,
		ConfidenceTier:   inv.OCRData.Tier(),
	})
}

func extractionFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoTextExtracted):
		return "no_text"
	case errors.Is(err, domain.ErrUnsupportedFormat):
		return "unsupported_format"
	default:
		return "error"
	}
}
