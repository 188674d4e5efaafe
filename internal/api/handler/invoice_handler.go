package handler

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/api/metrics"
	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for invoice operations.
type InvoiceHandler struct {
	service ports.InvoiceService
}

func NewInvoiceHandler(service ports.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service}
}

// Create handles POST /v1/invoices: registers a new invoice from a
// multipart form with an optional document attachment.
//
// @Summary      Register a new invoice
// @Tags         invoices
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        user_id         formData  int     true   "Owner user id"
// @Param        date            formData  string  true   "Invoice date (YYYY-MM-DD)"
// @Param        provider        formData  string  true   "Provider name"
// @Param        amount          formData  number  true   "Amount in COP"
// @Param        payment_method  formData  string  true   "Payment method"
// @Param        category        formData  string  true   "Expense category"
// @Param        description     formData  string  false  "Free-text description"
// @Param        nit             formData  string  false  "Provider NIT"
// @Param        file            formData  file    false  "Document attachment"
// @Success      201  {object}  domain.Invoice
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return err
	}

	input := ports.CreateInvoiceInput{
		UserID:        req.UserID,
		Date:          date,
		Provider:      req.Provider,
		Amount:        req.Amount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Category:      domain.ExpenseCategory(req.Category),
		Description:   req.Description,
		NIT:           req.NIT,
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil {
		src, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "cannot read attachment")
		}
		defer src.Close()
		input.Attachment = src
		input.Filename = fh.Filename
	}

	inv, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.InvoicesCreatedTotal.WithLabelValues("manual", string(inv.Category)).Inc()
	return c.JSON(http.StatusCreated, inv)
}

// Get handles GET /v1/invoices/:id.
//
// @Summary      Get an invoice by id
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Invoice id"
// @Success      200  {object}  domain.Invoice
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id} [get]
func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	inv, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// List handles GET /v1/invoices with filtering and pagination.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        page            query     int     false  "Page number (1-based)"
// @Param        size            query     int     false  "Page size (max 100)"
// @Param        status          query     string  false  "Filter by status"
// @Param        category        query     string  false  "Filter by category"
// @Param        payment_method  query     string  false  "Filter by payment method"
// @Param        provider        query     string  false  "Partial provider match"
// @Param        search          query     string  false  "Partial provider or description match"
// @Param        user_id         query     int     false  "Filter by owner"
// @Param        date_from       query     string  false  "Date lower bound (YYYY-MM-DD)"
// @Param        date_to         query     string  false  "Date upper bound (YYYY-MM-DD)"
// @Success      200  {object}  ports.InvoicePage
// @Router       /v1/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	page, err := h.service.List(c.Request().Context(), invoiceFilterFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Validate handles PATCH /v1/invoices/:id/validate: the pending-to-terminal
// transition. Reviewer roles only; enforced by route middleware.
//
// @Summary      Validate or reject a pending invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                     true  "Invoice id"
// @Param        body  body      validateInvoiceRequest  true  "Decision"
// @Success      200   {object}  domain.Invoice
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/invoices/{id}/validate [patch]
func (h *InvoiceHandler) Validate(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req validateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	inv, err := h.service.Validate(c.Request().Context(), ports.ValidateInvoiceInput{
		InvoiceID: id,
		NewStatus: domain.InvoiceStatus(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}

	metrics.InvoicesValidatedTotal.WithLabelValues(string(inv.Status)).Inc()
	return c.JSON(http.StatusOK, inv)
}

// Update handles PUT /v1/invoices/:id: patches editable fields of a
// pending invoice.
//
// @Summary      Update a pending invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                   true  "Invoice id"
// @Param        body  body      updateInvoiceRequest  true  "Fields to update"
// @Success      200   {object}  domain.Invoice
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /v1/invoices/{id} [put]
func (h *InvoiceHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req updateInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	patch, err := toInvoicePatch(req)
	if err != nil {
		return err
	}

	inv, err := h.service.Update(c.Request().Context(), id, patch)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, inv)
}

// Delete handles DELETE /v1/invoices/:id. Reviewer roles only.
//
// @Summary      Delete an invoice
// @Tags         invoices
// @Security     BearerAuth
// @Param        id  path  int  true  "Invoice id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Export handles GET /v1/invoices/export/excel: generates an Excel report
// of every invoice matching the filters and streams it back.
//
// @Summary      Export invoices to Excel
// @Tags         invoices
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        status     query  string  false  "Filter by status"
// @Param        category   query  string  false  "Filter by category"
// @Param        user_id    query  int     false  "Filter by owner"
// @Param        date_from  query  string  false  "Date lower bound (YYYY-MM-DD)"
// @Param        date_to    query  string  false  "Date upper bound (YYYY-MM-DD)"
// @Success      200  {file}    file
// @Failure      500  {object}  errorResponse
// @Router       /v1/invoices/export/excel [get]
func (h *InvoiceHandler) Export(c echo.Context) error {
	result, err := h.service.ExportExcel(c.Request().Context(), invoiceFilterFromQuery(c))
	if err != nil {
		return err
	}
	return c.Attachment(result.FilePath, filepath.Base(result.FilePath))
}

// Download handles GET /v1/invoices/:id/download: streams the stored
// document attachment.
//
// @Summary      Download an invoice attachment
// @Tags         invoices
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        id  path  int  true  "Invoice id"
// @Success      200  {file}    file
// @Failure      404  {object}  errorResponse
// @Router       /v1/invoices/{id}/download [get]
func (h *InvoiceHandler) Download(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	att, err := h.service.Download(c.Request().Context(), id)
	if err != nil {
		return err
	}
	defer att.Content.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+att.Filename+`"`)
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEOctetStream)
	c.Response().WriteHeader(http.StatusOK)
	_, err = io.Copy(c.Response(), att.Content)
	return err
}
