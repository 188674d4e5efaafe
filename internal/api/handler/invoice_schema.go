package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

const dateLayout = "2006-01-02"

// --- Request types ---

// createInvoiceRequest is the multipart form behind POST /v1/invoices.
// The attachment travels as the "file" part and is read separately.
type createInvoiceRequest struct {
	UserID        int64   `form:"user_id"        validate:"required,gt=0"`
	Date          string  `form:"date"           validate:"required"`
	Provider      string  `form:"provider"       validate:"required,min=2"`
	Amount        float64 `form:"amount"         validate:"required,gt=0"`
	PaymentMethod string  `form:"payment_method" validate:"required,oneof=efectivo tarjeta_bst tarjeta_personal transferencia cheque"`
	Category      string  `form:"category"       validate:"required,oneof=transporte alimentacion hospedaje suministros comunicacion otros"`
	Description   string  `form:"description"`
	NIT           string  `form:"nit"`
}

type updateInvoiceRequest struct {
	Date          *string  `json:"date"`
	Provider      *string  `json:"provider"       validate:"omitempty,min=2"`
	Amount        *float64 `json:"amount"         validate:"omitempty,gt=0"`
	PaymentMethod *string  `json:"payment_method" validate:"omitempty,oneof=efectivo tarjeta_bst tarjeta_personal transferencia cheque"`
	Category      *string  `json:"category"       validate:"omitempty,oneof=transporte alimentacion hospedaje suministros comunicacion otros"`
	Description   *string  `json:"description"`
	UserID        *int64   `json:"user_id"        validate:"omitempty,gt=0"`
}

// validateInvoiceRequest accepts both JSON and the multipart form the
// legacy front end posts (new_status + validation_notes).
type validateInvoiceRequest struct {
	Status string `json:"status" form:"new_status"       validate:"required,oneof=validada rechazada"`
	Notes  string `json:"notes"  form:"validation_notes"`
}

// --- Mapping helpers ---

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, echo.NewHTTPError(http.StatusBadRequest, "date must be formatted as YYYY-MM-DD")
	}
	return d, nil
}

func toInvoicePatch(req updateInvoiceRequest) (ports.InvoicePatch, error) {
	patch := ports.InvoicePatch{
		Provider:    req.Provider,
		Amount:      req.Amount,
		Description: req.Description,
		UserID:      req.UserID,
	}
	if req.Date != nil {
		d, err := parseDate(*req.Date)
		if err != nil {
			return ports.InvoicePatch{}, err
		}
		patch.Date = &d
	}
	if req.PaymentMethod != nil {
		m := domain.PaymentMethod(*req.PaymentMethod)
		patch.PaymentMethod = &m
	}
	if req.Category != nil {
		cat := domain.ExpenseCategory(*req.Category)
		patch.Category = &cat
	}
	return patch, nil
}

// invoiceFilterFromQuery builds the list filter from query parameters.
// Unknown or malformed optional values are ignored rather than rejected.
func invoiceFilterFromQuery(c echo.Context) ports.InvoiceFilter {
	filter := ports.InvoiceFilter{
		Search:        c.QueryParam("search"),
		Provider:      c.QueryParam("provider"),
		Status:        domain.InvoiceStatus(c.QueryParam("status")),
		Category:      domain.ExpenseCategory(c.QueryParam("category")),
		PaymentMethod: domain.PaymentMethod(c.QueryParam("payment_method")),
		UserID:        int64(queryInt(c, "user_id", 0)),
		Page:          queryInt(c, "page", 1),
		Size:          queryInt(c, "size", 0),
	}
	if raw := c.QueryParam("date_from"); raw != "" {
		if d, err := time.Parse(dateLayout, raw); err == nil {
			filter.DateFrom = d
		}
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		if d, err := time.Parse(dateLayout, raw); err == nil {
			filter.DateTo = d
		}
	}
	return filter
}
