package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
)

func runErrorHandler(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop())(err, c)
	return rec
}

func TestErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invoice not found", domain.ErrInvoiceNotFound, http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"attachment not found", domain.ErrAttachmentNotFound, http.StatusNotFound},
		{"not pending", domain.ErrInvoiceNotPending, http.StatusConflict},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"ingestion busy", domain.ErrIngestionInProgress, http.StatusConflict},
		{"bad amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"bad provider", domain.ErrInvalidProvider, http.StatusBadRequest},
		{"bad status", domain.ErrInvalidStatus, http.StatusBadRequest},
		{"bad role", domain.ErrInvalidRole, http.StatusBadRequest},
		{"empty code", domain.ErrEmptyAuthCode, http.StatusBadRequest},
		{"unsupported format", domain.ErrUnsupportedFormat, http.StatusUnprocessableEntity},
		{"no text", domain.ErrNoTextExtracted, http.StatusUnprocessableEntity},
		{"no amount", domain.ErrAmountNotDetected, http.StatusUnprocessableEntity},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"mailbox disconnected", domain.ErrMailboxNotConnected, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := runErrorHandler(t, tc.err)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestErrorHandler_WrappedErrorsStillMap(t *testing.T) {
	wrapped := fmt.Errorf("validate invoice 42: %w", domain.ErrInvoiceNotPending)
	rec := runErrorHandler(t, wrapped)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestErrorHandler_EchoErrorsKeepTheirCode(t *testing.T) {
	rec := runErrorHandler(t, echo.NewHTTPError(http.StatusTeapot, "short and stout"))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
}

func TestErrorHandler_UnknownErrorIs500(t *testing.T) {
	rec := runErrorHandler(t, errors.New("mongo timeout"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, "internal server error") {
		t.Fatalf("internal detail leaked: %q", body)
	}
}
