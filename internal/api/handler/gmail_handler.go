package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bst-contable/invoice-api/internal/api/metrics"
	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
	"github.com/bst-contable/invoice-api/internal/infrastructure/queue"
)

// ScanDispatcher is the interface the handler uses to run mailbox scans in
// the background.
type ScanDispatcher interface {
	Enqueue(job queue.ScanJob) bool
}

// GmailHandler handles the Gmail ingestion workflow plus raw mailbox
// browsing for the back office.
type GmailHandler struct {
	service    ports.IngestionService
	mailbox    ports.Mailbox
	dispatcher ScanDispatcher
}

func NewGmailHandler(service ports.IngestionService, mailbox ports.Mailbox, dispatcher ScanDispatcher) *GmailHandler {
	return &GmailHandler{service: service, mailbox: mailbox, dispatcher: dispatcher}
}

type authURLResponse struct {
	AuthURL      string `json:"auth_url"`
	Instructions string `json:"instructions"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type emailListResponse struct {
	Emails []*domain.EmailMessage `json:"emails"`
	Total  int                    `json:"total"`
}

// Status handles GET /v1/gmail/auth/status.
//
// @Summary      Mailbox connection status
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.MailboxStatus
// @Router       /v1/gmail/auth/status [get]
func (h *GmailHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Status(c.Request().Context()))
}

// AuthURL handles GET /v1/gmail/auth/url: starts the manual OAuth flow.
//
// @Summary      Get the OAuth consent URL
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authURLResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/gmail/auth/url [get]
func (h *GmailHandler) AuthURL(c echo.Context) error {
	url, instructions, err := h.service.RequestAuthorization(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authURLResponse{AuthURL: url, Instructions: instructions})
}

// Callback handles GET /v1/gmail/auth/callback?code=...: completes the
// manual flow with the code the operator pasted from Google's consent page.
//
// @Summary      Complete the OAuth flow with an authorization code
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Param        code  query     string  true  "Authorization code"
// @Success      200   {object}  domain.MailboxStatus
// @Failure      400   {object}  errorResponse
// @Router       /v1/gmail/auth/callback [get]
func (h *GmailHandler) Callback(c echo.Context) error {
	if err := h.service.Authorize(c.Request().Context(), c.QueryParam("code")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.service.Status(c.Request().Context()))
}

// Process handles POST /v1/gmail/process-invoices: queues a mailbox scan
// on the background worker and returns immediately.
//
// @Summary      Queue a mailbox scan for new invoices
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max emails to process (default 10, max 50)"
// @Success      202    {object}  acceptedResponse
// @Failure      409    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /v1/gmail/process-invoices [post]
func (h *GmailHandler) Process(c echo.Context) error {
	if !h.mailbox.Authenticated(c.Request().Context()) {
		metrics.GmailScansTotal.WithLabelValues("not_connected").Inc()
		return domain.ErrMailboxNotConnected
	}
	if !h.dispatcher.Enqueue(queue.ScanJob{Limit: queryInt(c, "limit", 0)}) {
		metrics.GmailScansTotal.WithLabelValues("busy").Inc()
		return echo.NewHTTPError(http.StatusConflict, "scan queue is full")
	}
	return c.JSON(http.StatusAccepted, acceptedResponse{Message: "scan queued"})
}

// ProcessSync handles POST /v1/gmail/process-invoices/sync: runs the scan
// inline and returns the result.
//
// @Summary      Scan the mailbox for new invoices
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Max emails to process (default 10, max 50)"
// @Success      200    {object}  ports.IngestionResult
// @Failure      409    {object}  errorResponse
// @Failure      503    {object}  errorResponse
// @Router       /v1/gmail/process-invoices/sync [post]
func (h *GmailHandler) ProcessSync(c echo.Context) error {
	result, err := h.service.ProcessInvoices(c.Request().Context(), queryInt(c, "limit", 0))
	if err != nil {
		metrics.GmailScansTotal.WithLabelValues(scanFailureReason(err)).Inc()
		return err
	}

	metrics.GmailScansTotal.WithLabelValues("ok").Inc()
	metrics.GmailInvoicesIngestedTotal.Add(float64(len(result.Processed)))
	return c.JSON(http.StatusOK, result)
}

// Stats handles GET /v1/gmail/stats.
//
// @Summary      Recent mailbox statistics
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.MailboxStats
// @Failure      503  {object}  errorResponse
// @Router       /v1/gmail/stats [get]
func (h *GmailHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// SearchEmails handles GET /v1/gmail/emails/search?q=...&max=N.
//
// @Summary      Search mailbox messages
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Gmail search query"
// @Param        max  query     int     false  "Max results (default 20)"
// @Success      200  {object}  emailListResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/gmail/emails/search [get]
func (h *GmailHandler) SearchEmails(c echo.Context) error {
	ctx := c.Request().Context()
	if !h.mailbox.Authenticated(ctx) {
		return domain.ErrMailboxNotConnected
	}

	query := c.QueryParam("q")
	if query == "" {
		query = "in:inbox"
	}
	emails, err := h.mailbox.Search(ctx, query, queryInt(c, "max", 20))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, emailListResponse{Emails: emails, Total: len(emails)})
}

// GetEmail handles GET /v1/gmail/emails/:id.
//
// @Summary      Fetch one mailbox message
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message id"
// @Success      200  {object}  domain.EmailMessage
// @Failure      503  {object}  errorResponse
// @Router       /v1/gmail/emails/{id} [get]
func (h *GmailHandler) GetEmail(c echo.Context) error {
	ctx := c.Request().Context()
	if !h.mailbox.Authenticated(ctx) {
		return domain.ErrMailboxNotConnected
	}

	msg, err := h.mailbox.Message(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, msg)
}

// DownloadAttachment handles GET /v1/gmail/emails/:id/attachments/:attachment_id.
//
// @Summary      Download one message attachment
// @Tags         gmail
// @Produce      application/octet-stream
// @Security     BearerAuth
// @Param        id             path  string  true  "Message id"
// @Param        attachment_id  path  string  true  "Attachment id"
// @Success      200  {file}    file
// @Failure      503  {object}  errorResponse
// @Router       /v1/gmail/emails/{id}/attachments/{attachment_id} [get]
func (h *GmailHandler) DownloadAttachment(c echo.Context) error {
	ctx := c.Request().Context()
	if !h.mailbox.Authenticated(ctx) {
		return domain.ErrMailboxNotConnected
	}

	content, err := h.mailbox.Attachment(ctx, c.Param("id"), c.Param("attachment_id"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, content)
}

// MarkRead handles POST /v1/gmail/emails/:id/mark-read.
//
// @Summary      Mark a message as read
// @Tags         gmail
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Message id"
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  errorResponse
// @Router       /v1/gmail/emails/{id}/mark-read [post]
func (h *GmailHandler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()
	if !h.mailbox.Authenticated(ctx) {
		return domain.ErrMailboxNotConnected
	}

	if err := h.mailbox.MarkRead(ctx, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "marked as read"})
}

func scanFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrMailboxNotConnected):
		return "not_connected"
	case errors.Is(err, domain.ErrIngestionInProgress):
		return "busy"
	default:
		return "error"
	}
}
