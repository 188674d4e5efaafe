package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

type fakeMailbox struct {
	mu          sync.Mutex
	authed      bool
	authURL     string
	exchangeErr error
	messages    []*domain.EmailMessage
	attachments map[string][]byte
	marked      []string
	searchGate  chan struct{} // when set, Search blocks until the channel closes
	searchBegan chan struct{} // when set, closed once on first Search entry
	beganOnce   sync.Once
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		authURL:     "https://accounts.google.com/o/oauth2/auth?client_id=test",
		attachments: make(map[string][]byte),
	}
}

func (m *fakeMailbox) Authenticated(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authed
}

func (m *fakeMailbox) AuthURL() (string, error) {
	return m.authURL, nil
}

func (m *fakeMailbox) Exchange(_ context.Context, code string) error {
	if m.exchangeErr != nil {
		return m.exchangeErr
	}
	m.mu.Lock()
	m.authed = true
	m.mu.Unlock()
	return nil
}

func (m *fakeMailbox) Search(_ context.Context, query string, max int) ([]*domain.EmailMessage, error) {
	if m.searchBegan != nil {
		m.beganOnce.Do(func() { close(m.searchBegan) })
	}
	if m.searchGate != nil {
		<-m.searchGate
	}
	var out []*domain.EmailMessage
	for _, msg := range m.messages {
		if strings.Contains(query, "has:attachment") && len(msg.Attachments) == 0 {
			continue
		}
		if strings.Contains(query, "is:unread") && !msg.Unread {
			continue
		}
		if len(out) == max {
			break
		}
		clone := *msg
		out = append(out, &clone)
	}
	return out, nil
}

func (m *fakeMailbox) Message(_ context.Context, id string) (*domain.EmailMessage, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			clone := *msg
			return &clone, nil
		}
	}
	return nil, errors.New("message not found")
}

func (m *fakeMailbox) Attachment(_ context.Context, messageID, attachmentID string) ([]byte, error) {
	data, ok := m.attachments[messageID+"/"+attachmentID]
	if !ok {
		return nil, errors.New("attachment not found")
	}
	return data, nil
}

func (m *fakeMailbox) MarkRead(_ context.Context, messageID string) error {
	m.mu.Lock()
	m.marked = append(m.marked, messageID)
	m.mu.Unlock()
	return nil
}

type ingestionFixture struct {
	svc     ports.IngestionService
	mailbox *fakeMailbox
	intake  *intakeFixture
	cache   *stubCache
}

func newIngestionFixture(t *testing.T, texts map[string]string) *ingestionFixture {
	t.Helper()
	mailbox := newFakeMailbox()
	intake := newIntakeFixture(t, texts)
	cache := newStubCache()
	svc := NewIngestionService(mailbox, intake.svc, intake.invoices.users, cache, "ana@bst.com.co", discardLogger)
	return &ingestionFixture{svc: svc, mailbox: mailbox, intake: intake, cache: cache}
}

func invoiceEmail(id, subject, filename string) *domain.EmailMessage {
	return &domain.EmailMessage{
		ID:      id,
		From:    "proveedor@example.com",
		Subject: subject,
		Snippet: "adjunto encontrará el documento",
		Unread:  true,
		Attachments: []domain.EmailAttachment{
			{ID: "att-1", Filename: filename, MimeType: "application/pdf"},
		},
	}
}

// ---------------------------------------------------------------------------
// Authorization workflow
// ---------------------------------------------------------------------------

func TestIngestionService_Status_Disconnected(t *testing.T) {
	f := newIngestionFixture(t, nil)

	status := f.svc.Status(context.Background())
	if status.State != domain.MailboxDisconnected {
		t.Errorf("state = %s, want disconnected", status.State)
	}
	if status.Authenticated {
		t.Error("must not report authenticated without a token")
	}
}

func TestIngestionService_RequestAuthorization(t *testing.T) {
	f := newIngestionFixture(t, nil)

	url, instructions, err := f.svc.RequestAuthorization(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(url, "https://accounts.google.com/") {
		t.Errorf("url = %q", url)
	}
	if instructions == "" {
		t.Error("expected instructions")
	}

	status := f.svc.Status(context.Background())
	if status.State != domain.MailboxAwaitingCode {
		t.Errorf("state = %s, want awaiting_code", status.State)
	}
}

func TestIngestionService_Authorize_EmptyCode(t *testing.T) {
	f := newIngestionFixture(t, nil)
	_, _, _ = f.svc.RequestAuthorization(context.Background())

	for _, code := range []string{"", "   "} {
		if err := f.svc.Authorize(context.Background(), code); !errors.Is(err, domain.ErrEmptyAuthCode) {
			t.Errorf("code=%q: expected ErrEmptyAuthCode, got %v", code, err)
		}
	}

	// A refused code leaves the workflow where it was.
	if status := f.svc.Status(context.Background()); status.State != domain.MailboxAwaitingCode {
		t.Errorf("state = %s, want awaiting_code", status.State)
	}
}

func TestIngestionService_Authorize_Success(t *testing.T) {
	f := newIngestionFixture(t, nil)
	_, _, _ = f.svc.RequestAuthorization(context.Background())

	if err := f.svc.Authorize(context.Background(), "4/0AbCdEf"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status := f.svc.Status(context.Background())
	if status.State != domain.MailboxConnected {
		t.Errorf("state = %s, want connected", status.State)
	}
	if !status.Authenticated {
		t.Error("expected authenticated after exchange")
	}
}

func TestIngestionService_Authorize_ExchangeFails(t *testing.T) {
	f := newIngestionFixture(t, nil)
	f.mailbox.exchangeErr = errors.New("invalid_grant")

	if err := f.svc.Authorize(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error from failed exchange")
	}
	if status := f.svc.Status(context.Background()); status.Authenticated {
		t.Error("must not report authenticated after failed exchange")
	}
}

// ---------------------------------------------------------------------------
// ProcessInvoices
// ---------------------------------------------------------------------------

func TestIngestionService_Process_NotConnected(t *testing.T) {
	f := newIngestionFixture(t, nil)

	if _, err := f.svc.ProcessInvoices(context.Background(), 10); !errors.Is(err, domain.ErrMailboxNotConnected) {
		t.Errorf("expected ErrMailboxNotConnected, got %v", err)
	}
}

func TestIngestionService_Process_CreatesInvoices(t *testing.T) {
	f := newIngestionFixture(t, map[string]string{
		"factura-marzo.pdf": "Proveedor: X TOTAL: $85.000",
	})
	f.mailbox.authed = true
	f.mailbox.messages = []*domain.EmailMessage{
		invoiceEmail("msg-1", "Factura de marzo", "factura-marzo.pdf"),
	}
	f.mailbox.attachments["msg-1/att-1"] = []byte("pdf bytes")

	result, err := f.svc.ProcessInvoices(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalProcessed != 1 {
		t.Fatalf("total processed = %d, want 1", result.TotalProcessed)
	}
	processed := result.Processed[0]
	if processed.EmailSubject != "Factura de marzo" {
		t.Errorf("subject = %q", processed.EmailSubject)
	}
	if processed.Amount != 85000 {
		t.Errorf("amount = %v", processed.Amount)
	}

	// The created invoice belongs to the default ingestion user.
	inv, err := f.intake.invoices.svc.Get(context.Background(), processed.InvoiceID)
	if err != nil {
		t.Fatalf("created invoice missing: %v", err)
	}
	if inv.UserID != f.intake.invoices.owner.ID {
		t.Errorf("user id = %d, want %d", inv.UserID, f.intake.invoices.owner.ID)
	}
	if !strings.Contains(inv.Description, "Factura de marzo") {
		t.Errorf("description = %q", inv.Description)
	}

	if len(f.mailbox.marked) != 1 || f.mailbox.marked[0] != "msg-1" {
		t.Errorf("marked read = %v", f.mailbox.marked)
	}
}

func TestIngestionService_Process_SkipsNonInvoiceMail(t *testing.T) {
	f := newIngestionFixture(t, map[string]string{
		"resumen.pdf": "Proveedor: X TOTAL: $85.000",
	})
	f.mailbox.authed = true

	newsletter := invoiceEmail("msg-1", "Boletín semanal", "resumen.pdf")
	newsletter.Snippet = "novedades de la semana"
	f.mailbox.messages = []*domain.EmailMessage{newsletter}
	f.mailbox.attachments["msg-1/att-1"] = []byte("pdf bytes")

	result, err := f.svc.ProcessInvoices(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalProcessed != 0 {
		t.Errorf("total processed = %d, want 0", result.TotalProcessed)
	}
	if len(f.mailbox.marked) != 0 {
		t.Error("skipped mail must not be marked read")
	}
}

func TestIngestionService_Process_SkipsUnreadableAttachment(t *testing.T) {
	f := newIngestionFixture(t, map[string]string{
		"factura.pdf": "sin monto detectable",
	})
	f.mailbox.authed = true
	f.mailbox.messages = []*domain.EmailMessage{
		invoiceEmail("msg-1", "Factura pendiente", "factura.pdf"),
	}
	f.mailbox.attachments["msg-1/att-1"] = []byte("pdf bytes")

	result, err := f.svc.ProcessInvoices(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalProcessed != 0 {
		t.Errorf("total processed = %d, want 0", result.TotalProcessed)
	}
}

func TestIngestionService_Process_SingleFlight(t *testing.T) {
	f := newIngestionFixture(t, nil)
	f.mailbox.authed = true

	gate := make(chan struct{})
	f.mailbox.searchGate = gate
	f.mailbox.searchBegan = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.ProcessInvoices(context.Background(), 10)
		done <- err
	}()

	// Wait until the first scan is inside Search, then try a second one.
	<-f.mailbox.searchBegan
	_, second := f.svc.ProcessInvoices(context.Background(), 10)
	close(gate)

	if err := <-done; err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	if !errors.Is(second, domain.ErrIngestionInProgress) {
		t.Errorf("expected ErrIngestionInProgress, got %v", second)
	}

	// The flag is released once the scan finishes.
	if _, err := f.svc.ProcessInvoices(context.Background(), 10); err != nil {
		t.Errorf("scan after release failed: %v", err)
	}
}

// ---------------------------------------------------------------------------
// Stats
// ---------------------------------------------------------------------------

func TestIngestionService_Stats(t *testing.T) {
	f := newIngestionFixture(t, nil)
	f.mailbox.authed = true

	withAtt := invoiceEmail("msg-1", "Factura", "f.pdf")
	read := &domain.EmailMessage{ID: "msg-2", Subject: "Hola"}
	unread := &domain.EmailMessage{ID: "msg-3", Subject: "Hola", Unread: true}
	f.mailbox.messages = []*domain.EmailMessage{withAtt, read, unread}

	stats, err := f.svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalEmails7d != 3 {
		t.Errorf("total = %d, want 3", stats.TotalEmails7d)
	}
	if stats.WithAttachments7d != 1 {
		t.Errorf("with attachments = %d, want 1", stats.WithAttachments7d)
	}
	if stats.Unread7d != 2 {
		t.Errorf("unread = %d, want 2", stats.Unread7d)
	}
	if stats.AttachmentRatePct != 33.33 {
		t.Errorf("rate = %v, want 33.33", stats.AttachmentRatePct)
	}
}

func TestIngestionService_Stats_NotConnected(t *testing.T) {
	f := newIngestionFixture(t, nil)

	if _, err := f.svc.Stats(context.Background()); !errors.Is(err, domain.ErrMailboxNotConnected) {
		t.Errorf("expected ErrMailboxNotConnected, got %v", err)
	}
}
