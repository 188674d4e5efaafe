package queue

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/domain"
	"github.com/bst-contable/invoice-api/internal/core/ports"
)

type stubIngestion struct {
	scans  atomic.Int32
	limits chan int
}

func (s *stubIngestion) Status(ctx context.Context) *domain.MailboxStatus { return nil }
func (s *stubIngestion) RequestAuthorization(ctx context.Context) (string, string, error) {
	return "", "", nil
}
func (s *stubIngestion) Authorize(ctx context.Context, code string) error { return nil }
func (s *stubIngestion) ProcessInvoices(ctx context.Context, limit int) (*ports.IngestionResult, error) {
	s.scans.Add(1)
	s.limits <- limit
	return &ports.IngestionResult{TotalProcessed: 2}, nil
}
func (s *stubIngestion) Stats(ctx context.Context) (*domain.MailboxStats, error) { return nil, nil }

func TestDispatcher_RunsQueuedScans(t *testing.T) {
	svc := &stubIngestion{limits: make(chan int, 4)}
	d := NewDispatcher(svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	if !d.Enqueue(ScanJob{Limit: 15}) {
		t.Fatalf("enqueue refused")
	}
	if !d.Enqueue(ScanJob{Limit: 30}) {
		t.Fatalf("enqueue refused")
	}

	for _, want := range []int{15, 30} {
		select {
		case got := <-svc.limits:
			if got != want {
				t.Fatalf("expected limit %d, got %d", want, got)
			}
		case <-time.After(time.Second):
			t.Fatalf("scan %d never ran", want)
		}
	}
}

func TestDispatcher_EnqueueFailsWhenFull(t *testing.T) {
	// Never started, so jobs accumulate in the buffer.
	d := NewDispatcher(&stubIngestion{limits: make(chan int, 1)}, zerolog.Nop())

	for i := 0; i < jobBuffer; i++ {
		if !d.Enqueue(ScanJob{}) {
			t.Fatalf("enqueue %d refused before buffer filled", i)
		}
	}
	if d.Enqueue(ScanJob{}) {
		t.Fatalf("expected enqueue to refuse when buffer is full")
	}
}
