package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/bst-contable/invoice-api/internal/core/ports"
)

const jobBuffer = 16

// ScanJob is a request to sweep the connected mailbox for new invoices.
type ScanJob struct {
	Limit int
}

// Dispatcher runs mailbox scans on a single background worker so that HTTP
// handlers can accept a scan request and return immediately. Scans are
// serialized here and additionally guarded by the ingestion service's
// single-flight flag.
type Dispatcher struct {
	jobs    chan ScanJob
	service ports.IngestionService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher backed by a buffered job channel.
func NewDispatcher(service ports.IngestionService, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		jobs:    make(chan ScanJob, jobBuffer),
		service: service,
		log:     log,
	}
}

// Start launches the worker goroutine. The worker stops when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.run(ctx)
}

// Enqueue submits a scan job. It returns false when the queue is full, which
// means a backlog of scans is already pending.
func (d *Dispatcher) Enqueue(job ScanJob) bool {
	select {
	case d.jobs <- job:
		return true
	default:
		return false
	}
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-d.jobs:
			if !ok {
				return
			}
			result, err := d.service.ProcessInvoices(ctx, job.Limit)
			if err != nil {
				d.log.Error().Err(err).Int("limit", job.Limit).Msg("mailbox scan failed")
				continue
			}
			d.log.Info().
				Int("emails", result.TotalProcessed).
				Int("invoices", len(result.Processed)).
				Msg("mailbox scan finished")
		}
	}
}
