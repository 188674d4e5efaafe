// Package metrics defines and registers all custom Prometheus metrics for the
// BST invoice API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry at import time via
// promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "facturas"

// ── Invoice metrics ───────────────────────────────────────────────────────────

// InvoicesCreatedTotal counts newly registered invoices.
// Labels:
//   - source: "manual", "ocr", or "gmail"
//   - category: the expense category (e.g. "transporte")
var InvoicesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Total number of invoices created, by intake source and category.",
	},
	[]string{"source", "category"},
)

// InvoicesValidatedTotal counts validation decisions.
// Label:
//   - status: the terminal status applied ("validada" or "rechazada")
var InvoicesValidatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_validated_total",
		Help:      "Total number of invoice validation decisions, by resulting status.",
	},
	[]string{"status"},
)

// ── OCR metrics ───────────────────────────────────────────────────────────────

// OCRExtractionsTotal counts OCR extraction attempts.
// Label:
//   - result: "ok", "no_text", "unsupported_format", or "error"
var OCRExtractionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ocr_extractions_total",
		Help:      "Total number of OCR extraction attempts, by result.",
	},
	[]string{"result"},
)

// OCRConfidence observes the confidence score of successful extractions.
var OCRConfidence = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ocr_confidence",
		Help:      "Confidence score distribution of OCR field extraction.",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
	},
)

// OCRExtractionDuration measures end-to-end document extraction time.
var OCRExtractionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "ocr_extraction_duration_seconds",
		Help:      "Duration of text extraction and field parsing per document.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Gmail ingestion metrics ───────────────────────────────────────────────────

// GmailScansTotal counts mailbox scans.
// Label:
//   - result: "ok", "not_connected", "busy", or "error"
var GmailScansTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gmail_scans_total",
		Help:      "Total number of mailbox ingestion scans, by result.",
	},
	[]string{"result"},
)

// GmailInvoicesIngestedTotal counts invoices created from mail attachments.
var GmailInvoicesIngestedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gmail_invoices_ingested_total",
		Help:      "Total number of invoices created from Gmail attachments.",
	},
)
