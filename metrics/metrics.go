// Package metrics defines the Prometheus collectors for ingestion runs and
// boundary calls. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	FetchSucceeded = "ok"
	FetchFailed    = "failed"
	FetchRetried   = "retried"
)

// Metrics holds the collectors used across the module.
type Metrics struct {
	FetchesTotal        *prometheus.CounterVec
	EntriesIngested     prometheus.Counter
	EntriesSkipped      prometheus.Counter
	BoundaryRejections  *prometheus.CounterVec
	LiveTermFreqHandles prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfcfreq_fetches_total",
				Help: "Document fetches by outcome (ok, failed, retried).",
			},
			[]string{"outcome"},
		),
		EntriesIngested: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rfcfreq_entries_ingested_total",
				Help: "Index entries emitted by ingestion runs.",
			},
		),
		EntriesSkipped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rfcfreq_entries_skipped_total",
				Help: "Index blocks skipped because their header was malformed.",
			},
		),
		BoundaryRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rfcfreq_boundary_rejections_total",
				Help: "Boundary calls degraded to a no-op or absent result, by operation and reason.",
			},
			[]string{"op", "reason"},
		),
		LiveTermFreqHandles: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rfcfreq_live_term_freq_handles",
				Help: "Term-frequency maps created and not yet destroyed.",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.FetchesTotal,
		m.EntriesIngested,
		m.EntriesSkipped,
		m.BoundaryRejections,
		m.LiveTermFreqHandles,
	)

	return m
}

// Handler returns an HTTP handler that serves the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveFetch counts a fetch outcome.
func (m *Metrics) ObserveFetch(outcome string) {
	if m == nil {
		return
	}

	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveEntry counts an ingested entry.
func (m *Metrics) ObserveEntry() {
	if m == nil {
		return
	}

	m.EntriesIngested.Inc()
}

// ObserveSkip counts a skipped index block.
func (m *Metrics) ObserveSkip() {
	if m == nil {
		return
	}

	m.EntriesSkipped.Inc()
}

// ObserveRejection counts a boundary call that was degraded to a sentinel.
func (m *Metrics) ObserveRejection(op, reason string) {
	if m == nil {
		return
	}

	m.BoundaryRejections.WithLabelValues(op, reason).Inc()
}

// SetLiveHandles records the number of live term-frequency handles.
func (m *Metrics) SetLiveHandles(n int) {
	if m == nil {
		return
	}

	m.LiveTermFreqHandles.Set(float64(n))
}
