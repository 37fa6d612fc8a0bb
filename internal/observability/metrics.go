// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the collector.
type Metrics struct {
	// Cycle metrics
	CyclesTotal   prometheus.Counter
	CycleDuration prometheus.Histogram

	// Per-adapter metrics
	AdapterFailures  *prometheus.CounterVec // labels: source, stage (fetch|commit)
	SamplesCommitted *prometheus.CounterVec // label: source
	BatchesCommitted *prometheus.CounterVec // label: source

	// Health metrics
	LastSuccessfulCommit prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a new Metrics instance registered on its own registry.
// Handler() serves that registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "liquidity_watch"
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Number of completed collection cycles.",
		}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of a full collection cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		AdapterFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adapter_failures_total",
			Help:      "Adapter failures by source and stage.",
		}, []string{"source", "stage"}),
		SamplesCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_committed_total",
			Help:      "Liquidity samples committed by source.",
		}, []string{"source"}),
		BatchesCommitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_committed_total",
			Help:      "Adapter batches committed by source.",
		}, []string{"source"}),
		LastSuccessfulCommit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_successful_commit_timestamp_seconds",
			Help:      "Unix time of the most recent successful batch commit.",
		}),
	}
	m.registry = registry
	return m
}

// Handler returns an http.Handler serving this instance's metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
