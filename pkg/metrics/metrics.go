// Package metrics provides Prometheus metrics for trend-engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the Prometheus registry and the engine's instruments.
// All record methods are safe on a nil Manager so callers never need to
// guard for disabled metrics.
type Manager struct {
	registry *prometheus.Registry

	eventsInserted  prometheus.Counter
	eventsDuplicate prometheus.Counter
	runsTotal       *prometheus.CounterVec
	runDuration     prometheus.Histogram
	companiesRanked *prometheus.GaugeVec
	rowsPurged      prometheus.Counter
}

// NewManager creates a metrics manager with its own registry.
func NewManager() *Manager {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Manager{
		registry: registry,
		eventsInserted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "trend_engine",
			Name:      "events_inserted_total",
			Help:      "Raw events newly inserted by the event store.",
		}),
		eventsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "trend_engine",
			Name:      "events_duplicate_total",
			Help:      "Raw events skipped because their fingerprint already existed.",
		}),
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "trend_engine",
			Name:      "aggregation_runs_total",
			Help:      "Aggregation runs by outcome.",
		}, []string{"status"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "trend_engine",
			Name:      "aggregation_run_duration_seconds",
			Help:      "Wall-clock duration of a full aggregation run.",
			Buckets:   prometheus.DefBuckets,
		}),
		companiesRanked: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "trend_engine",
			Name:      "companies_ranked",
			Help:      "Companies ranked in the most recent run, per window.",
		}, []string{"window"}),
		rowsPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "trend_engine",
			Name:      "retention_sweeps_total",
			Help:      "Retention sweeps executed.",
		}),
	}
}

// RecordIngest records the outcome of one StoreBatch call.
func (m *Manager) RecordIngest(inserted, duplicate int) {
	if m == nil {
		return
	}
	m.eventsInserted.Add(float64(inserted))
	m.eventsDuplicate.Add(float64(duplicate))
}

// RecordRun records a finished aggregation run.
func (m *Manager) RecordRun(duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.Observe(duration.Seconds())
}

// SetCompaniesRanked records how many companies were ranked for a window.
func (m *Manager) SetCompaniesRanked(window string, count int) {
	if m == nil {
		return
	}
	m.companiesRanked.WithLabelValues(window).Set(float64(count))
}

// RecordSweep records a completed retention sweep.
func (m *Manager) RecordSweep() {
	if m == nil {
		return
	}
	m.rowsPurged.Inc()
}

// Handler returns the HTTP handler exposing the registry.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
