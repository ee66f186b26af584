// Package metric provides Prometheus metrics for comparison runs: query
// traffic against the two stores and per-entity comparison outcomes.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Comparison outcome label values.
const (
	OutcomeMatch    = "match"
	OutcomeMismatch = "mismatch"
	OutcomeError    = "error"
)

// Metrics contains all validator metrics.
type Metrics struct {
	QueriesTotal   *prometheus.CounterVec
	QueryErrors    *prometheus.CounterVec
	QueryDuration  *prometheus.HistogramVec
	TriplesFetched *prometheus.CounterVec

	EntitiesCompared *prometheus.CounterVec
	RunsTotal        *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all validator metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lindas_validator",
				Subsystem: "sparql",
				Name:      "queries_total",
				Help:      "Total number of SPARQL queries issued",
			},
			[]string{"store", "kind"},
		),

		QueryErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lindas_validator",
				Subsystem: "sparql",
				Name:      "query_errors_total",
				Help:      "Total number of failed SPARQL queries",
			},
			[]string{"store", "kind"},
		),

		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lindas_validator",
				Subsystem: "sparql",
				Name:      "query_duration_seconds",
				Help:      "SPARQL query round-trip duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"store", "kind"},
		),

		TriplesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lindas_validator",
				Subsystem: "sparql",
				Name:      "triples_fetched_total",
				Help:      "Total number of triples parsed from CONSTRUCT responses",
			},
			[]string{"store"},
		),

		EntitiesCompared: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lindas_validator",
				Subsystem: "compare",
				Name:      "entities_total",
				Help:      "Entities deep-compared, by outcome (match, mismatch, error)",
			},
			[]string{"mode", "outcome"},
		),

		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lindas_validator",
				Subsystem: "compare",
				Name:      "runs_total",
				Help:      "Comparison runs, by mode and terminal state",
			},
			[]string{"mode", "state"},
		),
	}
}

// Register registers all metrics with the given registerer.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.QueriesTotal,
		m.QueryErrors,
		m.QueryDuration,
		m.TriplesFetched,
		m.EntitiesCompared,
		m.RunsTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordQuery records one completed SPARQL query.
func (m *Metrics) RecordQuery(store, kind string, d time.Duration, err error) {
	m.QueriesTotal.WithLabelValues(store, kind).Inc()
	m.QueryDuration.WithLabelValues(store, kind).Observe(d.Seconds())
	if err != nil {
		m.QueryErrors.WithLabelValues(store, kind).Inc()
	}
}

// RecordTriples records triples parsed from one CONSTRUCT response.
func (m *Metrics) RecordTriples(store string, n int) {
	m.TriplesFetched.WithLabelValues(store).Add(float64(n))
}

// RecordEntity records one per-entity comparison outcome.
func (m *Metrics) RecordEntity(mode, outcome string) {
	m.EntitiesCompared.WithLabelValues(mode, outcome).Inc()
}

// RecordRun records a finished run with its terminal state.
func (m *Metrics) RecordRun(mode, state string) {
	m.RunsTotal.WithLabelValues(mode, state).Inc()
}

// Handler returns an HTTP handler exposing the registry, for the optional
// metrics listener used during long whole-graph runs.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
