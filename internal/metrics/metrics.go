// Package metrics exposes Prometheus collectors for the prime server. The
// stats aggregator stays the source of truth for the stats command; these
// collectors mirror it for scraping and add request latency buckets.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	requestDuration   prometheus.Histogram
	activeSessions    prometheus.Gauge
	sessionsCompleted prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "primed",
			Name:      "requests_total",
			Help:      "Completed compute requests by command.",
		}, []string{"command"}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "primed",
			Name:      "request_duration_seconds",
			Help:      "Wall-clock duration of compute requests.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "primed",
			Name:      "active_sessions",
			Help:      "Currently connected client sessions.",
		}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "primed",
			Name:      "sessions_completed_total",
			Help:      "Client sessions that have terminated.",
		}),
	}
	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.activeSessions,
		m.sessionsCompleted,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveRequest records one completed compute request. Nil-safe so callers
// can run without metrics wired.
func (m *Metrics) ObserveRequest(command string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(command).Inc()
	m.requestDuration.Observe(seconds)
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
	m.sessionsCompleted.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
