// internal/observability/metrics.go
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "claude_restore"

// Metrics holds every collector the service exposes. Collectors are
// registered on the registry passed to NewMetrics.
type Metrics struct {
	registry *prometheus.Registry

	// requestsTotal counts HTTP requests.
	// Labels: method, route (gin route pattern), status
	requestsTotal *prometheus.CounterVec

	// requestDuration measures HTTP handling latency.
	// Labels: method, route
	requestDuration *prometheus.HistogramVec

	// restoreFiles counts files handled by restores.
	// Labels: outcome (restored, skipped, failed)
	restoreFiles *prometheus.CounterVec

	// archiveOps counts export and import operations.
	// Labels: direction (export, import), scope (global, project, conversation, checkpoint), outcome (success, error)
	archiveOps *prometheus.CounterVec

	// archiveFiles counts files written into or read out of bundles.
	// Labels: direction, scope
	archiveFiles *prometheus.CounterVec
}

// NewMetrics creates the collectors on reg. A nil reg gets a fresh registry.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		restoreFiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "restore",
			Name:      "files_total",
			Help:      "Files handled by checkpoint restores by outcome",
		}, []string{"outcome"}),
		archiveOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "operations_total",
			Help:      "Export and import operations by scope and outcome",
		}, []string{"direction", "scope", "outcome"}),
		archiveFiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "archive",
			Name:      "files_total",
			Help:      "Files packaged into or unpacked from bundles",
		}, []string{"direction", "scope"}),
	}
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one handled HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRestore records the per-file outcome of one restore
func (m *Metrics) ObserveRestore(restored, skipped, failed int) {
	m.restoreFiles.WithLabelValues("restored").Add(float64(restored))
	m.restoreFiles.WithLabelValues("skipped").Add(float64(skipped))
	m.restoreFiles.WithLabelValues("failed").Add(float64(failed))
}

// ObserveArchive records one export or import
func (m *Metrics) ObserveArchive(direction, scope string, files int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.archiveOps.WithLabelValues(direction, scope, outcome).Inc()
	m.archiveFiles.WithLabelValues(direction, scope).Add(float64(files))
}
