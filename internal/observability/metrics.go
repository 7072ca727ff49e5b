// Package observability provides Prometheus metrics for the API server.
package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// latencyHistogramBoundaries are the buckets (seconds) for request duration histograms.
var latencyHistogramBoundaries = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5}

// HubMetrics is the single metrics interface for the API server.
type HubMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
}

// Metrics records HTTP request metrics on a private Prometheus registry.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var _ HubMetrics = (*Metrics)(nil)

// NewMetrics creates the metrics instruments and returns them together with
// the HTTP handler that exposes the registry for scraping.
func NewMetrics() (*Metrics, http.Handler) {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		requestCount: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total HTTP requests",
		}, []string{"method", "route", "status_class"}),
		requestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: latencyHistogramBoundaries,
		}, []string{"method", "route"}),
	}

	return m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// RecordRequest records one completed request. The route must already be
// normalized so label cardinality stays bounded.
func (m *Metrics) RecordRequest(_ context.Context, method, route, statusClass string, duration time.Duration) {
	m.requestCount.WithLabelValues(method, route, statusClass).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
