package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/creatorpulse/hub/internal/observability"
)

var (
	// UUID-like path segment: job ids (e.g. 0190d2a0-5b3e-7c1f-9a4b-446655440000).
	uuidSegmentRegex = regexp.MustCompile(`/[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}(/|$)`)
	// Content-hash path segment: dataset ids are 64 hex chars.
	hashSegmentRegex = regexp.MustCompile(`/[0-9a-fA-F]{64}(/|$)`)
)

// Metrics returns middleware that records HTTP request count and duration via HubMetrics.
// When metrics is nil, recording is skipped. Put Metrics outermost so duration is full request time.
func Metrics(metrics observability.HubMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			duration := time.Since(start)
			route := normalizeRoute(r.URL.Path)
			statusClass := statusToClass(recorder.status)
			metrics.RecordRequest(r.Context(), r.Method, route, statusClass, duration)
		})
	}
}

// normalizeRoute replaces id-like path segments with {id} to bound cardinality.
func normalizeRoute(path string) string {
	path = hashSegmentRegex.ReplaceAllString(path, "/{id}$1")
	return uuidSegmentRegex.ReplaceAllString(path, "/{id}$1")
}

// statusToClass maps HTTP status code to 1xx, 2xx, 4xx, 5xx.
func statusToClass(status int) string {
	if status >= 500 {
		return "5xx"
	}
	if status >= 400 {
		return "4xx"
	}
	if status >= 300 {
		return "3xx"
	}
	if status >= 200 {
		return "2xx"
	}
	if status >= 100 {
		return "1xx"
	}
	return "unknown"
}
