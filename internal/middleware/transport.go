package middleware

import (
	"net/http"
	"strconv"
	"time"

	"parkwait-collector/internal/metrics"
)

// statusError is the status_code label for requests that never got a response
const statusError = "error"

// InstrumentedTransport wraps an http.RoundTripper with Prometheus metrics
type InstrumentedTransport struct {
	next      http.RoundTripper
	operation string
}

// NewInstrumentedTransport records request counts and latency for every
// round trip under the given operation label. A nil next uses http.DefaultTransport.
func NewInstrumentedTransport(operation string, next http.RoundTripper) *InstrumentedTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &InstrumentedTransport{next: next, operation: operation}
}

// RoundTrip implements http.RoundTripper
func (t *InstrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	resp, err := t.next.RoundTrip(req)

	// Record metrics
	duration := time.Since(start).Seconds()
	statusStr := statusError
	if err == nil {
		statusStr = strconv.Itoa(resp.StatusCode)
	}
	metrics.APIRequestsTotal.WithLabelValues(t.operation, statusStr).Inc()
	metrics.APIRequestDuration.WithLabelValues(t.operation, statusStr).Observe(duration)

	return resp, err
}
