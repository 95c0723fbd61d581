package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackendMetrics records calls made to the remote pharmacy backend.
type BackendMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewBackendMetrics registers the backend client metrics on the provided registerer.
func NewBackendMetrics(reg prometheus.Registerer) *BackendMetrics {
	if reg == nil {
		return &BackendMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of backend API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Backend API calls by response status class.",
	}, []string{"endpoint", "method", "status"})
	reg.MustRegister(duration, requests)
	return &BackendMetrics{duration: duration, requests: requests}
}

// Observe records one finished call. A zero status means the request never got a response.
func (b *BackendMetrics) Observe(endpoint, method string, status int, elapsed time.Duration) {
	if b == nil || b.duration == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	method = normalizeLabel(method)
	b.duration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
	b.requests.WithLabelValues(endpoint, method, statusClass(status)).Inc()
}

func statusClass(status int) string {
	if status <= 0 {
		return "transport_error"
	}
	return strconv.Itoa(status/100) + "xx"
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
