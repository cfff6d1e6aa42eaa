package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Login exchanges by outcome.
	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_logins_total",
			Help: "Total number of login exchanges (by result).",
		},
		[]string{"result"}, // ok | auth_failed | malformed | error
	)

	LogoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_logouts_total",
			Help: "Total number of logouts.",
		},
	)

	// Tracks the number of outbound API calls made with session headers.
	OutboundRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_outbound_requests_total",
			Help: "Total number of outbound API requests (by endpoint, method and status).",
		},
		[]string{"endpoint", "method", "status"},
	)

	OutboundRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "session_outbound_request_duration_seconds",
			Help:    "Duration of outbound API requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms → ~16s
		},
		[]string{"endpoint", "method"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_events_published_total",
			Help: "Number of session lifecycle events published (by subject and result).",
		},
		[]string{"subject", "result"}, // result = "ok" | "error"
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_store_errors_total",
			Help: "Credential store backend failures.",
		},
		[]string{"backend", "op"},
	)
)

// ObserveDuration records the time taken for a function and updates the given histogram.
func ObserveDuration(v any, start time.Time, labels ...string) {
	duration := time.Since(start).Seconds()

	switch metric := v.(type) {
	case *prometheus.HistogramVec:
		metric.WithLabelValues(labels...).Observe(duration)
	case *prometheus.SummaryVec:
		metric.WithLabelValues(labels...).Observe(duration)
	default:
		// silently ignore counters; they're not meant for duration tracking
	}
}

func IncLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

func IncOutbound(endpoint, method, status string) {
	OutboundRequestsTotal.WithLabelValues(endpoint, method, status).Inc()
}

func IncEvent(subject, result string) {
	EventsPublished.WithLabelValues(subject, result).Inc()
}

func IncStoreError(backend, op string) {
	StoreErrors.WithLabelValues(backend, op).Inc()
}
