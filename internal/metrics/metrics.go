package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldesk",
			Name:      "http_requests_total",
			Help:      "Portal HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldesk",
			Name:      "upstream_requests_total",
			Help:      "Upstream API calls by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fieldesk",
			Name:      "upstream_request_seconds",
			Help:      "Upstream API call latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	viewOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fieldesk",
			Name:      "booking_view_operations_total",
			Help:      "Booking view-model operations by name and outcome.",
		},
		[]string{"op", "outcome"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, upstreamRequests, upstreamLatency, viewOps)
	})
}

// IncHTTP counts one portal HTTP request.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// ObserveUpstream records one upstream call's outcome and latency.
func ObserveUpstream(endpoint, outcome string, dur time.Duration) {
	upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
	upstreamLatency.WithLabelValues(endpoint).Observe(dur.Seconds())
}

// IncViewOp counts one view-model operation.
func IncViewOp(op, outcome string) {
	viewOps.WithLabelValues(op, outcome).Inc()
}
