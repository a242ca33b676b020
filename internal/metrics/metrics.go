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
			Namespace: "rentacar",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		},
		[]string{"endpoint", "code"},
	)

	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "upstream_calls_total",
			Help:      "Calls to the reservations API by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rentacar",
			Name:      "upstream_call_duration_seconds",
			Help:      "Latency of calls to the reservations API.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	availabilityFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rentacar",
			Name:      "availability_fallbacks_total",
			Help:      "Availability computations served without reservation data.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, upstreamCalls, upstreamLatency, availabilityFallbacks)
	})
}

func IncHTTP(endpoint, code string) {
	httpRequests.WithLabelValues(endpoint, code).Inc()
}

// ObserveUpstream records one upstream call.
func ObserveUpstream(operation, outcome string, dur time.Duration) {
	upstreamCalls.WithLabelValues(operation, outcome).Inc()
	upstreamLatency.WithLabelValues(operation).Observe(dur.Seconds())
}

func IncAvailabilityFallback() {
	availabilityFallbacks.Inc()
}
