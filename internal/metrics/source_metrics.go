package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream data source and API metrics
var (
	SourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_requests_total",
		Help:      "Total number of upstream data source requests by endpoint and status",
	}, []string{"endpoint", "status"})

	SourceRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_request_duration_seconds",
		Help:      "Latency of upstream data source requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of data source circuit breaker trips",
	})

	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Total number of leaderboard API requests",
	}, []string{"route", "code"})
)

// RecordSourceRequest records one upstream request.
func RecordSourceRequest(endpoint, status string, durationSeconds float64) {
	SourceRequestsTotal.WithLabelValues(endpoint, status).Inc()
	SourceRequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordCircuitBreakerTrip records a circuit breaker opening.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordAPIRequest records a served API request.
func RecordAPIRequest(route, code string) {
	APIRequestsTotal.WithLabelValues(route, code).Inc()
}
