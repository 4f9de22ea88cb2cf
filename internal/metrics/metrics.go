// Package metrics provides the centralized Prometheus registry.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gridiron"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ComputationPassesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "computation_passes_total",
		Help:      "Total number of computation passes by report and status",
	}, []string{"report", "status"})
	TeamsComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "teams_computed_total",
		Help:      "Total number of team records produced",
	}, []string{"report"})
	TeamsExcludedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "teams_excluded_total",
		Help:      "Total number of teams omitted from a report",
	}, []string{"report", "reason"})
	MalformedInputsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "malformed_inputs_total",
		Help:      "Total number of upstream values coerced to missing",
	}, []string{"entity", "field"})
)

// Gauge metrics
var (
	CacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_hit_ratio",
		Help:      "Report cache hit ratio",
	})
	LastRefreshTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful dataset refresh",
	})
	DatasetRecords = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_records",
		Help:      "Records in the currently loaded dataset",
	}, []string{"entity"})
)

// Histogram metrics
var (
	ComputationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "computation_duration_seconds",
		Help:      "Duration of a computation pass",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"report"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ComputationPassesTotal)
		registry.MustRegister(TeamsComputedTotal)
		registry.MustRegister(TeamsExcludedTotal)
		registry.MustRegister(MalformedInputsTotal)

		registry.MustRegister(CacheHitRatio)
		registry.MustRegister(LastRefreshTimestamp)
		registry.MustRegister(DatasetRecords)

		registry.MustRegister(ComputationDuration)

		registry.MustRegister(SourceRequestsTotal)
		registry.MustRegister(SourceRequestDuration)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(APIRequestsTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordComputation records a finished computation pass.
func RecordComputation(report, status string, durationSeconds float64, computed int) {
	ComputationPassesTotal.WithLabelValues(report, status).Inc()
	ComputationDuration.WithLabelValues(report).Observe(durationSeconds)
	TeamsComputedTotal.WithLabelValues(report).Add(float64(computed))
}

// RecordTeamExcluded records a team omitted from a report.
func RecordTeamExcluded(report, reason string) {
	TeamsExcludedTotal.WithLabelValues(report, reason).Inc()
}

// RecordMalformedInput records an upstream value coerced to missing.
func RecordMalformedInput(entity, field string) {
	MalformedInputsTotal.WithLabelValues(entity, field).Inc()
}

// UpdateCacheHitRatio sets the report cache hit ratio.
func UpdateCacheHitRatio(ratio float64) {
	CacheHitRatio.Set(ratio)
}

// RecordRefresh records a successful dataset refresh.
func RecordRefresh(unixSeconds float64, counts map[string]int) {
	LastRefreshTimestamp.Set(unixSeconds)
	for entity, n := range counts {
		DatasetRecords.WithLabelValues(entity).Set(float64(n))
	}
}
