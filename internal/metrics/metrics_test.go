package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	if m.Counter != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordComputation(t *testing.T) {
	InitRegistry()

	before := value(t, TeamsComputedTotal.WithLabelValues("sos"))
	assert.NotPanics(t, func() {
		RecordComputation("sos", "success", 0.02, 133)
	})
	assert.Equal(t, before+133, value(t, TeamsComputedTotal.WithLabelValues("sos")))
}

func TestRecordTeamExcludedAndMalformed(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordTeamExcluded("luck", "no_completed_games")
		RecordMalformedInput("game", "home_points")
	})
	assert.GreaterOrEqual(t, value(t, MalformedInputsTotal.WithLabelValues("game", "home_points")), 1.0)
}

func TestGauges(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		ratio float64
	}{
		{"empty", 0},
		{"half", 0.5},
		{"all", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateCacheHitRatio(tt.ratio)
			assert.Equal(t, tt.ratio, value(t, CacheHitRatio))
		})
	}

	RecordRefresh(1700000000, map[string]int{"games": 850})
	assert.Equal(t, 1700000000.0, value(t, LastRefreshTimestamp))
	assert.Equal(t, 850.0, value(t, DatasetRecords.WithLabelValues("games")))
}

func TestSourceMetrics(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSourceRequest("/games", "200", 0.12)
		RecordCircuitBreakerTrip()
		RecordAPIRequest("/api/metrics/{season}", "200")
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	RecordComputation("metrics", "success", 0.01, 1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gridiron_computation_passes_total")
}
