package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/metrics"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func newTestServer(db DatabasePinger, checks map[string]CheckFunc) *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(Config{
		ServiceName: "gridiron-metrics",
		Version:     "test",
		MetricsPath: "/metrics",
		Logger:      log,
		DB:          db,
		Checks:      checks,
	})
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	h := newTestServer(nil, nil).Handler()

	for _, path := range []string{"/health", "/live"} {
		rec := get(t, h, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "gridiron-metrics", resp.Service)
	}
}

func TestReady(t *testing.T) {
	loaded := errors.New("season 2024 not loaded")
	s := newTestServer(fakeDB{}, map[string]CheckFunc{
		"dataset": func(context.Context) error { return loaded },
	})
	h := s.Handler()

	rec := get(t, h, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "not_ready", resp.Checks["service"])
	assert.Equal(t, "ok", resp.Checks["database"])
	assert.Contains(t, resp.Checks["dataset"], "not loaded")

	s.SetReady(true)
	loaded = nil
	rec = get(t, h, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyDatabaseDown(t *testing.T) {
	s := newTestServer(fakeDB{err: errors.New("connection refused")}, nil)
	s.SetReady(true)

	rec := get(t, s.Handler(), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.InitRegistry()
	metrics.RecordComputation("sos", "success", 0.1, 3)

	rec := get(t, newTestServer(nil, nil).Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "gridiron_computation_passes_total")
}
