package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/datasource"
	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/service"
)

// newSnapshotServer serves leaderboards computed from the JSON snapshots in
// testdata through the real loader and services.
func newSnapshotServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	builder := adapter.NewBuilder(adapter.NewNormalizer(log), []string{"DraftKings"}, log)
	loader := datasource.NewSeasonLoader(
		datasource.NewFileSource("testdata/snapshots", true),
		"testdata/ratings/{season}.csv",
		builder,
		log,
	)
	boards := service.NewLeaderboardService(loader, loader.Name(), service.NewMetricsService(service.DefaultOptions(), log), log)

	ts := httptest.NewServer(New(Config{Logger: log, Leaderboards: boards}).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestSnapshotLeaderboards(t *testing.T) {
	ts := newSnapshotServer(t)

	var sos LeaderboardResponse[models.ScheduleStrength]
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/leaderboards/strength-of-schedule/2024", &sos))
	require.Len(t, sos.Teams, 3)
	for i, e := range sos.Teams {
		assert.Equal(t, i+1, e.Team.Rank)
		assert.NotEmpty(t, e.Background)
	}

	var luck LeaderboardResponse[models.LuckBreakdown]
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/leaderboards/luck/2024", &luck))
	require.Len(t, luck.Teams, 3)

	var rows models.Report[models.MetricRecord]
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/metrics/2024", &rows))
	byTeam := make(map[string]models.MetricRecord, len(rows.Teams))
	for _, r := range rows.Teams {
		byTeam[r.Team] = r
	}
	require.Contains(t, byTeam, "Indiana")
	assert.Equal(t, 2, byTeam["Indiana"].ActualWins)
	assert.Equal(t, 0, byTeam["Indiana"].GamesRemaining)
	assert.Equal(t, 1, byTeam["Purdue"].ActualLosses)
	assert.Equal(t, 1, byTeam["Purdue"].GamesRemaining)
}

func TestSnapshotConferenceOnly(t *testing.T) {
	ts := newSnapshotServer(t)

	var rows models.Report[models.MetricRecord]
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/metrics/2024?conferenceOnly=true", &rows))
	for _, r := range rows.Teams {
		if r.Team == "Indiana" {
			assert.Equal(t, 1, r.GamesPlayed)
		}
	}
}

func TestSnapshotMissingSeason(t *testing.T) {
	ts := newSnapshotServer(t)

	var body ErrorResponse
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/api/metrics/2019", &body))
}
