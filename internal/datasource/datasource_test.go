package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/config"
)

const (
	teamsJSON = `[
		{"school": "Indiana", "conference": "Big Ten", "classification": "fbs"},
		{"school": "Purdue", "conference": "Big Ten", "classification": "fbs"}
	]`
	gamesJSON = `[
		{"id": 401, "season": 2024, "week": 12, "seasonType": "regular", "neutralSite": false,
		 "conferenceGame": true, "completed": true,
		 "homeTeam": "Indiana", "homeConference": "Big Ten", "homeClassification": "fbs", "homePoints": 66,
		 "awayTeam": "Purdue", "awayConference": "Big Ten", "awayClassification": "fbs", "awayPoints": 0,
		 "homePostgameWinProbability": 0.999, "awayPostgameWinProbability": 0.001},
		{"id": 402, "season": 2024, "week": 13, "seasonType": "regular", "completed": false,
		 "homeTeam": "Purdue", "awayTeam": "Indiana"}
	]`
	linesJSON = `[
		{"id": 401, "season": 2024, "week": 12, "homeTeam": "Indiana", "awayTeam": "Purdue",
		 "lines": [
			{"provider": "Bovada", "spread": "-30", "homeMoneyline": -6000, "awayMoneyline": 2000},
			{"provider": "DraftKings", "spread": "-28.5", "homeMoneyline": -5000, "awayMoneyline": 1800}
		 ]}
	]`
	statsJSON = `[
		{"id": 401, "teams": [
			{"school": "Indiana", "homeAway": "home", "points": 66, "stats": [
				{"category": "fumblesRecovered", "stat": "1"},
				{"category": "passesIntercepted", "stat": "2"},
				{"category": "totalFumbles", "stat": "1"}
			]},
			{"school": "Purdue", "homeAway": "away", "points": 0, "stats": [
				{"category": "fumblesLost", "stat": "1"},
				{"category": "interceptions", "stat": "2"},
				{"category": "totalFumbles", "stat": "2"}
			]}
		]}
	]`
	ratingsCSV = "Team Name,Power Rating,Offense Rating,Defense Rating,Strength of Schedule\n" +
		"Indiana,24.3,12.1,12.2,-1.5\n" +
		"Purdue,-12.8,-6.0,-6.8,4.2\n" +
		"\n" +
		"VERIFICATION (FBS AVERAGES):,0.0,0.0,0.0,0.0\n" +
		"New FBS Averages:,0.1,0.0,0.1,0.0\n"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           2 * time.Second,
		MaxRetries:        0,
		RetryWaitMin:      time.Millisecond,
		RetryWaitMax:      time.Millisecond,
		RateLimit:         1000,
		CircuitBreakerMax: 2,
	}
}

func newCFBDServer(t *testing.T, statsRequests *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "2024", r.URL.Query().Get("year"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/teams":
			io.WriteString(w, teamsJSON)
		case "/games":
			assert.Equal(t, "both", r.URL.Query().Get("seasonType"))
			io.WriteString(w, gamesJSON)
		case "/lines":
			io.WriteString(w, linesJSON)
		case "/games/teams":
			atomic.AddInt32(statsRequests, 1)
			assert.Equal(t, "12", r.URL.Query().Get("week"))
			io.WriteString(w, statsJSON)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestBuilder() *adapter.Builder {
	log := quietLogger()
	return adapter.NewBuilder(adapter.NewNormalizer(log), nil, log)
}

func TestCFBDFetchSeason(t *testing.T) {
	var statsRequests int32
	srv := newCFBDServer(t, &statsRequests)
	defer srv.Close()

	ratingsFile := filepath.Join(t.TempDir(), "ratings_{season}.csv")
	require.NoError(t, os.WriteFile(RatingsPath(ratingsFile, 2024), []byte(ratingsCSV), 0o600))

	client := NewCFBDClient(NewRateLimitedHTTPClient(testClientConfig(), CFBDSourceName, quietLogger()), srv.URL, "test-key", true, quietLogger())
	loader := NewSeasonLoader(client, ratingsFile, newTestBuilder(), quietLogger())

	d, err := loader.FetchSeason(context.Background(), 2024)
	require.NoError(t, err)

	// Only week 12 has a completed game.
	assert.Equal(t, int32(1), atomic.LoadInt32(&statsRequests))

	assert.Len(t, d.Games, 2)
	line := d.Line(401)
	require.NotNil(t, line)
	assert.Equal(t, "DraftKings", line.Provider)
	require.NotNil(t, line.Spread)
	assert.Equal(t, -28.5, *line.Spread)

	r, ok := d.Rating("Indiana")
	require.True(t, ok)
	assert.Equal(t, 24.3, r.PowerRating)
	assert.Len(t, d.Ratings, 2)

	purdue, ok := d.StatsFor(401, "Purdue")
	require.True(t, ok)
	assert.Equal(t, 2, purdue.InterceptionsThrown)
	assert.Equal(t, 1, purdue.FumblesLost)
	indiana, ok := d.StatsFor(401, "Indiana")
	require.True(t, ok)
	assert.Equal(t, 2, indiana.Interceptions)
}

func TestCFBDAuthenticationFailure(t *testing.T) {
	var n int32
	srv := newCFBDServer(t, &n)
	defer srv.Close()

	client := NewCFBDClient(NewRateLimitedHTTPClient(testClientConfig(), CFBDSourceName, quietLogger()), srv.URL, "wrong", true, quietLogger())

	_, err := client.FetchRaw(context.Background(), 2024)
	require.Error(t, err)
	assert.Equal(t, ErrCodeAuthenticationFailed, ErrorCode(err))
}

func TestCFBDDisabled(t *testing.T) {
	client := NewCFBDClient(nil, "", "", false, quietLogger())

	_, err := client.FetchRaw(context.Background(), 2024)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, ErrCodeDisabled, ErrorCode(err))
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewRateLimitedHTTPClient(testClientConfig(), "test", quietLogger())
	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	assert.True(t, c.IsOpen())

	_, err := c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	c.Reset()
	assert.False(t, c.IsOpen())
}

func TestCircuitBreakerHalfOpensAfterCooldown(t *testing.T) {
	var calls int32
	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := testClientConfig()
	cfg.CircuitBreakerCooldown = time.Minute
	c := NewRateLimitedHTTPClient(cfg, "test", quietLogger())
	now := time.Now()
	c.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, err := c.Get(context.Background(), srv.URL)
		require.Error(t, err)
	}
	require.True(t, c.IsOpen())

	_, err := c.Get(context.Background(), srv.URL)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	// A failed trial keeps the breaker open for another cool-down.
	now = now.Add(2 * time.Minute)
	_, err = c.Get(context.Background(), srv.URL)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.True(t, c.IsOpen())

	_, err = c.Get(context.Background(), srv.URL)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// A successful trial closes it without a manual reset.
	now = now.Add(2 * time.Minute)
	healthy.Store(true)
	resp, err := c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, c.IsOpen())

	resp, err = c.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestHTTPClientConfigFromCooldown(t *testing.T) {
	assert.Equal(t, 2*time.Minute, HTTPClientConfigFrom(config.DataSourceConfig{}).CircuitBreakerCooldown)
	assert.Equal(t, 30*time.Second, HTTPClientConfigFrom(config.DataSourceConfig{CircuitBreakerCooldownSeconds: 30}).CircuitBreakerCooldown)
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewRateLimitedHTTPClient(testClientConfig(), "test", quietLogger())
	for i := 0; i < 3; i++ {
		resp, err := c.Get(context.Background(), srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	}
	assert.False(t, c.IsOpen())
}

func TestReadRatingsCSV(t *testing.T) {
	recs, err := ReadRatingsCSV(strings.NewReader(ratingsCSV))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Indiana", recs[0][RatingsTeamColumn])
	assert.Equal(t, "-12.8", recs[1]["Power Rating"])

	recs, err = ReadRatingsCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFileSource(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "2024")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "games.json"), []byte(gamesJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lines.json"), []byte(linesJSON), 0o600))

	src := NewFileSource(root, true)
	raw, err := src.FetchRaw(context.Background(), 2024)
	require.NoError(t, err)
	assert.Len(t, raw.Games, 2)
	assert.Len(t, raw.Lines, 1)
	assert.Empty(t, raw.Stats)

	_, err = src.FetchRaw(context.Background(), 2019)
	require.Error(t, err)
	assert.Equal(t, ErrCodeNotFound, ErrorCode(err))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "stats.json"), []byte("{not json"), 0o600))
	_, err = src.FetchRaw(context.Background(), 2024)
	assert.Equal(t, ErrCodeInvalidData, ErrorCode(err))
}

func TestFactory(t *testing.T) {
	f := NewFactory(quietLogger())

	_, err := f.NewDataSource(config.DataSourceConfig{Name: "espn"})
	assert.Error(t, err)

	_, err = f.NewDataSource(config.DataSourceConfig{Name: CFBDSourceName, BaseURL: DefaultCFBDBaseURL})
	assert.Error(t, err)

	src, err := f.NewDataSource(config.DataSourceConfig{Name: CFBDSourceName, BaseURL: DefaultCFBDBaseURL, APIKey: "k", Enabled: true, RateLimitPerSecond: 5, TimeoutSeconds: 10})
	require.NoError(t, err)
	assert.Equal(t, CFBDSourceName, src.Name())
	assert.True(t, src.IsEnabled())

	src, err = f.NewDataSource(config.DataSourceConfig{Name: FileSourceName, BaseURL: "file:///var/lib/gridiron/snapshots"})
	require.NoError(t, err)
	fs, ok := src.(*FileSource)
	require.True(t, ok)
	assert.Equal(t, "/var/lib/gridiron/snapshots", fs.root)
	assert.False(t, fs.IsEnabled())
}

func TestSeasonLoaderWithoutGames(t *testing.T) {
	src := NewFileSource(t.TempDir(), true)
	loader := NewSeasonLoader(src, "", newTestBuilder(), quietLogger())

	_, err := loader.LoadSeason(context.Background(), 2024)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrDisabled))
}
