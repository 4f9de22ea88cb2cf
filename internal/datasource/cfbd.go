package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/metrics"
)

// CFBDSourceName identifies the College Football Data API.
const CFBDSourceName = "cfbd"

// DefaultCFBDBaseURL is the public API root.
const DefaultCFBDBaseURL = "https://api.collegefootballdata.com"

// statsFetchConcurrency bounds parallel per-week box score requests; the
// shared rate limiter still applies.
const statsFetchConcurrency = 3

// CFBDClient implements DataSource for the College Football Data API
type CFBDClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *logrus.Logger
	ingestLog  *logger.IngestionLogger
}

// NewCFBDClient creates a new College Football Data API client
func NewCFBDClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, log *logrus.Logger) *CFBDClient {
	if baseURL == "" {
		baseURL = DefaultCFBDBaseURL
	}
	return &CFBDClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     log,
		ingestLog:  logger.NewIngestionLogger(log),
	}
}

// Name returns the name of the data source
func (c *CFBDClient) Name() string {
	return CFBDSourceName
}

// IsEnabled returns whether this data source is currently enabled
func (c *CFBDClient) IsEnabled() bool {
	return c.enabled
}

// FetchTeams retrieves every team active in the season.
func (c *CFBDClient) FetchTeams(ctx context.Context, season int) ([]adapter.Record, error) {
	return c.fetch(ctx, "/teams", season, url.Values{"year": {strconv.Itoa(season)}})
}

// FetchGames retrieves regular season and postseason games.
func (c *CFBDClient) FetchGames(ctx context.Context, season int) ([]adapter.Record, error) {
	return c.fetch(ctx, "/games", season, url.Values{
		"year":       {strconv.Itoa(season)},
		"seasonType": {"both"},
	})
}

// FetchLines retrieves every provider's lines, one record per game.
func (c *CFBDClient) FetchLines(ctx context.Context, season int) ([]adapter.Record, error) {
	return c.fetch(ctx, "/lines", season, url.Values{
		"year":       {strconv.Itoa(season)},
		"seasonType": {"both"},
	})
}

// FetchGameStats retrieves box score stats for one week.
func (c *CFBDClient) FetchGameStats(ctx context.Context, season, week int, seasonType string) ([]adapter.Record, error) {
	return c.fetch(ctx, "/games/teams", season, url.Values{
		"year":       {strconv.Itoa(season)},
		"week":       {strconv.Itoa(week)},
		"seasonType": {seasonType},
	})
}

// FetchRaw retrieves the whole season. Box scores are requested per week for
// every week that has a completed game.
func (c *CFBDClient) FetchRaw(ctx context.Context, season int) (adapter.RawDataset, error) {
	var raw adapter.RawDataset
	if !c.enabled {
		return raw, NewDataSourceError(CFBDSourceName, ErrCodeDisabled, "source disabled in configuration", ErrDisabled)
	}

	var err error
	if raw.Teams, err = c.FetchTeams(ctx, season); err != nil {
		return raw, err
	}
	if raw.Games, err = c.FetchGames(ctx, season); err != nil {
		return raw, err
	}
	if raw.Lines, err = c.FetchLines(ctx, season); err != nil {
		return raw, err
	}
	if raw.Stats, err = c.fetchAllStats(ctx, season, raw.Games); err != nil {
		return raw, err
	}
	return raw, nil
}

type weekKey struct {
	week       int
	seasonType string
}

func (c *CFBDClient) fetchAllStats(ctx context.Context, season int, games []adapter.Record) ([]adapter.Record, error) {
	weeks := completedWeeks(games)

	var mu sync.Mutex
	var out []adapter.Record
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsFetchConcurrency)
	for _, wk := range weeks {
		wk := wk
		g.Go(func() error {
			recs, err := c.FetchGameStats(gctx, season, wk.week, wk.seasonType)
			if err != nil {
				return err
			}
			mu.Lock()
			out = append(out, recs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// completedWeeks lists the distinct (week, season type) pairs with at least
// one completed game, in order.
func completedWeeks(games []adapter.Record) []weekKey {
	seen := make(map[weekKey]bool)
	for _, g := range games {
		if done, _ := g["completed"].(bool); !done {
			continue
		}
		wk, ok := g["week"].(float64)
		if !ok {
			continue
		}
		st, _ := g["seasonType"].(string)
		if st == "" {
			st = "regular"
		}
		seen[weekKey{int(wk), st}] = true
	}

	out := make([]weekKey, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].seasonType != out[j].seasonType {
			return out[i].seasonType == "regular"
		}
		return out[i].week < out[j].week
	})
	return out
}

func (c *CFBDClient) fetch(ctx context.Context, endpoint string, season int, params url.Values) ([]adapter.Record, error) {
	u := c.baseURL + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		metrics.RecordSourceRequest(endpoint, "error", time.Since(start).Seconds())
		c.ingestLog.LogFetchError(CFBDSourceName, endpoint, err)
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeNetworkError, "failed to fetch "+endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordSourceRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeNotFound, endpoint+" not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, NewDataSourceError(CFBDSourceName, ErrCodeInvalidData, "failed to parse "+endpoint+" response", err)
	}

	c.ingestLog.LogFetch(CFBDSourceName, endpoint, season, len(rows), float64(time.Since(start).Milliseconds()))
	return adapter.Records(rows), nil
}
