package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/metrics"
	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/percentile"
)

// DatasetLoader loads one season's inputs from storage or an upstream API.
type DatasetLoader interface {
	LoadSeason(ctx context.Context, season int) (*models.Dataset, error)
}

// LeaderboardService serves ranked reports, loading each season once and
// reusing it until Refresh replaces it.
type LeaderboardService struct {
	loader   DatasetLoader
	source   string
	metrics  *MetricsService
	logger   *logrus.Logger
	auditLog *logger.AuditLogger

	mu       sync.RWMutex
	datasets map[int]*models.Dataset
	loads    singleflight.Group
}

// NewLeaderboardService creates a new leaderboard service. source names the
// loader in audit logs.
func NewLeaderboardService(loader DatasetLoader, source string, ms *MetricsService, log *logrus.Logger) *LeaderboardService {
	return &LeaderboardService{
		loader:   loader,
		source:   source,
		metrics:  ms,
		logger:   log,
		auditLog: logger.NewAuditLogger(log),
		datasets: make(map[int]*models.Dataset),
	}
}

// Dataset returns the season's dataset, loading it on first use. Concurrent
// callers share a single load.
func (s *LeaderboardService) Dataset(ctx context.Context, season int) (*models.Dataset, error) {
	s.mu.RLock()
	d, ok := s.datasets[season]
	s.mu.RUnlock()
	if ok {
		return d, nil
	}

	v, err, _ := s.loads.Do(fmt.Sprint(season), func() (interface{}, error) {
		return s.load(ctx, season)
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.Dataset), nil
}

// Refresh reloads the season and drops every cached report computed from the
// previous snapshot.
func (s *LeaderboardService) Refresh(ctx context.Context, season int) (*models.Dataset, error) {
	d, err := s.load(ctx, season)
	if err != nil {
		return nil, err
	}
	dropped := s.metrics.Cache().Invalidate(season)
	s.auditLog.LogCacheInvalidation(season, dropped, "refresh")
	return d, nil
}

func (s *LeaderboardService) load(ctx context.Context, season int) (*models.Dataset, error) {
	d, err := s.loader.LoadSeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load season %d: %w", season, err)
	}
	if len(d.Games) == 0 {
		return nil, fmt.Errorf("season %d: %w", season, models.ErrNoGames)
	}

	s.mu.Lock()
	s.datasets[season] = d
	s.mu.Unlock()

	now := time.Now()
	s.auditLog.LogDataRefresh(season, s.source, len(d.Games), len(d.Lines), now)
	metrics.RecordRefresh(float64(now.Unix()), map[string]int{
		"teams":   len(d.Teams),
		"games":   len(d.Games),
		"lines":   len(d.Lines),
		"ratings": len(d.Ratings),
		"stats":   len(d.Stats),
	})
	return d, nil
}

// StrengthOfSchedule returns the SOS leaderboard, hardest schedule first.
func (s *LeaderboardService) StrengthOfSchedule(ctx context.Context, f models.Filter) (*models.Report[models.ScheduleStrength], error) {
	d, err := s.Dataset(ctx, f.Season)
	if err != nil {
		return nil, err
	}
	r, err := s.metrics.ComputeSOS(ctx, d, f)
	if err != nil {
		return nil, err
	}
	return RankSOS(r), nil
}

// Luck returns the luck leaderboard, unluckiest team first.
func (s *LeaderboardService) Luck(ctx context.Context, f models.Filter) (*models.Report[models.LuckBreakdown], error) {
	d, err := s.Dataset(ctx, f.Season)
	if err != nil {
		return nil, err
	}
	r, err := s.metrics.ComputeLuck(ctx, d, f)
	if err != nil {
		return nil, err
	}
	return RankLuck(r), nil
}

// Metrics returns the merged per-team records in canonical order.
func (s *LeaderboardService) Metrics(ctx context.Context, f models.Filter) (*models.Report[models.MetricRecord], error) {
	d, err := s.Dataset(ctx, f.Season)
	if err != nil {
		return nil, err
	}
	return s.metrics.ComputeMetrics(ctx, d, f)
}

// RankSOS returns a copy of r sorted by sos_overall descending with ranks
// attached. r itself is left untouched since it may be cached.
func RankSOS(r *models.Report[models.ScheduleStrength]) *models.Report[models.ScheduleStrength] {
	out := *r
	out.Teams = append([]models.ScheduleStrength(nil), r.Teams...)
	percentile.RankBy(out.Teams,
		func(s models.ScheduleStrength) float64 { return s.SOSOverall },
		true,
		func(s *models.ScheduleStrength, rank int) { s.Rank = rank },
	)
	sortByRank(out.Teams, func(s models.ScheduleStrength) int { return s.Rank })
	return &out
}

// RankLuck returns a copy of r sorted by expected_vs_actual ascending, so the
// teams that most underperformed the market come first. Teams without betting
// data sort as zero.
func RankLuck(r *models.Report[models.LuckBreakdown]) *models.Report[models.LuckBreakdown] {
	out := *r
	out.Teams = append([]models.LuckBreakdown(nil), r.Teams...)
	percentile.RankBy(out.Teams,
		func(l models.LuckBreakdown) float64 {
			if l.ExpectedVsActual == nil {
				return 0
			}
			return *l.ExpectedVsActual
		},
		false,
		func(l *models.LuckBreakdown, rank int) { l.Rank = rank },
	)
	sortByRank(out.Teams, func(l models.LuckBreakdown) int { return l.Rank })
	return &out
}

func sortByRank[T any](items []T, rank func(T) int) {
	sorted := make([]T, len(items))
	for _, it := range items {
		sorted[rank(it)-1] = it
	}
	copy(items, sorted)
}

// DefaultFilters are the filter sets precomputed after each refresh.
func DefaultFilters(season int, includePostseason bool) []models.Filter {
	regOnly := !includePostseason
	return []models.Filter{
		{Season: season, RegularSeasonOnly: regOnly},
		{Season: season, RegularSeasonOnly: regOnly, ConferenceOnly: true},
		{Season: season, RegularSeasonOnly: regOnly, Classification: string(models.ClassificationFBS)},
	}
}

// Precompute warms the cache with every report for each filter.
func (s *LeaderboardService) Precompute(ctx context.Context, filters ...models.Filter) error {
	for _, f := range filters {
		if _, err := s.Metrics(ctx, f); err != nil {
			return fmt.Errorf("precompute %s: %w", f.Key(), err)
		}
	}
	return nil
}
