package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/gridiron-metrics/internal/config"
	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/luck"
	"github.com/yourusername/gridiron-metrics/internal/metrics"
	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/probability"
	"github.com/yourusername/gridiron-metrics/internal/schedule"
)

// Report names used for caching, logs and metrics.
const (
	ReportSOS     = "sos"
	ReportLuck    = "luck"
	ReportMetrics = "metrics"
)

const defaultCacheTTL = 10 * time.Minute

// Options configures a MetricsService.
type Options struct {
	Workers  int
	CacheTTL time.Duration
	Model    probability.Model
	Schedule schedule.Config
	Luck     luck.Config
}

// DefaultOptions returns the calibrated model with one worker per team batch.
func DefaultOptions() Options {
	return Options{
		Workers:  4,
		CacheTTL: defaultCacheTTL,
		Model:    probability.DefaultModel(),
		Schedule: schedule.DefaultConfig(),
		Luck:     luck.DefaultConfig(),
	}
}

// OptionsFromConfig maps the loaded configuration onto service options.
func OptionsFromConfig(cfg *config.Config) Options {
	m := cfg.Model
	return Options{
		Workers:  cfg.Computation.Workers,
		CacheTTL: cfg.CacheTTL(),
		Model:    probability.NewModel(m.ScoringStdDev, m.HomeFieldAdvantage),
		Schedule: schedule.Config{
			DefaultTopTierRating:     m.DefaultTopTierRating,
			DefaultSecondTierRating:  m.DefaultSecondTierRating,
			DefaultLowerTierRating:   m.DefaultLowerTierRating,
			TopTierOpponentThreshold: m.TopTierOpponentThreshold,
			SureThingThreshold:       m.SureThingThreshold,
			LongshotThreshold:        m.LongshotThreshold,
			CoinflipLow:              m.CoinflipLow,
			CoinflipHigh:             m.CoinflipHigh,
		},
		Luck: luck.Config{CloseGameMargin: m.CloseGameMargin},
	}
}

// MetricsService runs computation passes over a season dataset.
type MetricsService struct {
	aggregator *schedule.Aggregator
	engine     *luck.Engine
	cache      *ResultCache
	workers    int
	logger     *logrus.Logger
	compLog    *logger.ComputationLogger
}

// NewMetricsService creates a new metrics service
func NewMetricsService(opts Options, log *logrus.Logger) *MetricsService {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &MetricsService{
		aggregator: schedule.NewAggregator(opts.Schedule, opts.Model, log),
		engine:     luck.NewEngine(opts.Luck, opts.Model, log),
		cache:      NewResultCache(opts.CacheTTL),
		workers:    opts.Workers,
		logger:     log,
		compLog:    logger.NewComputationLogger(log),
	}
}

// Cache exposes the result cache for invalidation on refresh.
func (s *MetricsService) Cache() *ResultCache {
	return s.cache
}

// ComputeSOS computes strength of schedule for every selected team.
func (s *MetricsService) ComputeSOS(ctx context.Context, d *models.Dataset, f models.Filter) (*models.Report[models.ScheduleStrength], error) {
	return runPass(ctx, s, ReportSOS, d, f, reasonNoGames, func(t *models.Team) (*models.ScheduleStrength, bool) {
		out, ok := s.aggregator.Compute(scheduleInput(d, f, t))
		if !ok {
			return nil, false
		}
		roundSOS(out)
		return out, true
	})
}

// ComputeLuck computes the luck breakdown for every selected team.
func (s *MetricsService) ComputeLuck(ctx context.Context, d *models.Dataset, f models.Filter) (*models.Report[models.LuckBreakdown], error) {
	return runPass(ctx, s, ReportLuck, d, f, reasonNoCompletedGames, func(t *models.Team) (*models.LuckBreakdown, bool) {
		out, ok := s.engine.Compute(luckInput(d, f, t))
		if !ok {
			return nil, false
		}
		roundLuck(out)
		return out, true
	})
}

// ComputeMetrics merges both passes into one flat record per team. Teams with
// a schedule but no completed games carry LuckAvailable=false.
func (s *MetricsService) ComputeMetrics(ctx context.Context, d *models.Dataset, f models.Filter) (*models.Report[models.MetricRecord], error) {
	f, err := normalizeFilter(d, f)
	if err != nil {
		return nil, err
	}
	key := CacheKey{Report: ReportMetrics, Filter: f, Version: d.Version}
	if cached, ok := s.cache.Get(key); ok {
		if r, ok := cached.(*models.Report[models.MetricRecord]); ok {
			s.compLog.LogCacheHit(ReportMetrics, f.Key())
			return r, nil
		}
	}

	start := time.Now()
	sos, err := s.ComputeSOS(ctx, d, f)
	if err != nil {
		return nil, err
	}
	lk, err := s.ComputeLuck(ctx, d, f)
	if err != nil {
		return nil, err
	}

	byTeam := make(map[string]*models.LuckBreakdown, len(lk.Teams))
	for i := range lk.Teams {
		byTeam[lk.Teams[i].Team] = &lk.Teams[i]
	}

	report := &models.Report[models.MetricRecord]{
		RunID:      uuid.New(),
		Season:     f.Season,
		Filter:     f,
		ComputedAt: time.Now().UTC(),
		Teams:      make([]models.MetricRecord, 0, len(sos.Teams)),
		Excluded:   sos.Excluded,
	}
	for i := range sos.Teams {
		report.Teams = append(report.Teams, mergeRecord(f.Season, &sos.Teams[i], byTeam[sos.Teams[i].Team]))
	}

	elapsed := time.Since(start)
	s.compLog.LogPassCompleted(report.RunID.String(), ReportMetrics, f.Season, len(report.Teams), len(report.Excluded), float64(elapsed.Milliseconds()))
	metrics.RecordComputation(ReportMetrics, "success", elapsed.Seconds(), len(report.Teams))
	s.cache.Set(key, report)
	return report, nil
}

// runPass fans compute out over the selected teams and collects the results
// in canonical team order.
func runPass[T any](
	ctx context.Context,
	s *MetricsService,
	report string,
	d *models.Dataset,
	f models.Filter,
	emptyReason string,
	compute func(*models.Team) (*T, bool),
) (*models.Report[T], error) {
	f, err := normalizeFilter(d, f)
	if err != nil {
		return nil, err
	}

	key := CacheKey{Report: report, Filter: f, Version: d.Version}
	if cached, ok := s.cache.Get(key); ok {
		if r, ok := cached.(*models.Report[T]); ok {
			s.compLog.LogCacheHit(report, f.Key())
			return r, nil
		}
	}

	runID := uuid.New()
	start := time.Now()
	selected, unrated := candidates(d, f)
	s.compLog.LogPassStarted(runID.String(), report, f.Season, f.Key(), len(selected))

	results := make([]*T, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, team := range selected {
		i, team := i, team
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if out, ok := compute(team); ok {
				results[i] = out
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordComputation(report, "cancelled", time.Since(start).Seconds(), 0)
		return nil, fmt.Errorf("%s pass for season %d: %w", report, f.Season, err)
	}

	out := &models.Report[T]{
		RunID:      runID,
		Season:     f.Season,
		Filter:     f,
		ComputedAt: time.Now().UTC(),
		Teams:      make([]T, 0, len(selected)),
	}
	for _, name := range unrated {
		out.Excluded = append(out.Excluded, name)
		s.logExcluded(report, name, reasonNoRating)
	}
	for i, r := range results {
		if r == nil {
			out.Excluded = append(out.Excluded, selected[i].Name)
			s.logExcluded(report, selected[i].Name, emptyReason)
			continue
		}
		out.Teams = append(out.Teams, *r)
	}
	sort.Strings(out.Excluded)

	elapsed := time.Since(start)
	s.compLog.LogPassCompleted(runID.String(), report, f.Season, len(out.Teams), len(out.Excluded), float64(elapsed.Milliseconds()))
	metrics.RecordComputation(report, "success", elapsed.Seconds(), len(out.Teams))
	s.cache.Set(key, out)
	return out, nil
}

func (s *MetricsService) logExcluded(report, team, reason string) {
	s.compLog.LogTeamExcluded(report, team, reason)
	metrics.RecordTeamExcluded(report, reason)
}

// normalizeFilter defaults the filter season to the dataset's and rejects a
// mismatch.
func normalizeFilter(d *models.Dataset, f models.Filter) (models.Filter, error) {
	if d == nil {
		return f, models.ErrNoGames
	}
	if f.Season == 0 {
		f.Season = d.Season
	}
	if f.Season != d.Season {
		return f, models.NewValidationError(models.ValidationInconsistency, "season",
			fmt.Sprintf("filter season %d does not match dataset season %d", f.Season, d.Season))
	}
	return f, nil
}

func roundSOS(s *models.ScheduleStrength) {
	s.TeamRating = models.Round1(s.TeamRating)
	s.ProjectedWins = models.Round1(s.ProjectedWins)
	s.WinDifference = models.Round1(s.WinDifference)
	s.SOSOverall = models.Round1(s.SOSOverall)
	s.SOSPlayed = models.Round1(s.SOSPlayed)
	s.SOSRemaining = models.Round1(s.SOSRemaining)
}

func roundLuck(l *models.LuckBreakdown) {
	l.ExpectedWins = models.Round1Ptr(l.ExpectedWins)
	l.ExpectedVsActual = models.Round1Ptr(l.ExpectedVsActual)
	l.ExpectedVsDeserved = models.Round1Ptr(l.ExpectedVsDeserved)
	l.DeservedWins = models.Round1(l.DeservedWins)
	l.DeservedVsActual = models.Round1(l.DeservedVsActual)
	l.Turnovers.FumbleRecoveryRate = models.Round1(l.Turnovers.FumbleRecoveryRate)
	l.Turnovers.InterceptionRate = models.Round1(l.Turnovers.InterceptionRate)
}

func mergeRecord(season int, s *models.ScheduleStrength, l *models.LuckBreakdown) models.MetricRecord {
	rec := models.MetricRecord{
		Team:               s.Team,
		Season:             season,
		Conference:         s.Conference,
		Classification:     s.Classification,
		TeamRating:         s.TeamRating,
		GamesPlayed:        s.GamesPlayed,
		GamesRemaining:     s.GamesRemaining,
		ActualWins:         s.ActualWins,
		ActualLosses:       s.ActualLosses,
		ActualTies:         s.ActualTies,
		Record:             s.Record(),
		ProjectedWins:      s.ProjectedWins,
		WinDifference:      s.WinDifference,
		SOSOverall:         s.SOSOverall,
		SOSPlayed:          s.SOSPlayed,
		SOSRemaining:       s.SOSRemaining,
		TopTierRecord:      s.TopTier.String(),
		CoinflipGames:      s.CoinflipGames,
		SureThingGames:     s.SureThingGames,
		LongshotGames:      s.LongshotGames,
		CloseGameRecord:    models.FormatRecord(0, 0, 0),
		FumbleRecoveryRate: luck.NeutralFumbleRecoveryRate,
	}
	if l == nil {
		return rec
	}
	rec.LuckAvailable = true
	rec.ExpectedWins = l.ExpectedWins
	rec.GamesWithBetting = l.GamesWithBetting
	rec.ExpectedVsActual = l.ExpectedVsActual
	rec.DeservedWins = l.DeservedWins
	rec.DeservedVsActual = l.DeservedVsActual
	rec.ExpectedVsDeserved = l.ExpectedVsDeserved
	rec.CloseGameRecord = l.CloseGameRecord()
	rec.FumbleRecoveryRate = l.Turnovers.FumbleRecoveryRate
	rec.InterceptionRate = l.Turnovers.InterceptionRate
	rec.TurnoverMargin = l.Turnovers.TurnoverMargin
	return rec
}
