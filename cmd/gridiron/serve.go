package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-metrics/internal/api"
	"github.com/yourusername/gridiron-metrics/internal/health"
	"github.com/yourusername/gridiron-metrics/internal/metrics"
	"github.com/yourusername/gridiron-metrics/internal/scheduler"
	"github.com/yourusername/gridiron-metrics/internal/service"
)

var serveFlags struct {
	season int
	source string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the leaderboard API with health checks and scheduled refreshes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serveFlags.season, "season", "s", 0, "Season to warm and refresh (defaults to app.current_season)")
	serveCmd.Flags().StringVar(&serveFlags.source, "source", "", "Dataset source: database or api (defaults to schedule.source)")
}

func runServe(ctx context.Context) error {
	season := serveFlags.season
	if season == 0 {
		season = cfg.App.CurrentSeason
	}
	source := serveFlags.source
	if source == "" {
		source = cfg.Schedule.Source
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	deps, err := newLoader(ctx, source)
	if err != nil {
		return err
	}
	defer deps.Close()

	ms := service.NewMetricsService(service.OptionsFromConfig(cfg), appLog)
	boards := service.NewLeaderboardService(deps.loader, deps.name, ms, appLog)
	filters := service.DefaultFilters(season, cfg.Computation.IncludePostseason)

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Port:        cfg.Server.HealthPort,
		Logger:      appLog,
		Checks: map[string]health.CheckFunc{
			"dataset": func(ctx context.Context) error {
				_, err := boards.Dataset(ctx, season)
				return err
			},
		},
	}
	if cfg.Metrics.Enabled {
		healthCfg.MetricsPath = cfg.Metrics.Path
	}
	if deps.db != nil {
		healthCfg.DB = deps.db
	}
	healthServer := health.NewServer(healthCfg)
	if err := healthServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start health server: %w", err)
	}

	if cfg.Schedule.Enabled {
		sched := scheduler.NewScheduler(boards, appLog)
		if err := sched.ScheduleRefresh(cfg.Schedule.Refresh, season, filters); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	// Warm the cache in the background; the API serves cold requests meanwhile.
	go func() {
		start := time.Now()
		if err := boards.Precompute(ctx, filters...); err != nil {
			appLog.WithError(err).WithField("season", season).Error("Initial precompute failed")
			return
		}
		healthServer.SetReady(true)
		appLog.WithFields(logrus.Fields{
			"season":      season,
			"filters":     len(filters),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Info("Leaderboards precomputed")
	}()

	apiServer := api.New(api.Config{
		Port:              cfg.Server.Port,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		ReadTimeout:       time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		IncludePostseason: cfg.Computation.IncludePostseason,
		Logger:            appLog,
		Leaderboards:      boards,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	appLog.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}
