package main

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/service"
)

// filterFlags are shared by every report command.
type filterFlags struct {
	season            int
	conferenceOnly    bool
	includePostseason bool
	classification    string
	conference        string
	source            string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.season, "season", "s", 0, "Season to compute (defaults to app.current_season)")
	cmd.Flags().BoolVar(&f.conferenceOnly, "conference-only", false, "Only count games against conference opponents")
	cmd.Flags().BoolVar(&f.includePostseason, "include-postseason", false, "Count postseason games (defaults to computation.include_postseason)")
	cmd.Flags().StringVar(&f.classification, "classification", "", "Restrict to teams of one classification (fbs, fcs, lower)")
	cmd.Flags().StringVar(&f.conference, "conference", "", "Restrict to teams of one conference")
	cmd.Flags().StringVar(&f.source, "source", "", "Dataset source: database or api (defaults to schedule.source)")
}

// filter resolves flags against configuration defaults.
func (f *filterFlags) filter(cmd *cobra.Command) models.Filter {
	season := f.season
	if season == 0 {
		season = cfg.App.CurrentSeason
	}
	includePostseason := cfg.Computation.IncludePostseason
	if cmd.Flags().Changed("include-postseason") {
		includePostseason = f.includePostseason
	}
	classification := f.classification
	if classification == "" {
		classification = cfg.Computation.DefaultClassification
	}
	return models.Filter{
		Season:            season,
		Classification:    strings.ToLower(classification),
		Conference:        f.conference,
		ConferenceOnly:    f.conferenceOnly,
		RegularSeasonOnly: !includePostseason,
	}
}

func (f *filterFlags) sourceName() string {
	if f.source != "" {
		return f.source
	}
	return cfg.Schedule.Source
}

var (
	sosFlags     filterFlags
	luckFlags    filterFlags
	metricsFlags filterFlags
)

var sosCmd = &cobra.Command{
	Use:   "sos",
	Short: "Print the strength-of-schedule leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, &sosFlags, func(ctx context.Context, s *service.LeaderboardService, f models.Filter) (any, error) {
			return s.StrengthOfSchedule(ctx, f)
		})
	},
}

var luckCmd = &cobra.Command{
	Use:   "luck",
	Short: "Print the luck leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, &luckFlags, func(ctx context.Context, s *service.LeaderboardService, f models.Filter) (any, error) {
			return s.Luck(ctx, f)
		})
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the flat per-team metric records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, &metricsFlags, func(ctx context.Context, s *service.LeaderboardService, f models.Filter) (any, error) {
			return s.Metrics(ctx, f)
		})
	},
}

func init() {
	sosFlags.register(sosCmd)
	luckFlags.register(luckCmd)
	metricsFlags.register(metricsCmd)
}

type reportFunc func(ctx context.Context, s *service.LeaderboardService, f models.Filter) (any, error)

func runReport(cmd *cobra.Command, flags *filterFlags, run reportFunc) error {
	ctx := cmd.Context()

	deps, err := newLoader(ctx, flags.sourceName())
	if err != nil {
		return err
	}
	defer deps.Close()

	ms := service.NewMetricsService(service.OptionsFromConfig(cfg), appLog)
	boards := service.NewLeaderboardService(deps.loader, deps.name, ms, appLog)

	report, err := run(ctx, boards, flags.filter(cmd))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
