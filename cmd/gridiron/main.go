// Package main provides the gridiron CLI: one-shot leaderboard computation,
// upstream fetches, and the long-running API server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/config"
	"github.com/yourusername/gridiron-metrics/internal/database"
	"github.com/yourusername/gridiron-metrics/internal/datasource"
	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/repository"
	"github.com/yourusername/gridiron-metrics/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(sosCmd, luckCmd, metricsCmd, fetchCmd, serveCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:          "gridiron",
	Short:        "College football schedule strength and luck metrics",
	Long:         `Computes strength-of-schedule and luck leaderboards from game results, betting lines and power ratings.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gridiron %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// loadConfig loads and validates configuration. Logs go to the command's
// stderr so report output on stdout stays machine readable.
func loadConfig(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(ctx, c, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	cfg = c
	appLog = logger.NewLoggerWithOutput(cfg.App.LogLevel, cmd.ErrOrStderr())
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"season":      cfg.App.CurrentSeason,
		"version":     Version,
	}).Debug("Configuration loaded")
	return nil
}

// loaderDeps bundles a dataset loader with whatever it holds open.
type loaderDeps struct {
	loader service.DatasetLoader
	name   string
	db     *database.DB
}

func (d *loaderDeps) Close() {
	if d.db != nil {
		d.db.Close()
	}
}

// newLoader builds the dataset loader for source: "database" reads the
// ingested tables, "api" pulls straight from the configured data source.
func newLoader(ctx context.Context, source string) (*loaderDeps, error) {
	builder := adapter.NewBuilder(adapter.NewNormalizer(appLog), cfg.Betting.ProviderPreference, appLog)

	switch source {
	case "", "database":
		db, err := database.Initialize(ctx, cfg, appLog)
		if err != nil {
			return nil, err
		}
		repos, err := repository.NewRepositories(db, builder)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &loaderDeps{loader: repos.Dataset, name: "database", db: db}, nil

	case "api":
		seasons, err := newSeasonLoader(builder)
		if err != nil {
			return nil, err
		}
		return &loaderDeps{loader: seasons, name: seasons.Name()}, nil

	default:
		return nil, fmt.Errorf("unknown source %q (want database or api)", source)
	}
}

func newSeasonLoader(builder *adapter.Builder) (*datasource.SeasonLoader, error) {
	src, err := datasource.NewFactory(appLog).NewDataSource(cfg.DataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}
	return datasource.NewSeasonLoader(src, cfg.DataSource.RatingsFile, builder, appLog), nil
}
