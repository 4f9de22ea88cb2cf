package datasource

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/config"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

// Factory creates DataSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(logger *logrus.Logger) *Factory {
	return &Factory{logger: logger}
}

// NewDataSource creates a new DataSource based on the provided configuration
func (f *Factory) NewDataSource(cfg config.DataSourceConfig) (DataSource, error) {
	switch cfg.Name {
	case CFBDSourceName:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("CFBD API key is required")
		}
		httpClient := NewRateLimitedHTTPClient(HTTPClientConfigFrom(cfg), cfg.Name, f.logger)
		return NewCFBDClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Enabled, f.logger), nil

	case FileSourceName:
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot location %q: %w", cfg.BaseURL, err)
		}
		return NewFileSource(u.Path, cfg.Enabled), nil

	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Name)
	}
}

// SeasonLoader combines an upstream source with the ratings export and
// normalizes both into a Dataset.
type SeasonLoader struct {
	source      DataSource
	ratingsPath string
	builder     *adapter.Builder
	logger      *logrus.Logger
}

// NewSeasonLoader creates a SeasonLoader. ratingsPath may be empty, in which
// case every team is reported as unrated.
func NewSeasonLoader(source DataSource, ratingsPath string, builder *adapter.Builder, log *logrus.Logger) *SeasonLoader {
	return &SeasonLoader{source: source, ratingsPath: ratingsPath, builder: builder, logger: log}
}

// Name returns the underlying source's name.
func (l *SeasonLoader) Name() string {
	return l.source.Name()
}

// FetchSeason pulls the season from upstream and builds a Dataset.
func (l *SeasonLoader) FetchSeason(ctx context.Context, season int) (*models.Dataset, error) {
	raw, err := l.source.FetchRaw(ctx, season)
	if err != nil {
		return nil, err
	}
	if len(raw.Games) == 0 {
		return nil, fmt.Errorf("%s season %d: %w", l.source.Name(), season, models.ErrNoGames)
	}

	if l.ratingsPath != "" {
		raw.Ratings, err = LoadRatingsFile(l.ratingsPath, season)
		if err != nil {
			return nil, err
		}
	} else {
		l.logger.WithField("season", season).Warn("No ratings file configured; all teams will be excluded as unrated")
	}

	return l.builder.Build(season, raw)
}

// LoadSeason implements the loader interface used by the leaderboard service.
func (l *SeasonLoader) LoadSeason(ctx context.Context, season int) (*models.Dataset, error) {
	return l.FetchSeason(ctx, season)
}
