package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/database"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

// NUMERIC columns are cast to float8 so rows decode to plain Go numbers.
const (
	teamsQuery = `
		SELECT school, conference, classification
		FROM teams
	`

	gamesQuery = `
		SELECT id, season, week, season_type, neutral_site, conference_game, completed,
		       home_team, away_team, home_points, away_points,
		       home_postgame_win_probability::float8 AS home_postgame_win_probability,
		       away_postgame_win_probability::float8 AS away_postgame_win_probability
		FROM games
		WHERE season = $1
		  AND season_type IN ('regular', 'postseason')
		ORDER BY week, id
	`

	linesQuery = `
		SELECT gbl.game_id, gbl.provider, gbl.home_moneyline, gbl.away_moneyline,
		       gbl.spread::float8 AS spread
		FROM game_betting_lines gbl
		JOIN games g ON g.id = gbl.game_id
		WHERE g.season = $1
		ORDER BY gbl.game_id, gbl.id
	`

	ratingsQuery = `
		SELECT team_name, season,
		       power_rating::float8 AS power_rating,
		       offense_rating::float8 AS offense_rating,
		       defense_rating::float8 AS defense_rating,
		       strength_of_schedule::float8 AS strength_of_schedule
		FROM team_power_ratings
		WHERE season = $1
		  AND power_rating IS NOT NULL
		ORDER BY id
	`

	statsQuery = `
		SELECT gts.game_id, gts.team, gts.fumbles_lost, gts.fumbles_recovered,
		       gts.total_fumbles, gts.interceptions, gts.interceptions_thrown
		FROM game_team_stats_new gts
		JOIN games g ON g.id = gts.game_id
		WHERE g.season = $1
	`

	seasonsQuery = `
		SELECT DISTINCT season
		FROM games
		ORDER BY season
	`
)

// PostgresDatasetRepository implements DatasetRepository for PostgreSQL
type PostgresDatasetRepository struct {
	db      database.Querier
	builder *adapter.Builder
}

// NewPostgresDatasetRepository creates a new dataset repository
func NewPostgresDatasetRepository(db database.Querier, builder *adapter.Builder) *PostgresDatasetRepository {
	return &PostgresDatasetRepository{db: db, builder: builder}
}

// LoadSeason reads the season's rows and normalizes them into a Dataset.
func (r *PostgresDatasetRepository) LoadSeason(ctx context.Context, season int) (*models.Dataset, error) {
	raw, err := r.LoadRaw(ctx, season)
	if err != nil {
		return nil, err
	}
	return r.builder.Build(season, raw)
}

// LoadRaw reads the season's rows without normalizing them.
func (r *PostgresDatasetRepository) LoadRaw(ctx context.Context, season int) (adapter.RawDataset, error) {
	var raw adapter.RawDataset
	var err error

	if raw.Teams, err = r.records(ctx, "teams", teamsQuery); err != nil {
		return raw, err
	}
	if raw.Games, err = r.records(ctx, "games", gamesQuery, season); err != nil {
		return raw, err
	}
	if len(raw.Games) == 0 {
		return raw, fmt.Errorf("season %d: %w", season, models.ErrNoGames)
	}
	if raw.Lines, err = r.records(ctx, "betting lines", linesQuery, season); err != nil {
		return raw, err
	}
	if raw.Ratings, err = r.records(ctx, "power ratings", ratingsQuery, season); err != nil {
		return raw, err
	}
	if raw.Stats, err = r.records(ctx, "game stats", statsQuery, season); err != nil {
		return raw, err
	}
	return raw, nil
}

// Seasons lists every season with at least one game.
func (r *PostgresDatasetRepository) Seasons(ctx context.Context) ([]int, error) {
	rows, err := r.db.Query(ctx, seasonsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons: %w", err)
	}
	seasons, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("failed to scan seasons: %w", err)
	}

	out := make([]int, len(seasons))
	for i, s := range seasons {
		out[i] = int(s)
	}
	return out, nil
}

func (r *PostgresDatasetRepository) records(ctx context.Context, entity, query string, args ...any) ([]adapter.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", entity, err)
	}
	out, err := collectRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", entity, err)
	}
	return out, nil
}

// collectRecords turns each row into a Record keyed by column name.
func collectRecords(rows pgx.Rows) ([]adapter.Record, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []adapter.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(adapter.Record, len(fields))
		for i, fd := range fields {
			if i < len(values) {
				rec[fd.Name] = values[i]
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
