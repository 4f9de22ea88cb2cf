package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-metrics/internal/config"
)

// RequiredTables must exist before a season can be loaded.
var RequiredTables = []string{"teams", "games", "team_power_ratings"}

// OptionalTables only feed the luck engine; without them expected wins and
// turnover luck are reported as unavailable.
var OptionalTables = []string{"game_betting_lines", "game_team_stats_new"}

// Initialize creates a database connection pool and verifies the schema the
// dataset repository reads from.
func Initialize(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	present, err := existingTables(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	for _, table := range RequiredTables {
		if !present[table] {
			db.Close()
			return nil, fmt.Errorf("required table %q not found in database %s", table, cfg.Database.Name)
		}
	}
	for _, table := range OptionalTables {
		if !present[table] {
			log.WithField("table", table).Warn("Optional table missing; luck metrics will be incomplete")
		}
	}

	return db, nil
}

func existingTables(ctx context.Context, q Querier) (map[string]bool, error) {
	rows, err := q.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema()`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		present[name] = true
	}
	return present, rows.Err()
}
