package repository

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/database"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

type fakeRows struct {
	cols   []string
	data   [][]any
	pos    int
	closed bool
}

func (f *fakeRows) Close()                        { f.closed = true }
func (f *fakeRows) Err() error                    { return nil }
func (f *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (f *fakeRows) RawValues() [][]byte           { return nil }
func (f *fakeRows) Conn() *pgx.Conn               { return nil }

func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	out := make([]pgconn.FieldDescription, len(f.cols))
	for i, c := range f.cols {
		out[i] = pgconn.FieldDescription{Name: c}
	}
	return out
}

func (f *fakeRows) Next() bool {
	if f.pos < len(f.data) {
		f.pos++
		return true
	}
	return false
}

func (f *fakeRows) Values() ([]any, error) {
	return f.data[f.pos-1], nil
}

func (f *fakeRows) Scan(dest ...any) error {
	row := f.data[f.pos-1]
	for i, d := range dest {
		p, ok := d.(*int32)
		if !ok {
			return errors.New("unsupported scan target")
		}
		*p = row[i].(int32)
	}
	return nil
}

// fakeQuerier answers each query by the table it reads from.
type fakeQuerier struct {
	tables map[string]*fakeRows
	err    error
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	if q.err != nil {
		return nil, q.err
	}
	for table, rows := range q.tables {
		if strings.Contains(sql, "FROM "+table+"\n") || strings.Contains(sql, "FROM "+table+" ") {
			return rows, nil
		}
	}
	return &fakeRows{}, nil
}

var _ database.Querier = (*fakeQuerier)(nil)

func newTestBuilder() *adapter.Builder {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return adapter.NewBuilder(adapter.NewNormalizer(log), nil, log)
}

func seasonTables() map[string]*fakeRows {
	return map[string]*fakeRows{
		"teams": {
			cols: []string{"school", "conference", "classification"},
			data: [][]any{
				{"Indiana", "Big Ten", "fbs"},
				{"Purdue", "Big Ten", "fbs"},
			},
		},
		"games": {
			cols: []string{"id", "season", "week", "season_type", "neutral_site", "conference_game", "completed",
				"home_team", "away_team", "home_points", "away_points",
				"home_postgame_win_probability", "away_postgame_win_probability"},
			data: [][]any{
				{int32(401), int32(2024), int32(12), "regular", false, true, true,
					"Indiana", "Purdue", int32(66), int32(0), 0.999, 0.001},
			},
		},
		"game_betting_lines": {
			cols: []string{"game_id", "provider", "home_moneyline", "away_moneyline", "spread"},
			data: [][]any{
				{int32(401), "ESPN Bet", nil, nil, -28.5},
				{int32(401), "DraftKings", int32(-5000), int32(1800), -28.5},
			},
		},
		"team_power_ratings": {
			cols: []string{"team_name", "season", "power_rating", "offense_rating", "defense_rating", "strength_of_schedule"},
			data: [][]any{
				{"Indiana", int32(2024), 24.3, 12.1, 12.2, -1.5},
				{"Purdue", int32(2024), -12.8, -6.0, -6.8, 4.2},
			},
		},
		"game_team_stats_new": {
			cols: []string{"game_id", "team", "fumbles_lost", "fumbles_recovered", "total_fumbles", "interceptions", "interceptions_thrown"},
			data: [][]any{
				{int32(401), "Indiana", int32(0), int32(1), int32(1), int32(2), int32(0)},
				{int32(401), "Purdue", int32(1), int32(0), int32(2), int32(0), int32(2)},
			},
		},
	}
}

func TestLoadSeason(t *testing.T) {
	q := &fakeQuerier{tables: seasonTables()}
	repo := NewPostgresDatasetRepository(q, newTestBuilder())

	d, err := repo.LoadSeason(context.Background(), 2024)
	require.NoError(t, err)

	require.Len(t, d.Games, 1)
	g := d.Games[0]
	assert.Equal(t, int64(401), g.ID)
	assert.True(t, g.Completed)
	require.NotNil(t, g.HomePoints)
	assert.Equal(t, 66, *g.HomePoints)

	line := d.Line(401)
	require.NotNil(t, line)
	assert.Equal(t, "DraftKings", line.Provider)
	assert.True(t, line.HasMoneylines())

	r, ok := d.Rating("Purdue")
	require.True(t, ok)
	assert.Equal(t, -12.8, r.PowerRating)

	s, ok := d.StatsFor(401, "Purdue")
	require.True(t, ok)
	assert.Equal(t, 2, s.InterceptionsThrown)
	assert.Equal(t, 3, s.Turnovers())

	for _, rows := range q.tables {
		assert.True(t, rows.closed)
	}
}

func TestLoadSeasonWithoutGames(t *testing.T) {
	tables := seasonTables()
	delete(tables, "games")
	repo := NewPostgresDatasetRepository(&fakeQuerier{tables: tables}, newTestBuilder())

	_, err := repo.LoadSeason(context.Background(), 2031)
	assert.ErrorIs(t, err, models.ErrNoGames)
}

func TestLoadSeasonQueryError(t *testing.T) {
	repo := NewPostgresDatasetRepository(&fakeQuerier{err: errors.New("connection reset")}, newTestBuilder())

	_, err := repo.LoadRaw(context.Background(), 2024)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query teams")
}

func TestSeasons(t *testing.T) {
	q := &fakeQuerier{tables: map[string]*fakeRows{
		"games": {cols: []string{"season"}, data: [][]any{{int32(2023)}, {int32(2024)}}},
	}}
	repo := NewPostgresDatasetRepository(q, newTestBuilder())

	seasons, err := repo.Seasons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, seasons)
}

func TestLoadSeasonIntegration(t *testing.T) {
	db := database.SetupTestDB(t)

	repos, err := NewRepositories(db, newTestBuilder())
	require.NoError(t, err)

	seasons, err := repos.Dataset.Seasons(context.Background())
	require.NoError(t, err)
	if len(seasons) == 0 {
		t.Skip("no seasons loaded in integration database")
	}

	d, err := repos.Dataset.LoadSeason(context.Background(), seasons[len(seasons)-1])
	require.NoError(t, err)
	assert.NotEmpty(t, d.Games)
}
