package schedule

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/probability"
)

func newTestAggregator() *Aggregator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewAggregator(DefaultConfig(), probability.DefaultModel(), log)
}

func pts(v int) *int { return &v }

func fbs(name string) *models.Team {
	return &models.Team{Name: name, Conference: "Big 12", Classification: models.ClassificationFBS}
}

func rated(team string, power float64) *models.RatingSnapshot {
	return &models.RatingSnapshot{Team: team, Season: 2024, PowerRating: power}
}

func TestOpponentRatingImputation(t *testing.T) {
	a := newTestAggregator()

	assert.Equal(t, 12.5, a.OpponentRating(fbs("Utah"), rated("Utah", 12.5)))
	assert.Equal(t, 0.0, a.OpponentRating(fbs("Utah"), nil))
	assert.Equal(t, -15.0, a.OpponentRating(&models.Team{Classification: models.ClassificationFCS}, nil))
	assert.Equal(t, -25.0, a.OpponentRating(&models.Team{Classification: models.ClassificationLower}, nil))
	assert.Equal(t, -25.0, a.OpponentRating(nil, nil))
	assert.Equal(t, 0.0, a.OpponentRating(fbs("Kansas"), rated("Kansas", 0)))
}

func TestComputeNoGamesExcluded(t *testing.T) {
	a := newTestAggregator()
	out, ok := a.Compute(TeamSchedule{Team: fbs("BYU"), Rating: 5})
	assert.False(t, ok)
	assert.Nil(t, out)
}

func scheduleFixture() TeamSchedule {
	team := fbs("Iowa State")
	kstate := fbs("Kansas State")
	utah := fbs("Utah")
	fcs := &models.Team{Name: "North Dakota", Classification: models.ClassificationFCS}

	return TeamSchedule{
		Team:   team,
		Rating: 10,
		Games: []ScheduledGame{
			{
				Game:     &models.Game{ID: 1, Week: 1, HomeTeam: "Iowa State", AwayTeam: "North Dakota", Completed: true, HomePoints: pts(21), AwayPoints: pts(3)},
				Opponent: fcs,
			},
			{
				Game:           &models.Game{ID: 2, Week: 2, HomeTeam: "Kansas State", AwayTeam: "Iowa State", Completed: true, HomePoints: pts(24), AwayPoints: pts(28)},
				Opponent:       kstate,
				OpponentRating: rated("Kansas State", 14),
			},
			{
				Game:           &models.Game{ID: 3, Week: 3, HomeTeam: "Iowa State", AwayTeam: "Utah", Completed: true},
				Opponent:       utah,
				OpponentRating: rated("Utah", 10),
			},
			{
				Game:     &models.Game{ID: 4, Week: 4, HomeTeam: "Iowa State", AwayTeam: "Baylor", NeutralSite: true},
				Opponent: fbs("Baylor"),
			},
		},
	}
}

func TestComputeSchedule(t *testing.T) {
	a := newTestAggregator()
	m := probability.DefaultModel()

	out, ok := a.Compute(scheduleFixture())
	require.True(t, ok)

	assert.Equal(t, 4, out.TotalGames)
	assert.Equal(t, 3, out.GamesPlayed)
	assert.Equal(t, 1, out.GamesRemaining)
	assert.Equal(t, 2, out.ActualWins)
	assert.Equal(t, 0, out.ActualLosses)
	assert.Equal(t, "2-0", out.Record())

	assert.InDelta(t, (-15.0+14+10+0)/4, out.SOSOverall, 1e-12)
	assert.InDelta(t, (-15.0+14+10)/3, out.SOSPlayed, 1e-12)
	assert.InDelta(t, 0.0, out.SOSRemaining, 1e-12)

	want := m.RatingMatchupProbability(10, -15, models.VenueHome) +
		m.RatingMatchupProbability(10, 14, models.VenueAway) +
		m.RatingMatchupProbability(10, 10, models.VenueHome) +
		m.RatingMatchupProbability(10, 0, models.VenueNeutral)
	assert.InDelta(t, want, out.ProjectedWins, 1e-12)
	assert.InDelta(t, 2-want, out.WinDifference, 1e-12)

	assert.Equal(t, models.TopTierRecord{Wins: 1, Losses: 0, Games: 2}, out.TopTier)
	assert.Equal(t, "1-0 (1)", out.TopTier.String())

	// 0.98 vs the FCS side, 0.32 at Kansas State, 0.56 vs Utah, 0.77 vs Baylor.
	assert.Equal(t, 1, out.SureThingGames)
	assert.Equal(t, 0, out.LongshotGames)
	assert.Equal(t, 1, out.CoinflipGames)
}

func TestComputeIdempotent(t *testing.T) {
	a := newTestAggregator()
	first, ok := a.Compute(scheduleFixture())
	require.True(t, ok)
	second, ok := a.Compute(scheduleFixture())
	require.True(t, ok)
	assert.Equal(t, first, second)
}

func TestComputeAllRemaining(t *testing.T) {
	a := newTestAggregator()
	out, ok := a.Compute(TeamSchedule{
		Team:   fbs("Houston"),
		Rating: -30,
		Games: []ScheduledGame{
			{Game: &models.Game{ID: 9, HomeTeam: "Texas", AwayTeam: "Houston"}, Opponent: fbs("Texas"), OpponentRating: rated("Texas", 25)},
		},
	})
	require.True(t, ok)

	assert.Equal(t, 0.0, out.SOSPlayed)
	assert.Equal(t, 25.0, out.SOSRemaining)
	assert.Equal(t, 1, out.LongshotGames)
	assert.Equal(t, 1, out.TopTier.Pending())
	assert.Equal(t, "0-0 (1)", out.TopTier.String())
}

func TestTopTierRequiresClassification(t *testing.T) {
	a := newTestAggregator()
	strongFCS := &models.Team{Name: "Montana State", Classification: models.ClassificationFCS}

	assert.False(t, a.IsTopTierOpponent(strongFCS, 12))
	assert.False(t, a.IsTopTierOpponent(fbs("Kent State"), 9.99))
	assert.True(t, a.IsTopTierOpponent(fbs("Ohio State"), 10))
	assert.False(t, a.IsTopTierOpponent(nil, 30))
}
