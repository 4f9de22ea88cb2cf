package probability

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/gridiron-metrics/internal/models"
)

func odds(v int) *int { return &v }

func spread(v float64) *float64 { return &v }

func TestMoneylineToProbability(t *testing.T) {
	tests := []struct {
		name   string
		odds   *int
		want   float64
		wantOK bool
	}{
		{"underdog", odds(150), 0.4, true},
		{"favorite", odds(-200), 2.0 / 3.0, true},
		{"even", odds(100), 0.5, true},
		{"zero", odds(0), 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MoneylineToProbability(tt.odds)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestDevigSumsToOne(t *testing.T) {
	pairs := [][2]int{
		{-110, -110}, {-200, 170}, {-1000, 650}, {135, -155}, {-105, -115}, {250, -310},
	}
	for _, p := range pairs {
		home, away, ok := DevigMoneylines(odds(p[0]), odds(p[1]))
		require.True(t, ok)
		assert.InDelta(t, 1.0, home+away, 1e-12, "pair %v", p)
		assert.Greater(t, home, 0.0)
		assert.Greater(t, away, 0.0)
	}

	home, away, ok := DevigMoneylines(odds(-110), odds(-110))
	require.True(t, ok)
	assert.InDelta(t, 0.5, home, 1e-12)
	assert.InDelta(t, 0.5, away, 1e-12)

	_, _, ok = DevigMoneylines(odds(-110), nil)
	assert.False(t, ok)
}

func TestSpreadToProbability(t *testing.T) {
	assert.InDelta(t, 0.5, SpreadToProbability(0, DefaultScoringStdDev), 1e-12)
	assert.InDelta(t, 0.8413447, SpreadToProbability(13.5, DefaultScoringStdDev), 1e-6)

	p := SpreadToProbability(7, DefaultScoringStdDev)
	q := SpreadToProbability(-7, DefaultScoringStdDev)
	assert.InDelta(t, 1.0, p+q, 1e-12)
	assert.Greater(t, p, 0.5)
}

func TestRatingMatchupProbability(t *testing.T) {
	m := DefaultModel()

	assert.InDelta(t, 0.5, m.RatingMatchupProbability(12.3, 12.3, models.VenueNeutral), 1e-12)
	assert.InDelta(t, 22.15, m.MatchupSpread(20, 0, models.VenueHome), 1e-12)
	assert.InDelta(t, 17.85, m.MatchupSpread(20, 0, models.VenueAway), 1e-12)
	assert.Greater(t, m.RatingMatchupProbability(20, 0, models.VenueHome), 0.9)

	home := m.RatingMatchupProbability(5, 5, models.VenueHome)
	away := m.RatingMatchupProbability(5, 5, models.VenueAway)
	assert.Greater(t, home, 0.5)
	assert.InDelta(t, 1.0, home+away, 1e-12)
}

func TestResolveOrder(t *testing.T) {
	m := DefaultModel()

	t.Run("moneyline preferred over spread", func(t *testing.T) {
		line := &models.BettingLine{HomeMoneyline: odds(-200), AwayMoneyline: odds(170), Spread: spread(-5.5)}
		home := m.Resolve(line, true)
		away := m.Resolve(line, false)
		assert.True(t, home.Valid)
		assert.Equal(t, models.SourceMoneyline, home.Source)
		assert.InDelta(t, 1.0, home.Value+away.Value, 1e-12)
	})

	t.Run("spread fallback is home perspective", func(t *testing.T) {
		line := &models.BettingLine{HomeMoneyline: odds(-200), Spread: spread(-7)}
		home := m.Resolve(line, true)
		away := m.Resolve(line, false)
		assert.Equal(t, models.SourceSpread, home.Source)
		assert.Greater(t, home.Value, 0.5)
		assert.Less(t, away.Value, 0.5)
		assert.InDelta(t, m.SpreadToProbability(7), home.Value, 1e-12)
	})

	t.Run("pick'em spread is present", func(t *testing.T) {
		p := m.Resolve(&models.BettingLine{Spread: spread(0)}, false)
		assert.True(t, p.Valid)
		assert.InDelta(t, 0.5, p.Value, 1e-12)
	})

	t.Run("nothing usable", func(t *testing.T) {
		p := m.Resolve(&models.BettingLine{HomeMoneyline: odds(0), AwayMoneyline: odds(120)}, true)
		assert.False(t, p.Valid)
		assert.Equal(t, models.SourceNone, p.Source)

		assert.False(t, m.Resolve(nil, true).Valid)
	})
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(0, -1)
	assert.Equal(t, DefaultModel(), m)

	m = NewModel(10, 3)
	assert.Equal(t, 10.0, m.StdDev)
	assert.False(t, math.IsNaN(m.SpreadToProbability(3)))
}
