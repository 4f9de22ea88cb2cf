package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestGameVenueFor(t *testing.T) {
	g := Game{HomeTeam: "Ohio State", AwayTeam: "Michigan"}
	assert.Equal(t, VenueHome, g.VenueFor("Ohio State"))
	assert.Equal(t, VenueAway, g.VenueFor("Michigan"))

	g.NeutralSite = true
	assert.Equal(t, VenueNeutral, g.VenueFor("Ohio State"))
	assert.Equal(t, VenueNeutral, g.VenueFor("Michigan"))
}

func TestGameResult(t *testing.T) {
	tests := []struct {
		name string
		home *int
		away *int
		want Outcome
	}{
		{"home win", intPtr(31), intPtr(17), OutcomeWin},
		{"home loss", intPtr(10), intPtr(13), OutcomeLoss},
		{"tie", intPtr(21), intPtr(21), OutcomeTie},
		{"no score", nil, intPtr(7), OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Game{HomeTeam: "A", AwayTeam: "B", HomePoints: tt.home, AwayPoints: tt.away}
			assert.Equal(t, tt.want, g.Result("A"))
		})
	}
}

func TestGameIsPlayed(t *testing.T) {
	g := Game{HomeTeam: "A", AwayTeam: "B"}
	assert.False(t, g.IsPlayed())

	g.Completed = true
	assert.True(t, g.IsPlayed())
	assert.False(t, g.HasScore())

	g = Game{HomeTeam: "A", AwayTeam: "B", HomePoints: intPtr(3), AwayPoints: intPtr(0)}
	assert.True(t, g.IsPlayed())
}

func TestGameMarginAndOpponent(t *testing.T) {
	g := Game{HomeTeam: "A", AwayTeam: "B", HomePoints: intPtr(20), AwayPoints: intPtr(27)}
	m, ok := g.Margin()
	assert.True(t, ok)
	assert.Equal(t, 7, m)
	assert.Equal(t, "B", g.Opponent("A"))
	assert.Equal(t, "A", g.Opponent("B"))

	own, opp, ok := g.Points("B")
	assert.True(t, ok)
	assert.Equal(t, 27, own)
	assert.Equal(t, 20, opp)
}

func TestParseClassification(t *testing.T) {
	assert.Equal(t, ClassificationFBS, ParseClassification(" FBS "))
	assert.Equal(t, ClassificationFCS, ParseClassification("fcs"))
	assert.Equal(t, ClassificationLower, ParseClassification("ii"))
	assert.Equal(t, ClassificationLower, ParseClassification(""))
}

func TestFormatRecordAndRound(t *testing.T) {
	assert.Equal(t, "5-2", FormatRecord(5, 2, 0))
	assert.Equal(t, "5-2-1", FormatRecord(5, 2, 1))
	assert.Equal(t, 1.8, Round1(5-3.2))
	assert.Equal(t, -0.3, Round1(-0.25))
	assert.Nil(t, Round1Ptr(nil))
}

func TestTopTierRecordString(t *testing.T) {
	assert.Equal(t, "2-1", TopTierRecord{Wins: 2, Losses: 1, Games: 3}.String())
	assert.Equal(t, "2-1 (2)", TopTierRecord{Wins: 2, Losses: 1, Games: 5}.String())
}
