// Package probability converts odds, spreads and rating differences into win
// probabilities. Every call site shares one normal CDF and one set of
// calibrated constants through Model.
package probability

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/gridiron-metrics/internal/models"
)

const (
	// DefaultScoringStdDev is the standard deviation of college scoring margins
	// around the spread, in points.
	DefaultScoringStdDev = 13.5
	// DefaultHomeFieldAdvantage is worth this many rating points to the host.
	DefaultHomeFieldAdvantage = 2.15
)

// Model holds the calibrated constants used to turn margins into probabilities.
type Model struct {
	StdDev             float64
	HomeFieldAdvantage float64
}

// DefaultModel returns a Model with the calibrated defaults.
func DefaultModel() Model {
	return Model{StdDev: DefaultScoringStdDev, HomeFieldAdvantage: DefaultHomeFieldAdvantage}
}

// NewModel builds a Model, falling back to defaults for non-positive inputs.
func NewModel(stdDev, homeFieldAdvantage float64) Model {
	m := DefaultModel()
	if stdDev > 0 {
		m.StdDev = stdDev
	}
	if homeFieldAdvantage >= 0 {
		m.HomeFieldAdvantage = homeFieldAdvantage
	}
	return m
}

// MoneylineToProbability returns the implied probability of American odds.
// ok is false for nil or zero odds.
func MoneylineToProbability(odds *int) (float64, bool) {
	if odds == nil || *odds == 0 {
		return 0, false
	}
	o := float64(*odds)
	if o > 0 {
		return 100 / (o + 100), true
	}
	return -o / (-o + 100), true
}

// Devig removes the bookmaker margin from a pair of implied probabilities.
func Devig(pHome, pAway float64) (home, away float64) {
	total := pHome + pAway
	if total <= 0 {
		return 0.5, 0.5
	}
	home = pHome / total
	return home, 1 - home
}

// DevigMoneylines converts and devigs a moneyline pair. ok is false unless
// both sides have valid odds.
func DevigMoneylines(homeOdds, awayOdds *int) (home, away float64, ok bool) {
	pHome, okHome := MoneylineToProbability(homeOdds)
	pAway, okAway := MoneylineToProbability(awayOdds)
	if !okHome || !okAway {
		return 0, 0, false
	}
	home, away = Devig(pHome, pAway)
	return home, away, true
}

// SpreadToProbability is the probability that a team favored by signedSpread
// points wins, under a zero-mean normal margin with the given deviation.
func (m Model) SpreadToProbability(signedSpread float64) float64 {
	return normalCDF(signedSpread, m.StdDev)
}

// RatingMatchupProbability projects a win probability from two power ratings.
func (m Model) RatingMatchupProbability(ratingSelf, ratingOpp float64, venue models.Venue) float64 {
	return m.SpreadToProbability(m.MatchupSpread(ratingSelf, ratingOpp, venue))
}

// MatchupSpread is the projected margin in ratingSelf's favor.
func (m Model) MatchupSpread(ratingSelf, ratingOpp float64, venue models.Venue) float64 {
	spread := ratingSelf - ratingOpp
	switch venue {
	case models.VenueHome:
		spread += m.HomeFieldAdvantage
	case models.VenueAway:
		spread -= m.HomeFieldAdvantage
	}
	return spread
}

// Resolve picks the best available market probability for one side of a game:
// a devigged moneyline pair, else the spread, else unavailable.
// homeSide selects the listed home team regardless of neutral site.
func (m Model) Resolve(line *models.BettingLine, homeSide bool) models.Probability {
	if line == nil {
		return models.Unavailable()
	}
	if home, away, ok := DevigMoneylines(line.HomeMoneyline, line.AwayMoneyline); ok {
		v := away
		if homeSide {
			v = home
		}
		return models.Probability{Value: v, Source: models.SourceMoneyline, Valid: true}
	}
	if line.Spread != nil {
		// Spreads are quoted for the home team; negative means home favored.
		favor := *line.Spread
		if homeSide {
			favor = -favor
		}
		return models.Probability{Value: m.SpreadToProbability(favor), Source: models.SourceSpread, Valid: true}
	}
	return models.Unavailable()
}

// SpreadToProbability uses the default scoring deviation.
func SpreadToProbability(signedSpread, stdDev float64) float64 {
	return normalCDF(signedSpread, stdDev)
}

// RatingMatchupProbability uses the default model constants.
func RatingMatchupProbability(ratingSelf, ratingOpp float64, venue models.Venue) float64 {
	return DefaultModel().RatingMatchupProbability(ratingSelf, ratingOpp, venue)
}

// Resolve uses the default model constants.
func Resolve(line *models.BettingLine, homeSide bool) models.Probability {
	return DefaultModel().Resolve(line, homeSide)
}

func normalCDF(x, sigma float64) float64 {
	if sigma <= 0 || math.IsNaN(sigma) {
		sigma = DefaultScoringStdDev
	}
	return distuv.Normal{Mu: 0, Sigma: sigma}.CDF(x)
}
