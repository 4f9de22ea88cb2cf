// Package schedule computes strength-of-schedule figures for a team: mean
// opponent quality, projected wins, game difficulty counts and the record
// against highly rated top-tier opponents.
package schedule

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/probability"
)

// Opponent rating defaults by classification, in power-rating points.
const (
	DefaultTopTierRating    = 0.0
	DefaultSecondTierRating = -15.0
	DefaultLowerTierRating  = -25.0
)

// Game difficulty thresholds on the rating-implied win probability.
const (
	TopTierOpponentThreshold = 10.0
	SureThingThreshold       = 0.8
	LongshotThreshold        = 0.2
	CoinflipLow              = 0.4
	CoinflipHigh             = 0.6
)

// Config holds the aggregation policy.
type Config struct {
	DefaultTopTierRating     float64
	DefaultSecondTierRating  float64
	DefaultLowerTierRating   float64
	TopTierOpponentThreshold float64
	SureThingThreshold       float64
	LongshotThreshold        float64
	CoinflipLow              float64
	CoinflipHigh             float64
}

// DefaultConfig returns the calibrated policy.
func DefaultConfig() Config {
	return Config{
		DefaultTopTierRating:     DefaultTopTierRating,
		DefaultSecondTierRating:  DefaultSecondTierRating,
		DefaultLowerTierRating:   DefaultLowerTierRating,
		TopTierOpponentThreshold: TopTierOpponentThreshold,
		SureThingThreshold:       SureThingThreshold,
		LongshotThreshold:        LongshotThreshold,
		CoinflipLow:              CoinflipLow,
		CoinflipHigh:             CoinflipHigh,
	}
}

// ScheduledGame is one game with its opponent resolved. Opponent is nil when
// the opponent is unknown to the dataset; OpponentRating is nil when the
// opponent has no snapshot for the season.
type ScheduledGame struct {
	Game           *models.Game
	Opponent       *models.Team
	OpponentRating *models.RatingSnapshot
}

// TeamSchedule is the input for one team, already filtered.
type TeamSchedule struct {
	Team   *models.Team
	Rating float64
	Games  []ScheduledGame
}

// Aggregator computes ScheduleStrength records. It holds no per-team state
// and is safe for concurrent use.
type Aggregator struct {
	cfg   Config
	model probability.Model
	log   *logger.ComputationLogger
}

// NewAggregator creates an Aggregator.
func NewAggregator(cfg Config, model probability.Model, log *logrus.Logger) *Aggregator {
	return &Aggregator{cfg: cfg, model: model, log: logger.NewComputationLogger(log)}
}

// OpponentRating returns the opponent's power rating, imputing a default by
// classification when no snapshot exists. Unknown opponents are lower tier.
func (a *Aggregator) OpponentRating(opp *models.Team, snap *models.RatingSnapshot) float64 {
	if snap != nil {
		return snap.PowerRating
	}
	if opp == nil {
		return a.cfg.DefaultLowerTierRating
	}
	switch opp.Classification {
	case models.ClassificationFBS:
		return a.cfg.DefaultTopTierRating
	case models.ClassificationFCS:
		return a.cfg.DefaultSecondTierRating
	default:
		return a.cfg.DefaultLowerTierRating
	}
}

// IsTopTierOpponent reports whether an opponent counts toward the top-tier record.
func (a *Aggregator) IsTopTierOpponent(opp *models.Team, rating float64) bool {
	return opp != nil && opp.Classification.IsTopTier() && rating >= a.cfg.TopTierOpponentThreshold
}

// Compute summarises ts. ok is false when ts has no games; such teams are
// left out of the report rather than reported with zeros.
func (a *Aggregator) Compute(ts TeamSchedule) (*models.ScheduleStrength, bool) {
	if len(ts.Games) == 0 {
		return nil, false
	}

	name := ts.Team.Name
	out := &models.ScheduleStrength{
		Team:           name,
		Conference:     ts.Team.Conference,
		Classification: ts.Team.Classification,
		TeamRating:     ts.Rating,
		TotalGames:     len(ts.Games),
	}

	all := make([]float64, 0, len(ts.Games))
	var played, remaining []float64

	for _, sg := range ts.Games {
		g := sg.Game
		oppRating := a.OpponentRating(sg.Opponent, sg.OpponentRating)
		winProb := a.model.RatingMatchupProbability(ts.Rating, oppRating, g.VenueFor(name))

		out.ProjectedWins += winProb
		all = append(all, oppRating)

		if g.IsPlayed() {
			played = append(played, oppRating)
			out.GamesPlayed++
			if !g.HasScore() {
				a.log.LogIncompleteScore(name, g.ID, g.Week)
			}
			switch g.Result(name) {
			case models.OutcomeWin:
				out.ActualWins++
			case models.OutcomeLoss:
				out.ActualLosses++
			case models.OutcomeTie:
				out.ActualTies++
			}
		} else {
			remaining = append(remaining, oppRating)
			out.GamesRemaining++
		}

		if a.IsTopTierOpponent(sg.Opponent, oppRating) {
			out.TopTier.Games++
			switch g.Result(name) {
			case models.OutcomeWin:
				out.TopTier.Wins++
			case models.OutcomeLoss:
				out.TopTier.Losses++
			}
		}

		if winProb >= a.cfg.SureThingThreshold {
			out.SureThingGames++
		}
		if winProb <= a.cfg.LongshotThreshold {
			out.LongshotGames++
		}
		if winProb >= a.cfg.CoinflipLow && winProb <= a.cfg.CoinflipHigh {
			out.CoinflipGames++
		}
	}

	out.SOSOverall = mean(all)
	out.SOSPlayed = mean(played)
	out.SOSRemaining = mean(remaining)
	out.WinDifference = float64(out.ActualWins) - out.ProjectedWins
	return out, true
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}
