// Package luck decomposes a team's record into market expectation, on-field
// performance and turnover variance.
//
// Sign conventions:
//
//	expected_vs_actual   = actual - expected    (positive: beat the market, lucky)
//	deserved_vs_actual   = deserved - actual    (positive: played better than the record, unlucky)
//	expected_vs_deserved = deserved - expected  (positive: played better than the market predicted)
package luck

import (
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/probability"
)

// DefaultCloseGameMargin is the widest final margin still counted as close.
const DefaultCloseGameMargin = 8

// NeutralFumbleRecoveryRate is reported when no fumbles occurred.
const NeutralFumbleRecoveryRate = 50.0

// Config holds the engine policy.
type Config struct {
	CloseGameMargin int
}

// DefaultConfig returns the default policy.
func DefaultConfig() Config {
	return Config{CloseGameMargin: DefaultCloseGameMargin}
}

// GameResult is one of the team's games with its market line and box score
// turnovers for both sides. Any of the pointers may be nil.
type GameResult struct {
	Game          *models.Game
	Line          *models.BettingLine
	TeamStats     *models.TeamGameStats
	OpponentStats *models.TeamGameStats
}

// TeamResults is the input for one team, already filtered.
type TeamResults struct {
	Team  *models.Team
	Games []GameResult
}

// Engine computes LuckBreakdown records. Safe for concurrent use.
type Engine struct {
	cfg   Config
	model probability.Model
	log   *logger.ComputationLogger
}

// NewEngine creates an Engine.
func NewEngine(cfg Config, model probability.Model, log *logrus.Logger) *Engine {
	if cfg.CloseGameMargin <= 0 {
		cfg.CloseGameMargin = DefaultCloseGameMargin
	}
	return &Engine{cfg: cfg, model: model, log: logger.NewComputationLogger(log)}
}

type turnoverTotals struct {
	teamTotalFumbles     int
	teamFumblesRecovered int
	teamFumblesLost      int
	teamIntsThrown       int
	teamIntsForced       int
	oppTotalFumbles      int
	oppFumblesLost       int
	oppIntsThrown        int
	gamesWithStats       int
}

// Compute explains the team's record over its completed games. ok is false
// when the team has no completed games.
func (e *Engine) Compute(tr TeamResults) (*models.LuckBreakdown, bool) {
	name := tr.Team.Name
	out := &models.LuckBreakdown{
		Team:           name,
		Conference:     tr.Team.Conference,
		Classification: tr.Team.Classification,
	}

	var expected float64
	var totals turnoverTotals

	for _, gr := range tr.Games {
		g := gr.Game
		if !g.IsPlayed() {
			continue
		}
		out.GamesPlayed++

		margin, scored := g.Margin()
		if !scored {
			e.log.LogIncompleteScore(name, g.ID, g.Week)
		}
		isClose := scored && margin <= e.cfg.CloseGameMargin
		switch g.Result(name) {
		case models.OutcomeWin:
			out.ActualWins++
			if isClose {
				out.CloseWins++
			}
		case models.OutcomeLoss:
			out.ActualLosses++
			if isClose {
				out.CloseLosses++
			}
		case models.OutcomeTie:
			out.ActualTies++
		}

		if p := e.model.Resolve(gr.Line, g.IsHome(name)); p.Valid {
			expected += p.Value
			out.GamesWithBetting++
		}

		if p := g.PostgameWinProbability(name); p != nil {
			out.DeservedWins += *p
		}

		totals.add(gr.TeamStats, gr.OpponentStats)
	}

	if out.GamesPlayed == 0 {
		return nil, false
	}

	actual := float64(out.ActualWins)
	out.DeservedVsActual = out.DeservedWins - actual
	if out.GamesWithBetting > 0 {
		evsa := actual - expected
		evsd := out.DeservedWins - expected
		out.ExpectedWins = &expected
		out.ExpectedVsActual = &evsa
		out.ExpectedVsDeserved = &evsd
	}
	out.Turnovers = totals.luck()
	return out, true
}

func (t *turnoverTotals) add(team, opp *models.TeamGameStats) {
	if team == nil && opp == nil {
		return
	}
	t.gamesWithStats++
	if team != nil {
		t.teamTotalFumbles += team.TotalFumbles
		t.teamFumblesRecovered += team.FumblesRecovered
		t.teamFumblesLost += team.FumblesLost
		t.teamIntsThrown += team.InterceptionsThrown
		t.teamIntsForced += team.Interceptions
	}
	if opp != nil {
		t.oppTotalFumbles += opp.TotalFumbles
		t.oppFumblesLost += opp.FumblesLost
		t.oppIntsThrown += opp.InterceptionsThrown
	}
}

func (t *turnoverTotals) luck() models.TurnoverLuck {
	out := models.TurnoverLuck{
		FumbleRecoveryRate: NeutralFumbleRecoveryRate,
		TeamTurnovers:      t.teamFumblesLost + t.teamIntsThrown,
		TeamTakeaways:      t.teamIntsForced + t.oppFumblesLost,
		TotalFumbles:       t.teamTotalFumbles + t.oppTotalFumbles,
		TotalInterceptions: t.teamIntsThrown + t.oppIntsThrown,
		GamesWithStats:     t.gamesWithStats,
	}
	out.TurnoverMargin = out.TeamTakeaways - out.TeamTurnovers

	if out.TotalFumbles > 0 {
		recovered := t.teamFumblesRecovered + t.oppFumblesLost
		out.FumbleRecoveryRate = float64(recovered) / float64(out.TotalFumbles) * 100
	}
	if out.TotalInterceptions > 0 {
		out.InterceptionRate = float64(t.teamIntsForced) / float64(out.TotalInterceptions) * 100
	}
	return out
}
