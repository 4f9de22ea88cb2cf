package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormatRecord renders "W-L", or "W-L-T" when ties occurred.
func FormatRecord(wins, losses, ties int) string {
	if ties > 0 {
		return fmt.Sprintf("%d-%d-%d", wins, losses, ties)
	}
	return fmt.Sprintf("%d-%d", wins, losses)
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

// Round1Ptr rounds v when present.
func Round1Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round1(*v)
	return &r
}

// TopTierRecord is a team's record against highly rated top-tier opponents.
type TopTierRecord struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Games  int `json:"games"`
}

// Pending returns games against top-tier opponents not yet decided.
func (r TopTierRecord) Pending() int {
	return r.Games - r.Wins - r.Losses
}

func (r TopTierRecord) String() string {
	if p := r.Pending(); p > 0 {
		return fmt.Sprintf("%d-%d (%d)", r.Wins, r.Losses, p)
	}
	return fmt.Sprintf("%d-%d", r.Wins, r.Losses)
}

// ScheduleStrength summarises a team's full schedule.
type ScheduleStrength struct {
	Team           string         `json:"team"`
	Conference     string         `json:"conference"`
	Classification Classification `json:"classification"`
	TeamRating     float64        `json:"team_rating"`
	TotalGames     int            `json:"total_games"`
	GamesPlayed    int            `json:"games_played"`
	GamesRemaining int            `json:"games_remaining"`
	ActualWins     int            `json:"actual_wins"`
	ActualLosses   int            `json:"actual_losses"`
	ActualTies     int            `json:"actual_ties"`
	ProjectedWins  float64        `json:"projected_wins"`
	WinDifference  float64        `json:"win_difference"`
	SOSOverall     float64        `json:"sos_overall"`
	SOSPlayed      float64        `json:"sos_played"`
	SOSRemaining   float64        `json:"sos_remaining"`
	TopTier        TopTierRecord  `json:"top_tier"`
	CoinflipGames  int            `json:"coinflip_games"`
	SureThingGames int            `json:"sure_thing_games"`
	LongshotGames  int            `json:"longshot_games"`
	Rank           int            `json:"rank,omitempty"`
}

// Record renders the actual record.
func (s *ScheduleStrength) Record() string {
	return FormatRecord(s.ActualWins, s.ActualLosses, s.ActualTies)
}

// TurnoverLuck aggregates fumble and interception variance.
type TurnoverLuck struct {
	FumbleRecoveryRate float64 `json:"fumble_recovery_rate"`
	InterceptionRate   float64 `json:"interception_rate"`
	TurnoverMargin     int     `json:"turnover_margin"`
	TeamTurnovers      int     `json:"team_turnovers"`
	TeamTakeaways      int     `json:"team_takeaways"`
	TotalFumbles       int     `json:"total_fumbles"`
	TotalInterceptions int     `json:"total_interceptions"`
	GamesWithStats     int     `json:"games_with_stats"`
}

// LuckBreakdown explains a team's record through market, performance and
// turnover lenses. Nil pointers mean no betting data was available.
type LuckBreakdown struct {
	Team               string         `json:"team"`
	Conference         string         `json:"conference"`
	Classification     Classification `json:"classification"`
	GamesPlayed        int            `json:"games_played"`
	ActualWins         int            `json:"actual_wins"`
	ActualLosses       int            `json:"actual_losses"`
	ActualTies         int            `json:"actual_ties"`
	ExpectedWins       *float64       `json:"expected_wins"`
	GamesWithBetting   int            `json:"games_with_betting"`
	ExpectedVsActual   *float64       `json:"expected_vs_actual"`
	DeservedWins       float64        `json:"deserved_wins"`
	DeservedVsActual   float64        `json:"deserved_vs_actual"`
	ExpectedVsDeserved *float64       `json:"expected_vs_deserved"`
	CloseWins          int            `json:"close_wins"`
	CloseLosses        int            `json:"close_losses"`
	Turnovers          TurnoverLuck   `json:"turnovers"`
	Rank               int            `json:"rank,omitempty"`
}

// CloseGameRecord renders the record in one-score games.
func (l *LuckBreakdown) CloseGameRecord() string {
	return FormatRecord(l.CloseWins, l.CloseLosses, 0)
}

// MetricRecord is the flat per-team output of one computation pass.
type MetricRecord struct {
	Team               string         `json:"team"`
	Season             int            `json:"season"`
	Conference         string         `json:"conference"`
	Classification     Classification `json:"classification"`
	TeamRating         float64        `json:"team_rating"`
	GamesPlayed        int            `json:"games_played"`
	GamesRemaining     int            `json:"games_remaining"`
	ActualWins         int            `json:"actual_wins"`
	ActualLosses       int            `json:"actual_losses"`
	ActualTies         int            `json:"actual_ties"`
	Record             string         `json:"record"`
	ProjectedWins      float64        `json:"projected_wins"`
	WinDifference      float64        `json:"win_difference"`
	SOSOverall         float64        `json:"sos_overall"`
	SOSPlayed          float64        `json:"sos_played"`
	SOSRemaining       float64        `json:"sos_remaining"`
	TopTierRecord      string         `json:"top_tier_record"`
	CoinflipGames      int            `json:"coinflip_games"`
	SureThingGames     int            `json:"sure_thing_games"`
	LongshotGames      int            `json:"longshot_games"`
	LuckAvailable      bool           `json:"luck_available"`
	ExpectedWins       *float64       `json:"expected_wins"`
	GamesWithBetting   int            `json:"games_with_betting"`
	ExpectedVsActual   *float64       `json:"expected_vs_actual"`
	DeservedWins       float64        `json:"deserved_wins"`
	DeservedVsActual   float64        `json:"deserved_vs_actual"`
	ExpectedVsDeserved *float64       `json:"expected_vs_deserved"`
	CloseGameRecord    string         `json:"close_game_record"`
	FumbleRecoveryRate float64        `json:"fumble_recovery_rate"`
	InterceptionRate   float64        `json:"interception_rate"`
	TurnoverMargin     int            `json:"turnover_margin"`
}

// Report wraps the output of one computation pass.
type Report[T any] struct {
	RunID      uuid.UUID `json:"run_id"`
	Season     int       `json:"season"`
	Filter     Filter    `json:"filter"`
	ComputedAt time.Time `json:"computed_at"`
	Teams      []T       `json:"teams"`
	Excluded   []string  `json:"excluded,omitempty"`
}
