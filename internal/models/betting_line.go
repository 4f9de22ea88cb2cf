package models

// BettingLine is one provider's pregame market for a game.
type BettingLine struct {
	GameID        int64    `db:"game_id" json:"game_id" validate:"required"`
	Provider      string   `db:"provider" json:"provider" validate:"required"`
	HomeMoneyline *int     `db:"home_moneyline" json:"home_moneyline,omitempty"`
	AwayMoneyline *int     `db:"away_moneyline" json:"away_moneyline,omitempty"`
	Spread        *float64 `db:"spread" json:"spread,omitempty"`
}

// HasMoneylines reports whether both sides carry a usable price.
func (l *BettingLine) HasMoneylines() bool {
	return l != nil &&
		l.HomeMoneyline != nil && *l.HomeMoneyline != 0 &&
		l.AwayMoneyline != nil && *l.AwayMoneyline != 0
}

// HasSpread reports whether a point spread is present. A pick'em (0) counts.
func (l *BettingLine) HasSpread() bool {
	return l != nil && l.Spread != nil
}

// Probability is a win probability that may be unavailable.
type Probability struct {
	Value  float64           `json:"value"`
	Source ProbabilitySource `json:"source"`
	Valid  bool              `json:"valid"`
}

// ProbabilitySource records which input produced a Probability.
type ProbabilitySource string

const (
	SourceMoneyline ProbabilitySource = "moneyline"
	SourceSpread    ProbabilitySource = "spread"
	SourceRating    ProbabilitySource = "rating"
	SourceNone      ProbabilitySource = "none"
)

// Unavailable is the zero-information Probability.
func Unavailable() Probability {
	return Probability{Source: SourceNone}
}
