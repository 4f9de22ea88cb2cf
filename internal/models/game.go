package models

// Venue is where a game is played relative to one participant.
type Venue string

const (
	VenueHome    Venue = "home"
	VenueAway    Venue = "away"
	VenueNeutral Venue = "neutral"
)

// SeasonType separates regular season games from bowls and playoffs.
type SeasonType string

const (
	SeasonTypeRegular    SeasonType = "regular"
	SeasonTypePostseason SeasonType = "postseason"
)

// Outcome is a single team's result in a decided game.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeWin
	OutcomeLoss
	OutcomeTie
)

// Game is one contest between two teams. Immutable for a computation pass.
type Game struct {
	ID                  int64      `db:"id" json:"id" validate:"required"`
	Season              int        `db:"season" json:"season" validate:"required,gt=1868"`
	Week                int        `db:"week" json:"week" validate:"gte=0"`
	SeasonType          SeasonType `db:"season_type" json:"season_type" validate:"oneof=regular postseason"`
	NeutralSite         bool       `db:"neutral_site" json:"neutral_site"`
	ConferenceGame      bool       `db:"conference_game" json:"conference_game"`
	Completed           bool       `db:"completed" json:"completed"`
	HomeTeam            string     `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam            string     `db:"away_team" json:"away_team" validate:"required,nefield=HomeTeam"`
	HomePoints          *int       `db:"home_points" json:"home_points,omitempty"`
	AwayPoints          *int       `db:"away_points" json:"away_points,omitempty"`
	HomePostgameWinProb *float64   `db:"home_postgame_win_probability" json:"home_postgame_win_probability,omitempty" validate:"omitempty,gte=0,lte=1"`
	AwayPostgameWinProb *float64   `db:"away_postgame_win_probability" json:"away_postgame_win_probability,omitempty" validate:"omitempty,gte=0,lte=1"`
}

// Involves reports whether team played in the game.
func (g *Game) Involves(team string) bool {
	return g.HomeTeam == team || g.AwayTeam == team
}

// IsHome reports whether team is the listed home side.
func (g *Game) IsHome(team string) bool {
	return g.HomeTeam == team
}

// Opponent returns the other participant.
func (g *Game) Opponent(team string) string {
	if g.HomeTeam == team {
		return g.AwayTeam
	}
	return g.HomeTeam
}

// VenueFor returns the venue from team's perspective. Neutral-site games are
// neutral for both participants.
func (g *Game) VenueFor(team string) Venue {
	switch {
	case g.NeutralSite:
		return VenueNeutral
	case g.HomeTeam == team:
		return VenueHome
	default:
		return VenueAway
	}
}

// HasScore reports whether both final scores are known.
func (g *Game) HasScore() bool {
	return g.HomePoints != nil && g.AwayPoints != nil
}

// IsPlayed reports whether the game is flagged completed or carries a final score.
func (g *Game) IsPlayed() bool {
	return g.Completed || g.HasScore()
}

// IsRegularSeason reports whether the game belongs to the regular season.
func (g *Game) IsRegularSeason() bool {
	return g.SeasonType != SeasonTypePostseason
}

// Points returns team's score and the opponent's score.
func (g *Game) Points(team string) (own, opp int, ok bool) {
	if !g.HasScore() {
		return 0, 0, false
	}
	if g.HomeTeam == team {
		return *g.HomePoints, *g.AwayPoints, true
	}
	return *g.AwayPoints, *g.HomePoints, true
}

// Margin returns the absolute scoring margin of a decided game.
func (g *Game) Margin() (int, bool) {
	if !g.HasScore() {
		return 0, false
	}
	m := *g.HomePoints - *g.AwayPoints
	if m < 0 {
		m = -m
	}
	return m, true
}

// Result returns team's outcome. OutcomeUnknown until both scores exist.
func (g *Game) Result(team string) Outcome {
	own, opp, ok := g.Points(team)
	switch {
	case !ok:
		return OutcomeUnknown
	case own > opp:
		return OutcomeWin
	case own < opp:
		return OutcomeLoss
	default:
		return OutcomeTie
	}
}

// PostgameWinProbability returns the externally supplied postgame probability
// for team, or nil when the feed did not provide one.
func (g *Game) PostgameWinProbability(team string) *float64 {
	if g.HomeTeam == team {
		return g.HomePostgameWinProb
	}
	return g.AwayPostgameWinProb
}
