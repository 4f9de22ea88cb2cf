package models

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

var datasetVersions atomic.Uint64

// Dataset is an immutable snapshot of one season's inputs, indexed for the
// per-team lookups a computation pass performs. Build it with NewDataset and do
// not mutate it afterwards; it is shared read-only across workers.
type Dataset struct {
	Season  int
	Version uint64 // unique per NewDataset call
	Teams   []Team
	Games   []Game
	Lines   []BettingLine
	Ratings []RatingSnapshot
	Stats   []TeamGameStats

	teams       map[string]int
	ratings     map[string]int
	gamesByTeam map[string][]int
	linesByGame map[int64][]int
	stats       map[statsKey]int
}

type statsKey struct {
	gameID int64
	team   string
}

// NewDataset indexes the given records. Ratings from other seasons are ignored;
// when a team has more than one snapshot for the season the first one wins.
func NewDataset(season int, teams []Team, games []Game, lines []BettingLine, ratings []RatingSnapshot, stats []TeamGameStats) *Dataset {
	d := &Dataset{
		Season:      season,
		Version:     datasetVersions.Add(1),
		Teams:       teams,
		Games:       games,
		Lines:       lines,
		Ratings:     ratings,
		Stats:       stats,
		teams:       make(map[string]int, len(teams)),
		ratings:     make(map[string]int, len(ratings)),
		gamesByTeam: make(map[string][]int, len(teams)),
		linesByGame: make(map[int64][]int, len(games)),
		stats:       make(map[statsKey]int, len(stats)),
	}

	for i := range teams {
		if _, ok := d.teams[teams[i].Name]; !ok {
			d.teams[teams[i].Name] = i
		}
	}
	for i := range ratings {
		if ratings[i].Season != season {
			continue
		}
		if _, ok := d.ratings[ratings[i].Team]; !ok {
			d.ratings[ratings[i].Team] = i
		}
	}
	for i := range games {
		g := &games[i]
		if g.Season != season {
			continue
		}
		d.gamesByTeam[g.HomeTeam] = append(d.gamesByTeam[g.HomeTeam], i)
		d.gamesByTeam[g.AwayTeam] = append(d.gamesByTeam[g.AwayTeam], i)
	}
	for team, idx := range d.gamesByTeam {
		sort.SliceStable(idx, func(a, b int) bool {
			ga, gb := &games[idx[a]], &games[idx[b]]
			if ga.SeasonType != gb.SeasonType {
				return ga.IsRegularSeason()
			}
			if ga.Week != gb.Week {
				return ga.Week < gb.Week
			}
			return ga.ID < gb.ID
		})
		d.gamesByTeam[team] = idx
	}
	for i := range lines {
		d.linesByGame[lines[i].GameID] = append(d.linesByGame[lines[i].GameID], i)
	}
	for i := range stats {
		d.stats[statsKey{stats[i].GameID, stats[i].Team}] = i
	}
	return d
}

// Team looks up a team by name.
func (d *Dataset) Team(name string) (*Team, bool) {
	i, ok := d.teams[name]
	if !ok {
		return nil, false
	}
	return &d.Teams[i], true
}

// Rating returns the season snapshot for team.
func (d *Dataset) Rating(name string) (*RatingSnapshot, bool) {
	i, ok := d.ratings[name]
	if !ok {
		return nil, false
	}
	return &d.Ratings[i], true
}

// GamesFor returns team's season games ordered regular season first, then by week.
func (d *Dataset) GamesFor(name string) []*Game {
	idx := d.gamesByTeam[name]
	out := make([]*Game, len(idx))
	for i, gi := range idx {
		out[i] = &d.Games[gi]
	}
	return out
}

// LinesFor returns every provider's line for the game, in load order.
func (d *Dataset) LinesFor(gameID int64) []BettingLine {
	idx := d.linesByGame[gameID]
	out := make([]BettingLine, len(idx))
	for i, li := range idx {
		out[i] = d.Lines[li]
	}
	return out
}

// Line returns the first line loaded for the game, or nil.
func (d *Dataset) Line(gameID int64) *BettingLine {
	idx := d.linesByGame[gameID]
	if len(idx) == 0 {
		return nil
	}
	return &d.Lines[idx[0]]
}

// StatsFor returns team's box score turnovers for a game.
func (d *Dataset) StatsFor(gameID int64, team string) (TeamGameStats, bool) {
	i, ok := d.stats[statsKey{gameID, team}]
	if !ok {
		return TeamGameStats{}, false
	}
	return d.Stats[i], true
}

// TeamNames returns every known team name in canonical (sorted) order.
func (d *Dataset) TeamNames() []string {
	names := make([]string, 0, len(d.teams))
	for name := range d.teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Filter selects which teams and games take part in a computation pass.
type Filter struct {
	Season            int    `json:"season" validate:"required,gt=1868"`
	Classification    string `json:"classification,omitempty" validate:"omitempty,oneof=fbs fcs lower"`
	Conference        string `json:"conference,omitempty"`
	ConferenceOnly    bool   `json:"conference_only"`
	RegularSeasonOnly bool   `json:"regular_season_only"`
}

// Key identifies the filter set for caching.
func (f Filter) Key() string {
	return fmt.Sprintf("%d|%s|%s|conf=%t|reg=%t",
		f.Season,
		strings.ToLower(f.Classification),
		strings.ToLower(f.Conference),
		f.ConferenceOnly,
		f.RegularSeasonOnly,
	)
}

// IncludesTeam reports whether the team-level filters select t.
func (f Filter) IncludesTeam(t *Team) bool {
	if f.Classification != "" && string(t.Classification) != strings.ToLower(f.Classification) {
		return false
	}
	if f.Conference != "" && !strings.EqualFold(t.Conference, f.Conference) {
		return false
	}
	return true
}

// IncludesGame reports whether g survives the game-level pre-filters for team.
// opponent may be nil when the opponent is unknown to the dataset.
func (f Filter) IncludesGame(g *Game, team, opponent *Team) bool {
	if f.RegularSeasonOnly && !g.IsRegularSeason() {
		return false
	}
	if f.ConferenceOnly && !team.SameConference(opponent) {
		return false
	}
	return true
}
