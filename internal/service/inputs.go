package service

import (
	"github.com/yourusername/gridiron-metrics/internal/luck"
	"github.com/yourusername/gridiron-metrics/internal/models"
	"github.com/yourusername/gridiron-metrics/internal/schedule"
)

// Exclusion reasons reported in metrics and logs.
const (
	reasonNoRating         = "no_rating"
	reasonNoGames          = "no_games"
	reasonNoCompletedGames = "no_completed_games"
)

// candidates returns the teams selected by the team-level filters, in
// canonical order. Teams without a rating snapshot for the season are
// reported separately; they cannot be rated and are left out.
func candidates(d *models.Dataset, f models.Filter) (selected []*models.Team, unrated []string) {
	for _, name := range d.TeamNames() {
		t, _ := d.Team(name)
		if !f.IncludesTeam(t) {
			continue
		}
		if _, ok := d.Rating(name); !ok {
			unrated = append(unrated, name)
			continue
		}
		selected = append(selected, t)
	}
	return selected, unrated
}

// filteredGames applies the game-level pre-filters to team's schedule.
func filteredGames(d *models.Dataset, f models.Filter, team *models.Team) []*models.Game {
	games := d.GamesFor(team.Name)
	out := games[:0:0]
	for _, g := range games {
		opp, _ := d.Team(g.Opponent(team.Name))
		if f.IncludesGame(g, team, opp) {
			out = append(out, g)
		}
	}
	return out
}

func scheduleInput(d *models.Dataset, f models.Filter, team *models.Team) schedule.TeamSchedule {
	rating, _ := d.Rating(team.Name)
	games := filteredGames(d, f, team)

	ts := schedule.TeamSchedule{
		Team:   team,
		Rating: rating.PowerRating,
		Games:  make([]schedule.ScheduledGame, 0, len(games)),
	}
	for _, g := range games {
		oppName := g.Opponent(team.Name)
		sg := schedule.ScheduledGame{Game: g}
		if opp, ok := d.Team(oppName); ok {
			sg.Opponent = opp
		}
		if snap, ok := d.Rating(oppName); ok {
			sg.OpponentRating = snap
		}
		ts.Games = append(ts.Games, sg)
	}
	return ts
}

func luckInput(d *models.Dataset, f models.Filter, team *models.Team) luck.TeamResults {
	games := filteredGames(d, f, team)

	tr := luck.TeamResults{Team: team, Games: make([]luck.GameResult, 0, len(games))}
	for _, g := range games {
		gr := luck.GameResult{Game: g, Line: d.Line(g.ID)}
		if s, ok := d.StatsFor(g.ID, team.Name); ok {
			gr.TeamStats = &s
		}
		if s, ok := d.StatsFor(g.ID, g.Opponent(team.Name)); ok {
			gr.OpponentStats = &s
		}
		tr.Games = append(tr.Games, gr)
	}
	return tr
}
