// Package adapter normalizes loosely typed upstream records (API JSON, SQL
// rows, CSV lines) into the canonical models used by the metric engines.
package adapter

import (
	"strings"
)

// Record is one upstream row keyed by field name. Values may be numbers,
// stringy numbers, booleans, nil or nested objects.
type Record map[string]any

// Lookup returns the first alias present with a non-nil value.
func (r Record) Lookup(aliases ...string) (any, bool) {
	for _, a := range aliases {
		if v, ok := r[a]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Records converts decoded JSON objects into Records.
func Records(rows []map[string]any) []Record {
	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = Record(row)
	}
	return out
}

// Flatten lifts nested objects into dotted keys, so {"home":{"points":3}}
// becomes {"home.points":3}. Arrays are kept as-is.
func Flatten(in map[string]any) Record {
	out := make(Record, len(in))
	flattenInto(out, "", in)
	return out
}

func flattenInto(out Record, prefix string, in map[string]any) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenInto(out, key, nested)
			continue
		}
		out[key] = v
	}
}

// Field aliases per canonical attribute, snake_case database columns first,
// then the camelCase API spelling.
var (
	teamNameAliases       = []string{"school", "team_name", "team", "Team Name", "name"}
	conferenceAliases     = []string{"conference", "Conference"}
	classificationAliases = []string{"classification", "division"}

	gameIDAliases          = []string{"id", "game_id", "gameId"}
	seasonAliases          = []string{"season", "year"}
	weekAliases            = []string{"week"}
	seasonTypeAliases      = []string{"season_type", "seasonType"}
	neutralSiteAliases     = []string{"neutral_site", "neutralSite"}
	conferenceGameAliases  = []string{"conference_game", "conferenceGame"}
	completedAliases       = []string{"completed"}
	homeTeamAliases        = []string{"home_team", "homeTeam", "home.team", "home.school"}
	awayTeamAliases        = []string{"away_team", "awayTeam", "away.team", "away.school"}
	homePointsAliases      = []string{"home_points", "homePoints", "homeScore", "home.points"}
	awayPointsAliases      = []string{"away_points", "awayPoints", "awayScore", "away.points"}
	homePostgameAliases    = []string{"home_postgame_win_probability", "homePostgameWinProbability", "homePostgameWinProb", "home.postgameWinProbability"}
	awayPostgameAliases    = []string{"away_postgame_win_probability", "awayPostgameWinProbability", "awayPostgameWinProb", "away.postgameWinProbability"}
	homeConferenceAliases  = []string{"home_conference", "homeConference", "home.conference"}
	awayConferenceAliases  = []string{"away_conference", "awayConference", "away.conference"}
	homeClassificationKeys = []string{"home_classification", "homeClassification", "home.classification"}
	awayClassificationKeys = []string{"away_classification", "awayClassification", "away.classification"}

	providerAliases      = []string{"provider", "provider_name"}
	homeMoneylineAliases = []string{"home_moneyline", "homeMoneyline"}
	awayMoneylineAliases = []string{"away_moneyline", "awayMoneyline"}
	spreadAliases        = []string{"spread", "point_spread"}

	powerAliases   = []string{"power_rating", "powerRating", "Power Rating", "rating"}
	offenseAliases = []string{"offense_rating", "offenseRating", "Offense Rating", "offense.rating"}
	defenseAliases = []string{"defense_rating", "defenseRating", "Defense Rating", "defense.rating"}
	sosAliases     = []string{"strength_of_schedule", "strengthOfSchedule", "Strength of Schedule", "sos"}

	statsTeamAliases = []string{"team", "school"}
)

// Box score categories as spelled by the stats API.
var statCategories = map[string]string{
	"interceptions":     "interceptions_thrown",
	"passesIntercepted": "interceptions",
	"fumblesRecovered":  "fumbles_recovered",
	"fumblesLost":       "fumbles_lost",
	"totalFumbles":      "total_fumbles",
}

// normalizeName trims whitespace; team names are otherwise kept verbatim
// because they are join keys across feeds.
func normalizeName(s string) string {
	return strings.TrimSpace(s)
}
