package adapter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/metrics"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

// percentTolerance is how far a percentage pair may stray from 100 after
// upstream rounding.
const percentTolerance = 0.5

// Normalizer coerces Records into canonical entities. Malformed values are
// logged, counted and treated as missing; the record itself is kept.
type Normalizer struct {
	validate *validator.Validate
	log      *logger.IngestionLogger
}

// NewNormalizer creates a Normalizer logging through log.
func NewNormalizer(log *logrus.Logger) *Normalizer {
	return &Normalizer{
		validate: validator.New(),
		log:      logger.NewIngestionLogger(log),
	}
}

// Team converts a teams row.
func (n *Normalizer) Team(r Record) (models.Team, error) {
	t := models.Team{
		Name:           n.str(r, teamNameAliases...),
		Conference:     n.str(r, conferenceAliases...),
		Classification: models.ParseClassification(n.str(r, classificationAliases...)),
	}
	return t, n.check("team", t)
}

// Game converts a games row.
func (n *Normalizer) Game(r Record) (models.Game, error) {
	g := models.Game{
		ID:                  n.id(r, "game", gameIDAliases...),
		Season:              n.intOr(r, "game", 0, seasonAliases...),
		Week:                n.intOr(r, "game", 0, weekAliases...),
		SeasonType:          parseSeasonType(n.str(r, seasonTypeAliases...)),
		NeutralSite:         n.boolean(r, "game", neutralSiteAliases...),
		ConferenceGame:      n.boolean(r, "game", conferenceGameAliases...),
		Completed:           n.boolean(r, "game", completedAliases...),
		HomeTeam:            n.str(r, homeTeamAliases...),
		AwayTeam:            n.str(r, awayTeamAliases...),
		HomePoints:          n.intPtr(r, "game", homePointsAliases...),
		AwayPoints:          n.intPtr(r, "game", awayPointsAliases...),
	}
	g.HomePostgameWinProb, g.AwayPostgameWinProb = n.postgame(r)
	return g, n.check("game", g)
}

// GameTeams extracts the participants' team records embedded in a games row,
// for feeds that carry conference and classification inline.
func (n *Normalizer) GameTeams(r Record) []models.Team {
	var out []models.Team
	if name := n.str(r, homeTeamAliases...); name != "" {
		out = append(out, models.Team{
			Name:           name,
			Conference:     n.str(r, homeConferenceAliases...),
			Classification: models.ParseClassification(n.str(r, homeClassificationKeys...)),
		})
	}
	if name := n.str(r, awayTeamAliases...); name != "" {
		out = append(out, models.Team{
			Name:           name,
			Conference:     n.str(r, awayConferenceAliases...),
			Classification: models.ParseClassification(n.str(r, awayClassificationKeys...)),
		})
	}
	return out
}

// BettingLine converts one provider's line. gameID is used when the row does
// not carry its own game id (nested API shape).
func (n *Normalizer) BettingLine(r Record, gameID int64) (models.BettingLine, error) {
	id := n.id(r, "betting_line", gameIDAliases...)
	if id == 0 {
		id = gameID
	}
	l := models.BettingLine{
		GameID:        id,
		Provider:      n.str(r, providerAliases...),
		HomeMoneyline: n.intPtr(r, "betting_line", homeMoneylineAliases...),
		AwayMoneyline: n.intPtr(r, "betting_line", awayMoneylineAliases...),
		Spread:        n.floatPtr(r, "betting_line", spreadAliases...),
	}
	if l.HomeMoneyline != nil && *l.HomeMoneyline == 0 {
		l.HomeMoneyline = nil
	}
	if l.AwayMoneyline != nil && *l.AwayMoneyline == 0 {
		l.AwayMoneyline = nil
	}
	return l, n.check("betting_line", l)
}

// BettingLines expands a game object holding a "lines" array. Rows without
// that array are treated as a single flat line.
func (n *Normalizer) BettingLines(r Record) ([]models.BettingLine, error) {
	raw, ok := r["lines"].([]any)
	if !ok {
		l, err := n.BettingLine(r, 0)
		if err != nil {
			return nil, err
		}
		return []models.BettingLine{l}, nil
	}

	gameID := n.id(r, "betting_line", gameIDAliases...)
	out := make([]models.BettingLine, 0, len(raw))
	var errs []error
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		l, err := n.BettingLine(Flatten(m), gameID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, l)
	}
	return out, errors.Join(errs...)
}

// Rating converts a ratings row. season is used when the row has none.
// Non-numeric ratings are treated as zero, matching the import behavior.
func (n *Normalizer) Rating(r Record, season int) (models.RatingSnapshot, error) {
	s := models.RatingSnapshot{
		Team:               n.str(r, teamNameAliases...),
		Season:             n.intOr(r, "rating", season, seasonAliases...),
		PowerRating:        n.floatOr(r, "rating", 0, powerAliases...),
		OffenseRating:      n.floatOr(r, "rating", 0, offenseAliases...),
		DefenseRating:      n.floatOr(r, "rating", 0, defenseAliases...),
		StrengthOfSchedule: n.floatOr(r, "rating", 0, sosAliases...),
	}
	return s, n.check("rating", s)
}

// GameStats converts box score turnovers. It accepts a game object with a
// "teams" array, a single team object with a "stats" array of
// {category, stat} pairs, or a flat row with snake_case columns.
func (n *Normalizer) GameStats(r Record) ([]models.TeamGameStats, error) {
	gameID := n.id(r, "game_stats", gameIDAliases...)

	if teams, ok := r["teams"].([]any); ok {
		out := make([]models.TeamGameStats, 0, len(teams))
		var errs []error
		for _, item := range teams {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s, err := n.teamStats(Record(m), gameID)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, s)
		}
		return out, errors.Join(errs...)
	}

	s, err := n.teamStats(r, gameID)
	if err != nil {
		return nil, err
	}
	return []models.TeamGameStats{s}, nil
}

func (n *Normalizer) teamStats(r Record, gameID int64) (models.TeamGameStats, error) {
	flat := Record{}
	for k, v := range r {
		flat[k] = v
	}
	if stats, ok := r["stats"].([]any); ok {
		for _, item := range stats {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			column, known := statCategories[cast.ToString(m["category"])]
			if known {
				flat[column] = m["stat"]
			}
		}
	}

	s := models.TeamGameStats{
		GameID:              gameID,
		Team:                n.str(flat, statsTeamAliases...),
		FumblesLost:         n.count(flat, "fumbles_lost"),
		FumblesRecovered:    n.count(flat, "fumbles_recovered"),
		TotalFumbles:        n.count(flat, "total_fumbles"),
		Interceptions:       n.count(flat, "interceptions"),
		InterceptionsThrown: n.count(flat, "interceptions_thrown"),
	}
	if s.GameID == 0 {
		s.GameID = n.id(flat, "game_stats", gameIDAliases...)
	}
	return s, n.check("game_stats", s)
}

func (n *Normalizer) check(entity string, v any) error {
	if err := n.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			code := models.ValidationMalformed
			if fe.Tag() == "required" {
				code = models.ValidationRequired
			}
			return models.NewValidationError(
				code,
				entity+"."+strings.ToLower(fe.StructField()),
				fmt.Sprintf("failed %q constraint", fe.Tag()),
			)
		}
		return fmt.Errorf("validate %s: %w", entity, err)
	}
	return nil
}

func (n *Normalizer) malformed(entity, field string, value any, err error) {
	n.log.LogMalformedInput(entity, field, value, err)
	metrics.RecordMalformedInput(entity, field)
}

func (n *Normalizer) str(r Record, aliases ...string) string {
	v, ok := r.Lookup(aliases...)
	if !ok {
		return ""
	}
	return normalizeName(cast.ToString(v))
}

// raw returns the value and the alias it came from, treating blank strings
// as absent.
func raw(r Record, aliases ...string) (any, string, bool) {
	for _, a := range aliases {
		v, ok := r[a]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, a, true
	}
	return nil, "", false
}

func (n *Normalizer) floatPtr(r Record, entity string, aliases ...string) *float64 {
	v, field, ok := raw(r, aliases...)
	if !ok {
		return nil
	}
	if s, isStr := v.(string); isStr {
		v = strings.TrimPrefix(strings.TrimSpace(s), "+")
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		if err == nil {
			err = fmt.Errorf("non-finite value")
		}
		n.malformed(entity, field, v, err)
		return nil
	}
	return &f
}

func (n *Normalizer) floatOr(r Record, entity string, def float64, aliases ...string) float64 {
	if f := n.floatPtr(r, entity, aliases...); f != nil {
		return *f
	}
	return def
}

func (n *Normalizer) intPtr(r Record, entity string, aliases ...string) *int {
	f := n.floatPtr(r, entity, aliases...)
	if f == nil {
		return nil
	}
	i := int(math.Round(*f))
	return &i
}

func (n *Normalizer) intOr(r Record, entity string, def int, aliases ...string) int {
	if i := n.intPtr(r, entity, aliases...); i != nil {
		return *i
	}
	return def
}

func (n *Normalizer) id(r Record, entity string, aliases ...string) int64 {
	v, field, ok := raw(r, aliases...)
	if !ok {
		return 0
	}
	id, err := cast.ToInt64E(v)
	if err != nil {
		if f, ferr := cast.ToFloat64E(v); ferr == nil {
			return int64(f)
		}
		n.malformed(entity, field, v, err)
		return 0
	}
	return id
}

func (n *Normalizer) boolean(r Record, entity string, aliases ...string) bool {
	v, field, ok := raw(r, aliases...)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		n.malformed(entity, field, v, err)
		return false
	}
	return b
}

// probability reads a postgame win probability, accepting 0-1 or percentages.
// postgame reads the home/away postgame win probabilities. Values on a 0-100
// scale are accepted only when both sides are present and sum to 100; any
// other value outside [0, 1] is malformed.
func (n *Normalizer) postgame(r Record) (home, away *float64) {
	home = n.floatPtr(r, "game", homePostgameAliases...)
	away = n.floatPtr(r, "game", awayPostgameAliases...)

	scale := 1.0
	if home != nil && away != nil && (*home > 1 || *away > 1) && math.Abs(*home+*away-100) <= percentTolerance {
		scale = 100
	}
	return n.probability(r, home, scale, homePostgameAliases...), n.probability(r, away, scale, awayPostgameAliases...)
}

func (n *Normalizer) probability(r Record, p *float64, scale float64, aliases ...string) *float64 {
	if p == nil {
		return nil
	}
	v := *p / scale
	if v < 0 || v > 1 {
		_, field, _ := raw(r, aliases...)
		n.malformed("game", field, *p, fmt.Errorf("probability out of range"))
		return nil
	}
	return &v
}

// count reads a non-negative box score count; missing or malformed is zero.
func (n *Normalizer) count(r Record, column string) int {
	i := n.intPtr(r, "game_stats", column)
	if i == nil || *i < 0 {
		return 0
	}
	return *i
}

func parseSeasonType(s string) models.SeasonType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postseason", "post", "bowl", "playoff":
		return models.SeasonTypePostseason
	default:
		return models.SeasonTypeRegular
	}
}
