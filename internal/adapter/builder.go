package adapter

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-metrics/internal/logger"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

// RawDataset is one season of upstream records before normalization.
type RawDataset struct {
	Teams   []Record
	Games   []Record
	Lines   []Record
	Ratings []Record
	Stats   []Record
}

// Builder turns a RawDataset into an indexed models.Dataset. Each game keeps
// only the line chosen by the provider preference.
type Builder struct {
	norm       *Normalizer
	preference []string
	log        *logger.IngestionLogger
}

// NewBuilder creates a Builder.
func NewBuilder(norm *Normalizer, preference []string, log *logrus.Logger) *Builder {
	if len(preference) == 0 {
		preference = DefaultProviderPreference
	}
	return &Builder{norm: norm, preference: preference, log: logger.NewIngestionLogger(log)}
}

// Build normalizes every record. Invalid records are logged and dropped;
// Build only fails on an unusable season.
func (b *Builder) Build(season int, raw RawDataset) (*models.Dataset, error) {
	if season <= 1868 {
		return nil, models.NewValidationError(models.ValidationOutOfRange, "season", fmt.Sprintf("invalid season %d", season))
	}

	teams, known := b.teams(raw)
	games := b.games(season, raw.Games, &teams, known)
	lines := b.lines(raw.Lines, games)
	ratings := b.ratings(season, raw.Ratings)
	stats := b.stats(raw.Stats)

	b.log.LogRecordsLoaded(season, len(teams), len(games), len(lines), len(ratings), len(stats))
	return models.NewDataset(season, teams, games, lines, ratings, stats), nil
}

func (b *Builder) teams(raw RawDataset) ([]models.Team, map[string]bool) {
	teams := make([]models.Team, 0, len(raw.Teams))
	known := make(map[string]bool, len(raw.Teams))
	for _, r := range raw.Teams {
		t, err := b.norm.Team(r)
		if err != nil {
			b.log.LogRecordRejected("team", t.Name, err)
			continue
		}
		if known[t.Name] {
			continue
		}
		known[t.Name] = true
		teams = append(teams, t)
	}
	return teams, known
}

func (b *Builder) games(season int, rows []Record, teams *[]models.Team, known map[string]bool) []models.Game {
	games := make([]models.Game, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	for _, r := range rows {
		g, err := b.norm.Game(r)
		if err != nil {
			b.log.LogRecordRejected("game", strconv.FormatInt(g.ID, 10), err)
			continue
		}
		if g.Season != season || seen[g.ID] {
			continue
		}
		seen[g.ID] = true
		games = append(games, g)

		// Teams missing from the teams feed are learned from the game row.
		for _, t := range b.norm.GameTeams(r) {
			if !known[t.Name] {
				known[t.Name] = true
				*teams = append(*teams, t)
			}
		}
	}
	return games
}

func (b *Builder) lines(rows []Record, games []models.Game) []models.BettingLine {
	byGame := make(map[int64][]models.BettingLine)
	for _, r := range rows {
		ls, err := b.norm.BettingLines(r)
		if err != nil {
			b.log.LogRecordRejected("betting_line", "", err)
		}
		for _, l := range ls {
			byGame[l.GameID] = append(byGame[l.GameID], l)
		}
	}

	out := make([]models.BettingLine, 0, len(games))
	for i := range games {
		if l := SelectLine(byGame[games[i].ID], b.preference); l != nil {
			out = append(out, *l)
		}
	}
	return out
}

func (b *Builder) ratings(season int, rows []Record) []models.RatingSnapshot {
	ix := NewRatingIndex()
	for _, r := range rows {
		s, err := b.norm.Rating(r, season)
		if err != nil {
			b.log.LogRecordRejected("rating", s.Team, err)
			continue
		}
		if err := ix.Add(s); err != nil {
			b.log.LogRecordRejected("rating", s.Team, err)
		}
	}
	return ix.Snapshots()
}

func (b *Builder) stats(rows []Record) []models.TeamGameStats {
	out := make([]models.TeamGameStats, 0, len(rows))
	for _, r := range rows {
		ss, err := b.norm.GameStats(r)
		if err != nil {
			b.log.LogRecordRejected("game_stats", "", err)
		}
		out = append(out, ss...)
	}
	return out
}
