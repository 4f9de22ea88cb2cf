package adapter

import (
	"fmt"

	"github.com/yourusername/gridiron-metrics/internal/models"
)

type ratingKey struct {
	team   string
	season int
}

// RatingIndex holds at most one snapshot per (team, season).
type RatingIndex struct {
	snapshots map[ratingKey]int
	list      []models.RatingSnapshot
}

// NewRatingIndex creates an empty index.
func NewRatingIndex() *RatingIndex {
	return &RatingIndex{snapshots: make(map[ratingKey]int)}
}

// Add stores s, rejecting a second snapshot for the same team and season.
func (ix *RatingIndex) Add(s models.RatingSnapshot) error {
	k := ratingKey{s.Team, s.Season}
	if _, ok := ix.snapshots[k]; ok {
		return fmt.Errorf("%s %d: %w", s.Team, s.Season, models.ErrDuplicateSnapshot)
	}
	ix.snapshots[k] = len(ix.list)
	ix.list = append(ix.list, s)
	return nil
}

// Get returns the snapshot for team in season.
func (ix *RatingIndex) Get(team string, season int) (models.RatingSnapshot, bool) {
	i, ok := ix.snapshots[ratingKey{team, season}]
	if !ok {
		return models.RatingSnapshot{}, false
	}
	return ix.list[i], true
}

// Snapshots returns the accepted snapshots in insertion order.
func (ix *RatingIndex) Snapshots() []models.RatingSnapshot {
	out := make([]models.RatingSnapshot, len(ix.list))
	copy(out, ix.list)
	return out
}

// Len returns the number of accepted snapshots.
func (ix *RatingIndex) Len() int {
	return len(ix.list)
}
