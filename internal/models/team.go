package models

import "strings"

// Classification is a team's competitive tier.
type Classification string

const (
	ClassificationFBS   Classification = "fbs"
	ClassificationFCS   Classification = "fcs"
	ClassificationLower Classification = "lower"
)

// ParseClassification maps upstream division labels onto the three tiers.
// Anything other than fbs or fcs is treated as lower tier.
func ParseClassification(s string) Classification {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fbs", "i-a", "top":
		return ClassificationFBS
	case "fcs", "i-aa", "second":
		return ClassificationFCS
	default:
		return ClassificationLower
	}
}

// IsTopTier reports whether the classification is fbs.
func (c Classification) IsTopTier() bool {
	return c == ClassificationFBS
}

// Team is a program as known to the rating process.
type Team struct {
	Name           string         `db:"school" json:"team" validate:"required"`
	Conference     string         `db:"conference" json:"conference"`
	Classification Classification `db:"classification" json:"classification" validate:"required,oneof=fbs fcs lower"`
}

// SameConference reports whether both teams belong to the same named conference.
func (t *Team) SameConference(other *Team) bool {
	if t == nil || other == nil || t.Conference == "" {
		return false
	}
	return strings.EqualFold(t.Conference, other.Conference)
}

// RatingSnapshot holds a team's ratings for one season.
// At most one snapshot exists per (team, season).
type RatingSnapshot struct {
	Team               string  `db:"team_name" json:"team" validate:"required"`
	Season             int     `db:"season" json:"season" validate:"required,gt=1868"`
	PowerRating        float64 `db:"power_rating" json:"power_rating"`
	OffenseRating      float64 `db:"offense_rating" json:"offense_rating"`
	DefenseRating      float64 `db:"defense_rating" json:"defense_rating"`
	StrengthOfSchedule float64 `db:"strength_of_schedule" json:"strength_of_schedule"`
}
