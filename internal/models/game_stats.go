package models

// TeamGameStats holds one team's turnover counts in one game.
// Missing upstream values are stored as zero.
type TeamGameStats struct {
	GameID              int64  `db:"game_id" json:"game_id" validate:"required"`
	Team                string `db:"team" json:"team" validate:"required"`
	FumblesLost         int    `db:"fumbles_lost" json:"fumbles_lost" validate:"gte=0"`
	FumblesRecovered    int    `db:"fumbles_recovered" json:"fumbles_recovered" validate:"gte=0"`
	TotalFumbles        int    `db:"total_fumbles" json:"total_fumbles" validate:"gte=0"`
	Interceptions       int    `db:"interceptions" json:"interceptions" validate:"gte=0"`
	InterceptionsThrown int    `db:"interceptions_thrown" json:"interceptions_thrown" validate:"gte=0"`
}

// Turnovers returns giveaways in the game.
func (s TeamGameStats) Turnovers() int {
	return s.FumblesLost + s.InterceptionsThrown
}
