package models

import "time"

// RoundView is one round of a bracket with its matches in play order.
type RoundView struct {
	Round     int      `json:"round"`
	Matches   []*Match `json:"matches"`
	Completed int      `json:"completed"`
}

// BracketView is the read-only projection served to bracket viewers.
type BracketView struct {
	TournamentID int              `json:"tournament_id"`
	Name         string           `json:"name"`
	Format       TournamentFormat `json:"format"`
	Status       TournamentStatus `json:"status"`
	StartDate    time.Time        `json:"start_date"`
	ChampionID   *int             `json:"champion_id,omitempty"`

	Rounds []RoundView `json:"rounds"`

	TotalMatches int `json:"total_matches"`
	Scheduled    int `json:"scheduled"`
	InProgress   int `json:"in_progress"`
	Completed    int `json:"completed"`
	Canceled     int `json:"canceled"`
	// CurrentRound is 0 only when the bracket has no matches yet.
	CurrentRound int     `json:"current_round"`
	Progress     float64 `json:"progress"`
}
