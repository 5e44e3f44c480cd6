package models

import "time"

type Participant struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Rating       float64   `json:"rating" db:"rating"`
	Wins         int       `json:"wins" db:"wins"`
	Losses       int       `json:"losses" db:"losses"`
	GamesPlayed  int       `json:"games_played" db:"games_played"`
	PartnerName  *string   `json:"partner_name,omitempty" db:"partner_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// StatsDelta is added to a participant's cumulative counters.
type StatsDelta struct {
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
	GamesPlayed int `json:"games_played"`
}
