package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusOngoing   TournamentStatus = "ongoing"
	StatusCompleted TournamentStatus = "completed"
)

// TournamentFormat selects the bracket generator.
type TournamentFormat string

const (
	FormatKnockout   TournamentFormat = "knockout"
	FormatRoundRobin TournamentFormat = "round_robin"
)

// Tournament представляет турнир.
type Tournament struct {
	ID                         int              `json:"id" db:"id"`
	Name                       string           `json:"name" db:"name"`
	Format                     TournamentFormat `json:"format" db:"format"`
	Status                     TournamentStatus `json:"status" db:"status"`
	StartDate                  time.Time        `json:"start_date" db:"start_date"`
	OverallWinnerParticipantID *int             `json:"overall_winner_participant_id,omitempty" db:"overall_winner_participant_id"`
	// Version is bumped by every bracket mutation and guards generation against concurrent callers.
	Version   int       `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Participants []Participant `json:"participants,omitempty" db:"-"`
}
