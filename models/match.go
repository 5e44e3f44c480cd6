package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusCanceled   MatchStatus = "canceled"
)

// Match is the persisted dual-slot record. A bye keeps the same participant in both
// slots with IsBye set, is created completed and names that participant as winner.
type Match struct {
	ID                   int         `json:"id" db:"id"`
	TournamentID         int         `json:"tournament_id" db:"tournament_id"`
	Round                int         `json:"round" db:"round"`
	OrderInRound         int         `json:"order_in_round" db:"order_in_round"`
	P1ParticipantID      int         `json:"p1_participant_id" db:"p1_participant_id"`
	P2ParticipantID      int         `json:"p2_participant_id" db:"p2_participant_id"`
	CourtID              *int        `json:"court_id,omitempty" db:"court_id"`
	Status               MatchStatus `json:"status" db:"status"`
	Score                *Score      `json:"score,omitempty" db:"score"`
	WinnerParticipantID  *int        `json:"winner_participant_id,omitempty" db:"winner_participant_id"`
	IsBye                bool        `json:"is_bye" db:"is_bye"`
	MatchTime            time.Time   `json:"match_time" db:"match_time"`
	// CompletionRecordedAt is set once, on the first transition to completed, and
	// never cleared. MatchCompleted is emitted only when it goes from nil to set.
	CompletionRecordedAt *time.Time  `json:"completion_recorded_at,omitempty" db:"completion_recorded_at"`
	Version              int         `json:"version" db:"version"`
	CreatedAt            time.Time   `json:"created_at" db:"created_at"`
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchStatusCompleted
}

// LoserID returns the participant that did not win a decided, non-bye match.
func (m *Match) LoserID() (int, bool) {
	if m.IsBye || m.WinnerParticipantID == nil {
		return 0, false
	}
	switch *m.WinnerParticipantID {
	case m.P1ParticipantID:
		return m.P2ParticipantID, true
	case m.P2ParticipantID:
		return m.P1ParticipantID, true
	}
	return 0, false
}
