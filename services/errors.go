package services

import "errors"

// Ошибки движка сетки. Handlers map these to HTTP statuses; none are retried here.
var (
	ErrInsufficientParticipants = errors.New("tournament needs at least 2 participants")
	ErrUnknownFormat            = errors.New("unknown tournament format")
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrMatchNotFound            = errors.New("match not found")

	// ErrRoundIncomplete means the latest round still has undecided matches.
	ErrRoundIncomplete = errors.New("current round is not complete")
	// ErrNotKnockoutFormat is returned for next-round requests on round-robin tournaments.
	ErrNotKnockoutFormat = errors.New("operation requires a knockout tournament")
	// ErrConcurrentModification means another request changed the bracket first; nothing was written.
	ErrConcurrentModification = errors.New("tournament was modified concurrently")

	ErrTournamentNotUpcoming = errors.New("tournament has already started")
	ErrTournamentNotOngoing  = errors.New("tournament is not in progress")
	ErrInvalidBestOf         = errors.New("best-of must be a positive odd number")
	ErrByeMatchScore         = errors.New("bye matches cannot be scored")
	ErrMatchCanceled         = errors.New("match was canceled")
	ErrInvalidChampion       = errors.New("champion is not a participant of this tournament")
)
