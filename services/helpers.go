package services

import (
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/repositories"
)

// mapStoreError converts repository sentinels into service errors. Errors that
// are already service errors pass through unchanged.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrVersionConflict):
		return fmt.Errorf("%w: %v", ErrConcurrentModification, err)
	default:
		return err
	}
}

func mapBracketError(err error) error {
	switch {
	case errors.Is(err, brackets.ErrInsufficientParticipants):
		return fmt.Errorf("%w: %v", ErrInsufficientParticipants, err)
	case errors.Is(err, brackets.ErrUnknownFormat):
		return fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	default:
		return fmt.Errorf("failed to generate bracket structure: %w", err)
	}
}
