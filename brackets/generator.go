package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

var (
	ErrInsufficientParticipants = errors.New("not enough participants to generate a bracket (minimum 2)")
	ErrUnknownFormat            = errors.New("unknown tournament format")
	ErrDuplicateParticipant     = errors.New("participant listed more than once")
)

const MinParticipants = 2

type GenerateBracketParams struct {
	Tournament   *models.Tournament
	Participants []*models.Participant
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error)

	GetName() string
}

// NewGenerator returns the generator for a tournament format.
func NewGenerator(format models.TournamentFormat) (BracketGenerator, error) {
	switch format {
	case models.FormatKnockout:
		return NewSingleEliminationGenerator(), nil
	case models.FormatRoundRobin:
		return NewRoundRobinGenerator(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func participantIDs(params GenerateBracketParams) ([]int, error) {
	n := len(params.Participants)
	if n < MinParticipants {
		return nil, fmt.Errorf("%w: found %d", ErrInsufficientParticipants, n)
	}
	seen := make(map[int]struct{}, n)
	ids := make([]int, 0, n)
	for _, p := range params.Participants {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateParticipant, p.ID)
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids, nil
}
