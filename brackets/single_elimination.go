package brackets

import "context"

// SingleEliminationGenerator builds round 1 of a knockout bracket. Participants are
// seeded by rating and neighbouring seeds meet (1 vs 2, 3 vs 4), not the usual
// cross-bracket 1 vs N. Later rounds come from NextRound as results arrive.
type SingleEliminationGenerator struct {
}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	seeded := SeedByRating(params.Participants)
	ids, err := participantIDs(GenerateBracketParams{Tournament: params.Tournament, Participants: seeded})
	if err != nil {
		return nil, err
	}

	return roundFromPairings(PairSequential(ids), 1), nil
}
