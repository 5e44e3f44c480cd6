package brackets

import "context"

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket creates every match of a single round-robin up front. Each
// unordered pair plays once and every match is tagged round 1.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*BracketMatch, error) {
	ids, err := participantIDs(params)
	if err != nil {
		return nil, err
	}
	n := len(ids)

	matches := make([]*BracketMatch, 0, n*(n-1)/2)
	matchOrder := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			matchOrder++
			matches = append(matches, &BracketMatch{
				Round:        1,
				OrderInRound: matchOrder,
				Pairing:      Versus{P1: ids[i], P2: ids[j]},
			})
		}
	}
	return matches, nil
}
