// Package scoring decides game and match winners from raw point totals.
//
// A game is won by the first side to reach PointsToWin with a lead of at least
// MinLead. A best-of-N match is won by the first side to take (N+1)/2 games.
package scoring

const (
	PointsToWin = 11
	MinLead     = 2
)

// Side identifies one of the two slots of a match.
type Side int

const (
	SideNone Side = iota
	SideA
	SideB
)

func (s Side) String() string {
	switch s {
	case SideA:
		return "A"
	case SideB:
		return "B"
	default:
		return "none"
	}
}

type GameResult struct {
	Winner   Side `json:"winner"`
	Complete bool `json:"complete"`
}

// GameWinner applies the 11-point, win-by-two rule. Scores are not bounded here:
// 13-11 is a finished deuce game, 11-10 is still in play.
func GameWinner(a, b int) GameResult {
	switch {
	case a >= PointsToWin && a-b >= MinLead:
		return GameResult{Winner: SideA, Complete: true}
	case b >= PointsToWin && b-a >= MinLead:
		return GameResult{Winner: SideB, Complete: true}
	default:
		return GameResult{Winner: SideNone, Complete: false}
	}
}

type GamesWon struct {
	A int `json:"a"`
	B int `json:"b"`
}

type MatchResult struct {
	Complete bool     `json:"complete"`
	Winner   Side     `json:"winner"`
	GamesWon GamesWon `json:"games_won"`
}

// GamesNeeded returns how many games decide a best-of-N match.
func GamesNeeded(bestOf int) int {
	if bestOf < 1 {
		bestOf = 1
	}
	return (bestOf + 1) / 2
}

// MatchWinner tallies finished games across both sequences. A missing trailing
// entry counts as zero points. The winner is the side that reached GamesNeeded
// first in game order; games recorded after that point are still tallied.
func MatchWinner(a, b []int, bestOf int) MatchResult {
	need := GamesNeeded(bestOf)
	games := max(len(a), len(b))

	var res MatchResult
	for i := 0; i < games; i++ {
		g := GameWinner(at(a, i), at(b, i))
		switch g.Winner {
		case SideA:
			res.GamesWon.A++
		case SideB:
			res.GamesWon.B++
		}
		if res.Complete {
			continue
		}
		if res.GamesWon.A >= need {
			res.Complete, res.Winner = true, SideA
		} else if res.GamesWon.B >= need {
			res.Complete, res.Winner = true, SideB
		}
	}
	return res
}

func at(s []int, i int) int {
	if i < len(s) {
		return s[i]
	}
	return 0
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
