package scoring

import "fmt"

// DefaultMaxPoints is the plausibility ceiling used when none is configured.
const DefaultMaxPoints = 30

// Issue is a soft validation finding. Issues never block a score submission.
type Issue struct {
	Game    int    `json:"game"`
	Side    Side   `json:"side"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Side == SideNone {
		return fmt.Sprintf("game %d: %s", i.Game+1, i.Message)
	}
	return fmt.Sprintf("game %d side %s: %s", i.Game+1, i.Side, i.Message)
}

// Validate flags score sheets that are legal to evaluate but probably mistyped.
// Game is the zero-based game index; -1 marks sheet-level findings.
func Validate(a, b []int, bestOf, maxPoints int) []Issue {
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}

	var issues []Issue
	if len(a) != len(b) {
		issues = append(issues, Issue{Game: -1, Message: fmt.Sprintf("score sequences differ in length (%d vs %d), missing games count as 0", len(a), len(b))})
	}

	games := max(len(a), len(b))
	if bestOf > 0 && games > bestOf {
		issues = append(issues, Issue{Game: -1, Message: fmt.Sprintf("%d games recorded for a best of %d", games, bestOf)})
	}

	need := GamesNeeded(bestOf)
	var wonA, wonB int
	for i := 0; i < games; i++ {
		pa, pb := at(a, i), at(b, i)
		for _, side := range []struct {
			side   Side
			points int
		}{{SideA, pa}, {SideB, pb}} {
			if side.points < 0 {
				issues = append(issues, Issue{Game: i, Side: side.side, Message: "negative points"})
			}
			if side.points > maxPoints {
				issues = append(issues, Issue{Game: i, Side: side.side, Message: fmt.Sprintf("points above plausible maximum %d", maxPoints)})
			}
		}

		if wonA >= need || wonB >= need {
			if pa != 0 || pb != 0 {
				issues = append(issues, Issue{Game: i, Message: "game recorded after the match was decided"})
			}
			continue
		}

		g := GameWinner(pa, pb)
		if g.Complete {
			// Past 11 a game ends the moment the lead reaches two.
			hi, lo := max(pa, pb), min(pa, pb)
			if hi > PointsToWin && hi-lo != MinLead {
				issues = append(issues, Issue{Game: i, Side: g.Winner, Message: "game continued past the winning point"})
			}
			if g.Winner == SideA {
				wonA++
			} else {
				wonB++
			}
		} else if i < games-1 && (pa != 0 || pb != 0) {
			issues = append(issues, Issue{Game: i, Message: "unfinished game followed by further games"})
		}
	}
	return issues
}
