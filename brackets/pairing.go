package brackets

import (
	"sort"
	"time"

	"github.com/Dosada05/bracket-engine/models"
)

// Pairing is either a Versus between two participants or a Bye for one.
type Pairing interface {
	Participants() []int
	isPairing()
}

type Versus struct {
	P1 int
	P2 int
}

func (v Versus) Participants() []int { return []int{v.P1, v.P2} }
func (Versus) isPairing()            {}

// Bye advances a participant without an opponent.
type Bye struct {
	ParticipantID int
}

func (b Bye) Participants() []int { return []int{b.ParticipantID} }
func (Bye) isPairing()            {}

type BracketMatch struct {
	Round        int
	OrderInRound int
	Pairing      Pairing
}

func (bm *BracketMatch) IsBye() bool {
	_, ok := bm.Pairing.(Bye)
	return ok
}

// SeedByRating orders participants by rating, highest first. Equal ratings keep
// their input order. The input slice is not modified.
func SeedByRating(participants []*models.Participant) []*models.Participant {
	seeded := make([]*models.Participant, len(participants))
	copy(seeded, participants)
	sort.SliceStable(seeded, func(i, j int) bool {
		return seeded[i].Rating > seeded[j].Rating
	})
	return seeded
}

// PairSequential pairs neighbours in order: 0 vs 1, 2 vs 3, and so on. With an odd
// count the one entry left unpaired gets a Bye.
func PairSequential(ids []int) []Pairing {
	pairings := make([]Pairing, 0, (len(ids)+1)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		pairings = append(pairings, Versus{P1: ids[i], P2: ids[i+1]})
	}
	if len(ids)%2 == 1 {
		pairings = append(pairings, Bye{ParticipantID: ids[len(ids)-1]})
	}
	return pairings
}

// NextRound builds the knockout round that follows from the previous round's
// winners, kept in the order their matches were played. With an odd count the
// winner with the highest original rating gets the bye (earliest in play order on
// a tie), the rest meet sequentially. Missing ratings count as 0.
func NextRound(winners []int, ratings map[int]float64, round int) []*BracketMatch {
	if len(winners)%2 == 0 {
		return roundFromPairings(PairSequential(winners), round)
	}

	byeIdx := 0
	for i, id := range winners {
		if ratings[id] > ratings[winners[byeIdx]] {
			byeIdx = i
		}
	}
	rest := make([]int, 0, len(winners)-1)
	rest = append(rest, winners[:byeIdx]...)
	rest = append(rest, winners[byeIdx+1:]...)

	pairings := PairSequential(rest)
	pairings = append(pairings, Bye{ParticipantID: winners[byeIdx]})
	return roundFromPairings(pairings, round)
}

// RatingsByID indexes participants' original ratings for NextRound.
func RatingsByID(participants []*models.Participant) map[int]float64 {
	ratings := make(map[int]float64, len(participants))
	for _, p := range participants {
		ratings[p.ID] = p.Rating
	}
	return ratings
}

func roundFromPairings(pairings []Pairing, round int) []*BracketMatch {
	out := make([]*BracketMatch, len(pairings))
	for i, p := range pairings {
		out[i] = &BracketMatch{Round: round, OrderInRound: i + 1, Pairing: p}
	}
	return out
}

// ToMatches collapses generated pairings into persisted match records. A bye
// becomes a completed self-match with the advancing participant as winner.
func ToMatches(tournamentID int, bms []*BracketMatch, matchTime time.Time) []*models.Match {
	matches := make([]*models.Match, 0, len(bms))
	for _, bm := range bms {
		m := &models.Match{
			TournamentID: tournamentID,
			Round:        bm.Round,
			OrderInRound: bm.OrderInRound,
			Status:       models.MatchStatusScheduled,
			MatchTime:    matchTime,
		}
		switch p := bm.Pairing.(type) {
		case Versus:
			m.P1ParticipantID = p.P1
			m.P2ParticipantID = p.P2
		case Bye:
			winner := p.ParticipantID
			m.P1ParticipantID = winner
			m.P2ParticipantID = winner
			m.IsBye = true
			m.Status = models.MatchStatusCompleted
			m.WinnerParticipantID = &winner
		}
		matches = append(matches, m)
	}
	return matches
}
