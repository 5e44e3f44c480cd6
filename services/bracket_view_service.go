package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"golang.org/x/sync/errgroup"
)

type BracketViewService interface {
	BuildView(ctx context.Context, tournamentID int) (*models.BracketView, error)
}

type bracketViewService struct {
	store repositories.Store
}

func NewBracketViewService(store repositories.Store) BracketViewService {
	return &bracketViewService{store: store}
}

// BuildView loads the tournament and its matches concurrently and aggregates them.
func (s *bracketViewService) BuildView(ctx context.Context, tournamentID int) (*models.BracketView, error) {
	var (
		t       *models.Tournament
		matches []*models.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.store.GetTournament(gctx, tournamentID)
		if err != nil {
			return mapStoreError(err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = s.store.GetMatches(gctx, tournamentID)
		if err != nil {
			return fmt.Errorf("%w: tournament %d: %w", ErrMatchesListFailed, tournamentID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildBracketView(t, matches), nil
}

// BuildBracketView groups matches by round and counts them by status. The current
// round is the earliest one with a match that is not completed, or the last round
// once everything is decided.
func BuildBracketView(t *models.Tournament, matches []*models.Match) *models.BracketView {
	view := &models.BracketView{
		TournamentID: t.ID,
		Name:         t.Name,
		Format:       t.Format,
		Status:       t.Status,
		StartDate:    t.StartDate,
		ChampionID:   t.OverallWinnerParticipantID,
		Rounds:       []models.RoundView{},
		TotalMatches: len(matches),
	}

	ordered := make([]*models.Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		if a.OrderInRound != b.OrderInRound {
			return a.OrderInRound < b.OrderInRound
		}
		return a.ID < b.ID
	})

	firstOpen, lastRound := 0, 0
	for _, m := range ordered {
		if n := len(view.Rounds); n == 0 || view.Rounds[n-1].Round != m.Round {
			view.Rounds = append(view.Rounds, models.RoundView{Round: m.Round, Matches: []*models.Match{}})
		}
		rv := &view.Rounds[len(view.Rounds)-1]
		rv.Matches = append(rv.Matches, m)
		lastRound = m.Round

		switch m.Status {
		case models.MatchStatusScheduled:
			view.Scheduled++
		case models.MatchStatusInProgress:
			view.InProgress++
		case models.MatchStatusCompleted:
			view.Completed++
			rv.Completed++
		case models.MatchStatusCanceled:
			view.Canceled++
		}
		if !m.IsCompleted() && firstOpen == 0 {
			firstOpen = m.Round
		}
	}

	view.CurrentRound = firstOpen
	if view.CurrentRound == 0 {
		view.CurrentRound = lastRound
	}
	if view.TotalMatches > 0 {
		view.Progress = float64(view.Completed) / float64(view.TotalMatches) * 100
	}
	return view
}
