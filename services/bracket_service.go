package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Dosada05/bracket-engine/brackets"
	"github.com/Dosada05/bracket-engine/metrics"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// NextRoundResult reports either the matches of a new knockout round or, when the
// last round left a single winner, that the tournament has a champion.
type NextRoundResult struct {
	Round      int             `json:"round"`
	Matches    []*models.Match `json:"matches"`
	Completed  bool            `json:"completed"`
	ChampionID *int            `json:"champion_id,omitempty"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error)
	GenerateNextRound(ctx context.Context, tournamentID int) (*NextRoundResult, error)
}

type bracketService struct {
	store   repositories.Store
	metrics *metrics.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

func NewBracketService(store repositories.Store, recorder *metrics.Recorder, logger *slog.Logger) BracketService {
	return &bracketService{
		store:   store,
		metrics: recorder,
		logger:  logger,
		now:     time.Now,
	}
}

// GenerateBracket creates round 1 for an upcoming tournament and moves it to
// ongoing. Matches and the status change commit together or not at all.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int) (saved []*models.Match, err error) {
	started := s.now()
	format := "unknown"
	defer func() { s.metrics.ObserveGeneration(format, started, err) }()

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		t, err := tx.GetTournament(ctx, tournamentID)
		if err != nil {
			return mapStoreError(err)
		}
		format = string(t.Format)
		if t.Status != models.StatusUpcoming {
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotUpcoming, t.ID, t.Status)
		}

		generator, err := brackets.NewGenerator(t.Format)
		if err != nil {
			return mapBracketError(err)
		}

		participants, err := tx.GetParticipants(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list participants for tournament %d: %w", t.ID, err)
		}

		bms, err := generator.GenerateBracket(ctx, brackets.GenerateBracketParams{Tournament: t, Participants: participants})
		if err != nil {
			return mapBracketError(err)
		}

		saved, err = tx.SaveMatches(ctx, brackets.ToMatches(t.ID, bms, t.StartDate))
		if err != nil {
			return mapStoreError(err)
		}
		return mapStoreError(tx.UpdateTournamentStatus(ctx, t.ID, models.StatusOngoing, t.Version))
	})
	if err != nil {
		err = mapStoreError(err)
		s.logger.WarnContext(ctx, "bracket generation failed",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return nil, err
	}

	s.logger.InfoContext(ctx, "bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.String("format", format),
		slog.Int("matches", len(saved)))
	return saved, nil
}

// GenerateNextRound pairs the winners of the latest knockout round. It writes
// nothing when the round is still in play or already produced the champion.
func (s *bracketService) GenerateNextRound(ctx context.Context, tournamentID int) (result *NextRoundResult, err error) {
	started := s.now()
	defer func() { s.metrics.ObserveNextRound(started, err) }()

	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		t, err := tx.GetTournament(ctx, tournamentID)
		if err != nil {
			return mapStoreError(err)
		}
		if t.Format != models.FormatKnockout {
			return fmt.Errorf("%w: tournament %d is %s", ErrNotKnockoutFormat, t.ID, t.Format)
		}
		if t.Status != models.StatusOngoing {
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotOngoing, t.ID, t.Status)
		}

		matches, err := tx.GetMatches(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", t.ID, err)
		}
		current := latestRound(matches)
		if len(current) == 0 {
			return fmt.Errorf("%w: tournament %d has no matches", ErrTournamentNotOngoing, t.ID)
		}
		round := current[0].Round

		winners := make([]int, 0, len(current))
		for _, m := range current {
			if !m.IsCompleted() {
				return fmt.Errorf("%w: match %d in round %d is %s", ErrRoundIncomplete, m.ID, round, m.Status)
			}
			if m.WinnerParticipantID == nil {
				return fmt.Errorf("match %d is completed without a winner", m.ID)
			}
			winners = append(winners, *m.WinnerParticipantID)
		}

		if len(winners) == 1 {
			champion := winners[0]
			result = &NextRoundResult{Round: round, Matches: []*models.Match{}, Completed: true, ChampionID: &champion}
			return nil
		}

		participants, err := tx.GetParticipants(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list participants for tournament %d: %w", t.ID, err)
		}
		next := brackets.NextRound(winners, brackets.RatingsByID(participants), round+1)

		saved, err := tx.SaveMatches(ctx, brackets.ToMatches(t.ID, next, s.matchTime(t)))
		if err != nil {
			return mapStoreError(err)
		}
		// Same status, but the version bump makes a concurrent caller's update fail.
		if err := tx.UpdateTournamentStatus(ctx, t.ID, models.StatusOngoing, t.Version); err != nil {
			return mapStoreError(err)
		}
		result = &NextRoundResult{Round: round + 1, Matches: saved}
		return nil
	})
	if err != nil {
		err = mapStoreError(err)
		s.logger.WarnContext(ctx, "next round generation failed",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return nil, err
	}

	if result.Completed {
		s.logger.InfoContext(ctx, "knockout decided",
			slog.Int("tournament_id", tournamentID),
			slog.Int("champion_id", *result.ChampionID))
	} else {
		s.logger.InfoContext(ctx, "next round generated",
			slog.Int("tournament_id", tournamentID),
			slog.Int("round", result.Round),
			slog.Int("matches", len(result.Matches)))
	}
	return result, nil
}

func (s *bracketService) matchTime(t *models.Tournament) time.Time {
	if now := s.now(); now.After(t.StartDate) {
		return now
	}
	return t.StartDate
}

// latestRound returns the matches of the highest round in play order.
func latestRound(matches []*models.Match) []*models.Match {
	maxRound := 0
	for _, m := range matches {
		maxRound = max(maxRound, m.Round)
	}
	current := make([]*models.Match, 0)
	for _, m := range matches {
		if m.Round == maxRound {
			current = append(current, m)
		}
	}
	sort.SliceStable(current, func(i, j int) bool {
		if current[i].OrderInRound != current[j].OrderInRound {
			return current[i].OrderInRound < current[j].OrderInRound
		}
		return current[i].ID < current[j].ID
	})
	return current
}
