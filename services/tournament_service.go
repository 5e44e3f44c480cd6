package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/storage"
)

// BracketArchiver stores the final bracket of a completed tournament.
type BracketArchiver interface {
	Archive(ctx context.Context, view *models.BracketView) (*storage.UploadResult, error)
}

type TournamentService interface {
	GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error)
	Complete(ctx context.Context, tournamentID, championID int) (*models.Tournament, error)
}

type tournamentService struct {
	store    repositories.Store
	views    BracketViewService
	archiver BracketArchiver
	logger   *slog.Logger
}

// NewTournamentService wires the orchestration side of the engine. archiver may be nil.
func NewTournamentService(store repositories.Store, views BracketViewService, archiver BracketArchiver, logger *slog.Logger) TournamentService {
	return &tournamentService{store: store, views: views, archiver: archiver, logger: logger}
}

func (s *tournamentService) GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, mapStoreError(err)
	}
	participants, err := s.store.GetParticipants(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants for tournament %d: %w", tournamentID, err)
	}
	t.Participants = make([]models.Participant, 0, len(participants))
	for _, p := range participants {
		t.Participants = append(t.Participants, *p)
	}
	return t, nil
}

// Complete records the champion and closes an ongoing tournament. The bracket
// snapshot is archived afterwards when an archiver is configured; archive
// failures are logged and do not undo the completion.
func (s *tournamentService) Complete(ctx context.Context, tournamentID, championID int) (*models.Tournament, error) {
	var completed *models.Tournament
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		t, err := tx.GetTournament(ctx, tournamentID)
		if err != nil {
			return mapStoreError(err)
		}
		if t.Status != models.StatusOngoing {
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotOngoing, t.ID, t.Status)
		}

		participants, err := tx.GetParticipants(ctx, t.ID)
		if err != nil {
			return fmt.Errorf("failed to list participants for tournament %d: %w", t.ID, err)
		}
		if !containsParticipant(participants, championID) {
			return fmt.Errorf("%w: participant %d", ErrInvalidChampion, championID)
		}

		if err := tx.SetTournamentWinner(ctx, t.ID, championID); err != nil {
			if errors.Is(err, repositories.ErrTournamentInvalidWinner) {
				return fmt.Errorf("%w: participant %d", ErrInvalidChampion, championID)
			}
			return mapStoreError(err)
		}
		if err := tx.UpdateTournamentStatus(ctx, t.ID, models.StatusCompleted, t.Version); err != nil {
			return mapStoreError(err)
		}

		t.Status = models.StatusCompleted
		t.OverallWinnerParticipantID = &championID
		t.Version++
		completed = t
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	s.logger.InfoContext(ctx, "tournament completed",
		slog.Int("tournament_id", tournamentID),
		slog.Int("champion_id", championID))

	if s.archiver != nil {
		s.archive(ctx, tournamentID)
	}
	return completed, nil
}

func (s *tournamentService) archive(ctx context.Context, tournamentID int) {
	view, err := s.views.BuildView(ctx, tournamentID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build bracket for archive",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return
	}
	res, err := s.archiver.Archive(ctx, view)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to archive bracket",
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "bracket archived",
		slog.Int("tournament_id", tournamentID),
		slog.String("location", res.Location))
}

func containsParticipant(participants []*models.Participant, id int) bool {
	for _, p := range participants {
		if p.ID == id {
			return true
		}
	}
	return false
}
