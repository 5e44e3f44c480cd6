package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/bracket-engine/events"
	"github.com/Dosada05/bracket-engine/metrics"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
	"github.com/Dosada05/bracket-engine/scoring"
)

// ErrMatchesListFailed - общая ошибка для листинга матчей
var ErrMatchesListFailed = errors.New("failed to list matches")

// ScoreSubmission is what a caller gets back after recording a score sheet.
// Issues are advisory; the score has been stored regardless.
type ScoreSubmission struct {
	Match         *models.Match       `json:"match"`
	Result        scoring.MatchResult `json:"result"`
	Issues        []scoring.Issue     `json:"issues"`
	JustCompleted bool                `json:"just_completed"`
}

type MatchCompletedPublisher interface {
	PublishMatchCompleted(ctx context.Context, evt events.MatchCompleted) error
}

type MatchService interface {
	SubmitScore(ctx context.Context, matchID int, score models.Score, bestOf int) (*ScoreSubmission, error)
	ListMatchesByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type MatchServiceConfig struct {
	DefaultBestOf int
	MaxGamePoints int
}

type matchService struct {
	store     repositories.Store
	publisher MatchCompletedPublisher
	metrics   *metrics.Recorder
	logger    *slog.Logger
	cfg       MatchServiceConfig
	now       func() time.Time
}

func NewMatchService(
	store repositories.Store,
	publisher MatchCompletedPublisher,
	recorder *metrics.Recorder,
	logger *slog.Logger,
	cfg MatchServiceConfig,
) MatchService {
	if cfg.DefaultBestOf <= 0 {
		cfg.DefaultBestOf = 3
	}
	if cfg.MaxGamePoints <= 0 {
		cfg.MaxGamePoints = scoring.DefaultMaxPoints
	}
	return &matchService{
		store:     store,
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SubmitScore stores a score sheet, recomputes the match outcome and, on the first
// transition to completed, emits MatchCompleted after the write has committed.
// bestOf of 0 means the configured default.
func (s *matchService) SubmitScore(ctx context.Context, matchID int, score models.Score, bestOf int) (sub *ScoreSubmission, err error) {
	started := s.now()
	defer func() { s.metrics.ObserveScoreSubmission(started, err) }()

	if bestOf == 0 {
		bestOf = s.cfg.DefaultBestOf
	}
	if bestOf < 1 || bestOf%2 == 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBestOf, bestOf)
	}

	var evt *events.MatchCompleted
	err = s.store.RunInTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		m, err := tx.GetMatchForUpdate(ctx, matchID)
		if err != nil {
			return mapStoreError(err)
		}
		if m.IsBye {
			return fmt.Errorf("%w: match %d", ErrByeMatchScore, m.ID)
		}
		if m.Status == models.MatchStatusCanceled {
			return fmt.Errorf("%w: match %d", ErrMatchCanceled, m.ID)
		}

		t, err := tx.GetTournament(ctx, m.TournamentID)
		if err != nil {
			return mapStoreError(err)
		}
		if t.Status != models.StatusOngoing {
			return fmt.Errorf("%w: tournament %d is %s", ErrTournamentNotOngoing, t.ID, t.Status)
		}

		issues := scoring.Validate(score.P1, score.P2, bestOf, s.cfg.MaxGamePoints)
		normalized := score.Normalized()
		res := scoring.MatchWinner(normalized.P1, normalized.P2, bestOf)

		expected := m.Version
		m.Score = &normalized
		applyResult(m, res)

		// Маркер ставится один раз и не сбрасывается при переоткрытии матча.
		justCompleted := m.IsCompleted() && m.CompletionRecordedAt == nil
		if justCompleted {
			at := s.now().UTC()
			m.CompletionRecordedAt = &at
		} else if m.IsCompleted() {
			s.logger.InfoContext(ctx, "completion already recorded, stats left unchanged",
				slog.Int("match_id", m.ID),
				slog.Int("winner_id", *m.WinnerParticipantID))
		}

		if err := tx.UpdateMatchResult(ctx, m, expected); err != nil {
			return mapStoreError(err)
		}

		if justCompleted {
			loser, _ := m.LoserID()
			evt = &events.MatchCompleted{
				MatchID:      m.ID,
				TournamentID: m.TournamentID,
				Round:        m.Round,
				WinnerID:     *m.WinnerParticipantID,
				LoserID:      loser,
				OccurredAt:   s.now().UTC(),
			}
		}
		if issues == nil {
			issues = []scoring.Issue{}
		}
		sub = &ScoreSubmission{Match: m, Result: res, Issues: issues, JustCompleted: justCompleted}
		return nil
	})
	if err != nil {
		err = mapStoreError(err)
		s.logger.WarnContext(ctx, "score submission rejected",
			slog.Int("match_id", matchID),
			slog.Any("error", err))
		return nil, err
	}

	if len(sub.Issues) > 0 {
		s.logger.InfoContext(ctx, "score stored with validation issues",
			slog.Int("match_id", matchID),
			slog.Int("issues", len(sub.Issues)))
	}

	if evt != nil {
		s.metrics.IncMatchCompleted()
		if s.publisher != nil {
			// Score is already committed; a lost event only leaves stats behind.
			if pubErr := s.publisher.PublishMatchCompleted(ctx, *evt); pubErr != nil {
				s.logger.ErrorContext(ctx, "failed to publish MatchCompleted",
					slog.Int("match_id", evt.MatchID),
					slog.Any("error", pubErr))
			}
		}
	}
	return sub, nil
}

// applyResult sets status and winner from an evaluated score. A completed match
// whose new sheet no longer decides it goes back to in_progress.
func applyResult(m *models.Match, res scoring.MatchResult) {
	switch {
	case res.Complete:
		winner := m.P1ParticipantID
		if res.Winner == scoring.SideB {
			winner = m.P2ParticipantID
		}
		m.Status = models.MatchStatusCompleted
		m.WinnerParticipantID = &winner
	case m.Score != nil && !m.Score.IsZero():
		m.Status = models.MatchStatusInProgress
		m.WinnerParticipantID = nil
	default:
		m.Status = models.MatchStatusScheduled
		m.WinnerParticipantID = nil
	}
}

func (s *matchService) ListMatchesByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	if _, err := s.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, mapStoreError(err)
	}
	matches, err := s.store.GetMatches(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("%w: tournament %d: %w", ErrMatchesListFailed, tournamentID, err)
	}
	if matches == nil {
		return []*models.Match{}, nil
	}
	return matches, nil
}
