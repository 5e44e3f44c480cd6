package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/bracket-engine/events"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// StatsHandler keeps participant win/loss counters in step with MatchCompleted events.
type StatsHandler struct {
	store  repositories.Store
	logger *slog.Logger
}

func NewStatsHandler(store repositories.Store, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{store: store, logger: logger}
}

// HandleMatchCompleted credits the winner and the loser in one transaction.
func (h *StatsHandler) HandleMatchCompleted(ctx context.Context, evt events.MatchCompleted) error {
	if evt.WinnerID == 0 || evt.LoserID == 0 || evt.WinnerID == evt.LoserID {
		return fmt.Errorf("match %d: event has no distinct winner and loser", evt.MatchID)
	}

	err := h.store.RunInTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.IncrementParticipantStats(ctx, evt.WinnerID, models.StatsDelta{Wins: 1, GamesPlayed: 1}); err != nil {
			return fmt.Errorf("failed to credit winner %d: %w", evt.WinnerID, err)
		}
		if err := tx.IncrementParticipantStats(ctx, evt.LoserID, models.StatsDelta{Losses: 1, GamesPlayed: 1}); err != nil {
			return fmt.Errorf("failed to credit loser %d: %w", evt.LoserID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	h.logger.DebugContext(ctx, "participant stats updated",
		slog.Int("match_id", evt.MatchID),
		slog.Int("winner_id", evt.WinnerID),
		slog.Int("loser_id", evt.LoserID))
	return nil
}
