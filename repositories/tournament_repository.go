package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var ErrTournamentInvalidWinner = errors.New("invalid overall winner reference")

func (s *postgresStore) GetTournament(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, format, status, start_date, overall_winner_participant_id, version, created_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := s.exec.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.Name, &t.Format, &t.Status, &t.StartDate,
		&t.OverallWinnerParticipantID, &t.Version, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", id, translateError(err))
	}
	return t, nil
}

// UpdateTournamentStatus sets the status and bumps the version, but only if the
// caller's version is still current.
func (s *postgresStore) UpdateTournamentStatus(ctx context.Context, tournamentID int, status models.TournamentStatus, expectedVersion int) error {
	query := `UPDATE tournaments SET status = $1, version = version + 1 WHERE id = $2 AND version = $3`
	result, err := s.exec.ExecContext(ctx, query, status, tournamentID, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update status of tournament %d: %w", tournamentID, translateError(err))
	}
	if err := checkAffectedRows(result, ErrVersionConflict); err != nil {
		return s.tournamentMissingOr(ctx, tournamentID, err)
	}
	return nil
}

func (s *postgresStore) SetTournamentWinner(ctx context.Context, tournamentID int, participantID int) error {
	query := `UPDATE tournaments SET overall_winner_participant_id = $1 WHERE id = $2`
	result, err := s.exec.ExecContext(ctx, query, participantID, tournamentID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrTournamentInvalidWinner
		}
		return fmt.Errorf("failed to update tournament overall winner for tournament %d: %w", tournamentID, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

// tournamentMissingOr distinguishes a deleted tournament from a stale version.
func (s *postgresStore) tournamentMissingOr(ctx context.Context, tournamentID int, err error) error {
	var exists bool
	if qErr := s.exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE id = $1)`, tournamentID).Scan(&exists); qErr != nil {
		return fmt.Errorf("%w (existence check failed: %v)", err, qErr)
	}
	if !exists {
		return ErrTournamentNotFound
	}
	return err
}
