package repositories

import (
	"context"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
)

// GetParticipants returns a tournament's participants in registration order.
func (s *postgresStore) GetParticipants(ctx context.Context, tournamentID int) ([]*models.Participant, error) {
	query := `
		SELECT id, tournament_id, name, rating, wins, losses, games_played, partner_name, created_at
		FROM participants
		WHERE tournament_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := s.exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants for tournament %d: %w", tournamentID, translateError(err))
	}
	defer rows.Close()

	participants := make([]*models.Participant, 0)
	for rows.Next() {
		var p models.Participant
		if scanErr := rows.Scan(
			&p.ID, &p.TournamentID, &p.Name, &p.Rating,
			&p.Wins, &p.Losses, &p.GamesPlayed, &p.PartnerName, &p.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan participant row: %w", scanErr)
		}
		participants = append(participants, &p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during participant rows iteration: %w", err)
	}
	return participants, nil
}

func (s *postgresStore) IncrementParticipantStats(ctx context.Context, participantID int, delta models.StatsDelta) error {
	query := `
		UPDATE participants
		SET wins = wins + $1, losses = losses + $2, games_played = games_played + $3
		WHERE id = $4`

	result, err := s.exec.ExecContext(ctx, query, delta.Wins, delta.Losses, delta.GamesPlayed, participantID)
	if err != nil {
		return fmt.Errorf("failed to increment stats of participant %d: %w", participantID, translateError(err))
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}
