package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

var (
	ErrMatchTournamentInvalid  = errors.New("match tournament conflict or invalid")
	ErrMatchParticipantInvalid = errors.New("match participant conflict or invalid")
	ErrMatchInvariantViolation = errors.New("match violates bracket invariants")
)

const matchColumns = `
	id, tournament_id, round, order_in_round, p1_participant_id, p2_participant_id, court_id,
	status, score, winner_participant_id, is_bye, match_time, completion_recorded_at, version, created_at`

func scanMatch(row interface{ Scan(dest ...interface{}) error }, m *models.Match) error {
	var score models.Score
	var rawScore []byte
	if err := row.Scan(
		&m.ID, &m.TournamentID, &m.Round, &m.OrderInRound, &m.P1ParticipantID, &m.P2ParticipantID, &m.CourtID,
		&m.Status, &rawScore, &m.WinnerParticipantID, &m.IsBye, &m.MatchTime, &m.CompletionRecordedAt, &m.Version, &m.CreatedAt,
	); err != nil {
		return err
	}
	m.Score = nil
	if rawScore != nil {
		if err := score.Scan(rawScore); err != nil {
			return err
		}
		m.Score = &score
	}
	return nil
}

func (s *postgresStore) GetMatches(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `SELECT ` + matchColumns + `
		FROM matches
		WHERE tournament_id = $1
		ORDER BY round ASC, order_in_round ASC, id ASC`

	rows, err := s.exec.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, translateError(err))
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var m models.Match
		if scanErr := scanMatch(rows, &m); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		matches = append(matches, &m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// GetMatchForUpdate locks the match row until the surrounding transaction ends.
// Outside RunInTx the lock is released immediately.
func (s *postgresStore) GetMatchForUpdate(ctx context.Context, matchID int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1 FOR UPDATE`

	m := &models.Match{}
	if err := scanMatch(s.exec.QueryRowContext(ctx, query, matchID), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", matchID, translateError(err))
	}
	return m, nil
}

// SaveMatches inserts new matches and fills in their IDs, versions and timestamps.
func (s *postgresStore) SaveMatches(ctx context.Context, matches []*models.Match) ([]*models.Match, error) {
	query := `
		INSERT INTO matches
			(tournament_id, round, order_in_round, p1_participant_id, p2_participant_id, court_id,
			 status, score, winner_participant_id, is_bye, match_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, version, created_at`

	for _, m := range matches {
		err := s.exec.QueryRowContext(ctx, query,
			m.TournamentID,
			m.Round,
			m.OrderInRound,
			m.P1ParticipantID,
			m.P2ParticipantID,
			m.CourtID,
			m.Status,
			m.Score,
			m.WinnerParticipantID,
			m.IsBye,
			m.MatchTime,
		).Scan(&m.ID, &m.Version, &m.CreatedAt)
		if err != nil {
			return nil, s.handleMatchError(err)
		}
	}
	return matches, nil
}

// UpdateMatchResult writes score, status and winner when expectedVersion is current.
// A completion marker already stored is kept.
func (s *postgresStore) UpdateMatchResult(ctx context.Context, m *models.Match, expectedVersion int) error {
	query := `
		UPDATE matches
		SET score = $1, status = $2, winner_participant_id = $3,
		    completion_recorded_at = COALESCE(completion_recorded_at, $4),
		    version = version + 1
		WHERE id = $5 AND version = $6
		RETURNING completion_recorded_at, version`

	err := s.exec.QueryRowContext(ctx, query,
		m.Score, m.Status, m.WinnerParticipantID, m.CompletionRecordedAt, m.ID, expectedVersion,
	).Scan(&m.CompletionRecordedAt, &m.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if qErr := s.exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM matches WHERE id = $1)`, m.ID).Scan(&exists); qErr == nil && !exists {
				return ErrMatchNotFound
			}
			return ErrVersionConflict
		}
		return s.handleMatchError(err)
	}
	return nil
}

func (s *postgresStore) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_p1_participant_id_fkey", "matches_p2_participant_id_fkey", "matches_winner_participant_id_fkey":
			return ErrMatchParticipantInvalid
		case "matches_tournament_id_round_order_in_round_key":
			// Another generation already produced this slot.
			return fmt.Errorf("%w: %s", ErrVersionConflict, pqErr.Constraint)
		case "chk_match_distinct_slots", "chk_match_winner_completed":
			return fmt.Errorf("%w: %s", ErrMatchInvariantViolation, pqErr.Constraint)
		}
	}
	return translateError(err)
}
