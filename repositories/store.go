package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/lib/pq"
)

type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMatchNotFound       = errors.New("match not found")
	// ErrVersionConflict means another writer changed the row first.
	ErrVersionConflict = errors.New("record was modified concurrently")
)

// Store is everything the bracket engine reads and writes. Implementations must
// make RunInTx all-or-nothing: an error from fn discards every write made through tx.
type Store interface {
	GetTournament(ctx context.Context, id int) (*models.Tournament, error)
	GetParticipants(ctx context.Context, tournamentID int) ([]*models.Participant, error)
	GetMatches(ctx context.Context, tournamentID int) ([]*models.Match, error)
	GetMatchForUpdate(ctx context.Context, matchID int) (*models.Match, error)
	SaveMatches(ctx context.Context, matches []*models.Match) ([]*models.Match, error)
	UpdateMatchResult(ctx context.Context, match *models.Match, expectedVersion int) error
	UpdateTournamentStatus(ctx context.Context, tournamentID int, status models.TournamentStatus, expectedVersion int) error
	SetTournamentWinner(ctx context.Context, tournamentID int, participantID int) error
	IncrementParticipantStats(ctx context.Context, participantID int, delta models.StatsDelta) error

	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type postgresStore struct {
	db   *sql.DB
	exec SQLExecutor
	inTx bool
}

func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db, exec: db}
}

// RunInTx runs fn inside a transaction. Nested calls reuse the outer transaction.
func (s *postgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) (txErr error) {
	if s.inTx {
		return fn(ctx, s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = translateError(fmt.Errorf("failed to commit transaction: %w", cErr))
		}
	}()

	return fn(ctx, &postgresStore{db: s.db, exec: tx, inTx: true})
}

// translateError maps Postgres concurrency failures to ErrVersionConflict.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
		return fmt.Errorf("%w: %s", ErrVersionConflict, pqErr.Message)
	}
	return err
}
