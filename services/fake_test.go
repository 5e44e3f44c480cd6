package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/bracket-engine/events"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/repositories"
)

// ------------------------
// Fake Store
// ------------------------

// FakeStore is an in-memory repositories.Store. RunInTx snapshots the state and
// restores it when fn fails, so tests can check the all-or-nothing contract.
type FakeStore struct {
	mu    sync.Mutex
	trace []string

	tournaments  map[int]*models.Tournament
	participants map[int]*models.Participant
	matches      map[int]*models.Match
	nextMatchID  int

	// Hooks run before the matching method touches state. A non-nil error is returned as is.
	SaveMatchesHook            func(matches []*models.Match) error
	UpdateTournamentStatusHook func(tournamentID int) error
	IncrementStatsHook         func(participantID int) error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		tournaments:  map[int]*models.Tournament{},
		participants: map[int]*models.Participant{},
		matches:      map[int]*models.Match{},
		nextMatchID:  1,
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeStore) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStore) record(name string) {
	f.mu.Lock()
	f.trace = append(f.trace, name)
	f.mu.Unlock()
}

func (f *FakeStore) AddTournament(t *models.Tournament) {
	c := *t
	f.tournaments[t.ID] = &c
}

func (f *FakeStore) AddParticipants(tournamentID int, ps ...*models.Participant) {
	for _, p := range ps {
		c := *p
		c.TournamentID = tournamentID
		f.participants[p.ID] = &c
	}
}

func (f *FakeStore) Tournament(id int) *models.Tournament {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *f.tournaments[id]
	return &c
}

func (f *FakeStore) Participant(id int) *models.Participant {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *f.participants[id]
	return &c
}

// Matches returns stored matches in round/order sequence.
func (f *FakeStore) Matches(tournamentID int) []*models.Match {
	out, _ := f.GetMatches(context.Background(), tournamentID)
	return out
}

func (f *FakeStore) GetTournament(_ context.Context, id int) (*models.Tournament, error) {
	f.record("GetTournament")
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	c := *t
	return &c, nil
}

func (f *FakeStore) GetParticipants(_ context.Context, tournamentID int) ([]*models.Participant, error) {
	f.record("GetParticipants")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Participant{}
	for _, p := range f.participants {
		if p.TournamentID == tournamentID {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *FakeStore) GetMatches(_ context.Context, tournamentID int) ([]*models.Match, error) {
	f.record("GetMatches")
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Match{}
	for id := 1; id < f.nextMatchID; id++ {
		m, ok := f.matches[id]
		if ok && m.TournamentID == tournamentID {
			out = append(out, copyMatch(m))
		}
	}
	return out, nil
}

func (f *FakeStore) GetMatchForUpdate(_ context.Context, matchID int) (*models.Match, error) {
	f.record("GetMatchForUpdate")
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[matchID]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	return copyMatch(m), nil
}

func (f *FakeStore) SaveMatches(_ context.Context, matches []*models.Match) ([]*models.Match, error) {
	f.record("SaveMatches")
	if f.SaveMatchesHook != nil {
		if err := f.SaveMatchesHook(matches); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Match, 0, len(matches))
	for _, m := range matches {
		c := copyMatch(m)
		c.ID = f.nextMatchID
		c.Version = 1
		f.nextMatchID++
		f.matches[c.ID] = c
		out = append(out, copyMatch(c))
	}
	return out, nil
}

func (f *FakeStore) UpdateMatchResult(_ context.Context, match *models.Match, expectedVersion int) error {
	f.record("UpdateMatchResult")
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.matches[match.ID]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	if cur.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	if cur.CompletionRecordedAt != nil {
		at := *cur.CompletionRecordedAt
		match.CompletionRecordedAt = &at
	}
	match.Version = expectedVersion + 1
	f.matches[match.ID] = copyMatch(match)
	return nil
}

func (f *FakeStore) UpdateTournamentStatus(_ context.Context, tournamentID int, status models.TournamentStatus, expectedVersion int) error {
	f.record("UpdateTournamentStatus")
	if f.UpdateTournamentStatusHook != nil {
		if err := f.UpdateTournamentStatusHook(tournamentID); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if t.Version != expectedVersion {
		return repositories.ErrVersionConflict
	}
	t.Status = status
	t.Version++
	return nil
}

func (f *FakeStore) SetTournamentWinner(_ context.Context, tournamentID int, participantID int) error {
	f.record("SetTournamentWinner")
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tournaments[tournamentID]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	if _, ok := f.participants[participantID]; !ok {
		return repositories.ErrTournamentInvalidWinner
	}
	winner := participantID
	t.OverallWinnerParticipantID = &winner
	return nil
}

func (f *FakeStore) IncrementParticipantStats(_ context.Context, participantID int, delta models.StatsDelta) error {
	f.record("IncrementParticipantStats")
	if f.IncrementStatsHook != nil {
		if err := f.IncrementStatsHook(participantID); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.participants[participantID]
	if !ok {
		return repositories.ErrParticipantNotFound
	}
	p.Wins += delta.Wins
	p.Losses += delta.Losses
	p.GamesPlayed += delta.GamesPlayed
	return nil
}

func (f *FakeStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	f.record("RunInTx")
	snap := f.snapshot()
	if err := fn(ctx, f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

type fakeState struct {
	tournaments  map[int]*models.Tournament
	participants map[int]*models.Participant
	matches      map[int]*models.Match
	nextMatchID  int
}

func (f *FakeStore) snapshot() fakeState {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := fakeState{
		tournaments:  make(map[int]*models.Tournament, len(f.tournaments)),
		participants: make(map[int]*models.Participant, len(f.participants)),
		matches:      make(map[int]*models.Match, len(f.matches)),
		nextMatchID:  f.nextMatchID,
	}
	for id, t := range f.tournaments {
		c := *t
		s.tournaments[id] = &c
	}
	for id, p := range f.participants {
		c := *p
		s.participants[id] = &c
	}
	for id, m := range f.matches {
		s.matches[id] = copyMatch(m)
	}
	return s
}

func (f *FakeStore) restore(s fakeState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tournaments = s.tournaments
	f.participants = s.participants
	f.matches = s.matches
	f.nextMatchID = s.nextMatchID
}

func copyMatch(m *models.Match) *models.Match {
	c := *m
	if m.Score != nil {
		s := models.Score{P1: append([]int(nil), m.Score.P1...), P2: append([]int(nil), m.Score.P2...)}
		c.Score = &s
	}
	if m.WinnerParticipantID != nil {
		w := *m.WinnerParticipantID
		c.WinnerParticipantID = &w
	}
	if m.CompletionRecordedAt != nil {
		at := *m.CompletionRecordedAt
		c.CompletionRecordedAt = &at
	}
	return &c
}

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu        sync.Mutex
	Published []events.MatchCompleted
	Err       error
	// OnPublish runs synchronously, like the in-process transport.
	OnPublish func(ctx context.Context, evt events.MatchCompleted) error
}

func (p *FakePublisher) PublishMatchCompleted(ctx context.Context, evt events.MatchCompleted) error {
	p.mu.Lock()
	p.Published = append(p.Published, evt)
	p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	if p.OnPublish != nil {
		return p.OnPublish(ctx, evt)
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testStart = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// seedTournament adds a tournament with participants rated in the given order
// and IDs starting from 1.
func seedTournament(store *FakeStore, id int, format models.TournamentFormat, ratings ...float64) {
	store.AddTournament(&models.Tournament{
		ID:        id,
		Name:      "Club Championship",
		Format:    format,
		Status:    models.StatusUpcoming,
		StartDate: testStart,
		Version:   1,
	})
	for i, r := range ratings {
		store.AddParticipants(id, &models.Participant{ID: i + 1, Name: "player", Rating: r})
	}
}
