package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Dosada05/bracket-engine/middleware"
	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/scoring"
	"github.com/Dosada05/bracket-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------------------
// Fake services
// ------------------------

type fakeBracketService struct {
	GenerateBracketFn   func(ctx context.Context, tournamentID int) ([]*models.Match, error)
	GenerateNextRoundFn func(ctx context.Context, tournamentID int) (*services.NextRoundResult, error)
}

func (f *fakeBracketService) GenerateBracket(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return f.GenerateBracketFn(ctx, tournamentID)
}

func (f *fakeBracketService) GenerateNextRound(ctx context.Context, tournamentID int) (*services.NextRoundResult, error) {
	return f.GenerateNextRoundFn(ctx, tournamentID)
}

type fakeViewService struct {
	BuildViewFn func(ctx context.Context, tournamentID int) (*models.BracketView, error)
}

func (f *fakeViewService) BuildView(ctx context.Context, tournamentID int) (*models.BracketView, error) {
	return f.BuildViewFn(ctx, tournamentID)
}

type fakeTournamentService struct {
	completed   []int
	GetByIDFn   func(ctx context.Context, tournamentID int) (*models.Tournament, error)
	CompleteErr error
}

func (f *fakeTournamentService) GetByID(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	return f.GetByIDFn(ctx, tournamentID)
}

func (f *fakeTournamentService) Complete(_ context.Context, tournamentID, championID int) (*models.Tournament, error) {
	if f.CompleteErr != nil {
		return nil, f.CompleteErr
	}
	f.completed = append(f.completed, championID)
	return &models.Tournament{ID: tournamentID, Status: models.StatusCompleted, OverallWinnerParticipantID: &championID}, nil
}

type fakeMatchService struct {
	lastScore  models.Score
	lastBestOf int
	SubmitErr  error
	ListFn     func(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

func (f *fakeMatchService) SubmitScore(_ context.Context, matchID int, score models.Score, bestOf int) (*services.ScoreSubmission, error) {
	if f.SubmitErr != nil {
		return nil, f.SubmitErr
	}
	f.lastScore, f.lastBestOf = score, bestOf
	res := scoring.MatchWinner(score.P1, score.P2, max(bestOf, 1))
	return &services.ScoreSubmission{
		Match:  &models.Match{ID: matchID, Status: models.MatchStatusInProgress},
		Result: res,
		Issues: scoring.Validate(score.P1, score.P2, bestOf, 30),
	}, nil
}

func (f *fakeMatchService) ListMatchesByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	return f.ListFn(ctx, tournamentID)
}

type testAPI struct {
	brackets    *fakeBracketService
	views       *fakeViewService
	tournaments *fakeTournamentService
	matches     *fakeMatchService
	router      http.Handler
}

func newTestAPI() *testAPI {
	api := &testAPI{
		brackets:    &fakeBracketService{},
		views:       &fakeViewService{},
		tournaments: &fakeTournamentService{},
		matches:     &fakeMatchService{},
	}
	th := NewTournamentHandler(api.brackets, api.views, api.tournaments, api.matches)
	mh := NewMatchHandler(api.matches)

	r := chi.NewRouter()
	r.Post("/tournaments/{tournamentID}/start", th.StartHandler)
	r.Post("/tournaments/{tournamentID}/rounds/next", th.NextRoundHandler)
	r.Get("/tournaments/{tournamentID}/bracket", th.GetBracketHandler)
	r.Get("/tournaments/{tournamentID}", th.GetByIDHandler)
	r.Get("/tournaments/{tournamentID}/matches", th.ListMatchesHandler)
	r.Put("/matches/{matchID}/score", mh.SubmitScoreHandler)
	api.router = r
	return api
}

func (api *testAPI) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]json.RawMessage) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec, env
}

func TestStartHandler(t *testing.T) {
	api := newTestAPI()
	api.brackets.GenerateBracketFn = func(_ context.Context, id int) ([]*models.Match, error) {
		return []*models.Match{{ID: 1, TournamentID: id, Round: 1, OrderInRound: 1, P1ParticipantID: 2, P2ParticipantID: 4}}, nil
	}

	rec, env := api.do(t, http.MethodPost, "/tournaments/5/start", "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	var matches []models.Match
	require.NoError(t, json.Unmarshal(env["matches"], &matches))
	require.Len(t, matches, 1)
	assert.Equal(t, 5, matches[0].TournamentID)
}

// captureLogs sends slog's default logger to a buffer for the duration of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestStartHandler_LogsActingOrganizer(t *testing.T) {
	logs := captureLogs(t)
	secret := []byte("handler-test-secret")
	api := newTestAPI()
	api.brackets.GenerateBracketFn = func(context.Context, int) ([]*models.Match, error) {
		return []*models.Match{{ID: 1}, {ID: 2}}, nil
	}
	th := NewTournamentHandler(api.brackets, api.views, api.tournaments, api.matches)
	r := chi.NewRouter()
	r.With(middleware.Authenticate(secret)).Post("/tournaments/{tournamentID}/start", th.StartHandler)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 42, "role": middleware.RoleOrganizer}).SignedString(secret)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/tournaments/9/start", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(logs.Bytes(), &entry), logs.String())
	assert.Equal(t, "organizer action", entry["msg"])
	assert.Equal(t, "start_tournament", entry["action"])
	assert.Equal(t, float64(42), entry["user_id"])
	assert.Equal(t, float64(9), entry["tournament_id"])
	assert.Equal(t, float64(2), entry["matches"])
}

func TestSubmitScoreHandler_LogsMissingUser(t *testing.T) {
	logs := captureLogs(t)
	api := newTestAPI()

	rec, _ := api.do(t, http.MethodPut, "/matches/3/score", `{"p1":[11],"p2":[4],"best_of":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, logs.String(), `"action":"submit_score"`)
	assert.Contains(t, logs.String(), `"user_id_error"`)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrInsufficientParticipants, http.StatusUnprocessableEntity},
		{fmt.Errorf("%w: swiss", services.ErrUnknownFormat), http.StatusUnprocessableEntity},
		{services.ErrTournamentNotUpcoming, http.StatusConflict},
		{fmt.Errorf("%w: stale", services.ErrConcurrentModification), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			api := newTestAPI()
			api.brackets.GenerateBracketFn = func(context.Context, int) ([]*models.Match, error) { return nil, tt.err }

			rec, env := api.do(t, http.MethodPost, "/tournaments/1/start", "")
			assert.Equal(t, tt.want, rec.Code)
			assert.Contains(t, env, "error")
		})
	}
}

func TestStartHandler_BadID(t *testing.T) {
	api := newTestAPI()
	for _, path := range []string{"/tournaments/abc/start", "/tournaments/0/start", "/tournaments/-3/start"} {
		rec, _ := api.do(t, http.MethodPost, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestNextRoundHandler_NewRound(t *testing.T) {
	api := newTestAPI()
	api.brackets.GenerateNextRoundFn = func(context.Context, int) (*services.NextRoundResult, error) {
		return &services.NextRoundResult{Round: 2, Matches: []*models.Match{{ID: 7, Round: 2}}}, nil
	}

	rec, env := api.do(t, http.MethodPost, "/tournaments/1/rounds/next", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, "2", string(env["round"]))
	assert.Empty(t, api.tournaments.completed)
}

func TestNextRoundHandler_ChampionCompletesTournament(t *testing.T) {
	api := newTestAPI()
	champion := 3
	api.brackets.GenerateNextRoundFn = func(context.Context, int) (*services.NextRoundResult, error) {
		return &services.NextRoundResult{Round: 3, Completed: true, ChampionID: &champion, Matches: []*models.Match{}}, nil
	}

	rec, env := api.do(t, http.MethodPost, "/tournaments/1/rounds/next", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "3", string(env["champion_id"]))
	assert.Equal(t, []int{3}, api.tournaments.completed)

	var tour models.Tournament
	require.NoError(t, json.Unmarshal(env["tournament"], &tour))
	assert.Equal(t, models.StatusCompleted, tour.Status)
}

func TestNextRoundHandler_Conflicts(t *testing.T) {
	for _, err := range []error{services.ErrRoundIncomplete, services.ErrNotKnockoutFormat, services.ErrTournamentNotOngoing} {
		api := newTestAPI()
		api.brackets.GenerateNextRoundFn = func(context.Context, int) (*services.NextRoundResult, error) { return nil, err }

		rec, _ := api.do(t, http.MethodPost, "/tournaments/1/rounds/next", "")
		assert.Equal(t, http.StatusConflict, rec.Code, err.Error())
	}
}

func TestSubmitScoreHandler(t *testing.T) {
	api := newTestAPI()

	rec, env := api.do(t, http.MethodPut, "/matches/9/score", `{"p1":[11,11,11],"p2":[5,7],"best_of":3}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.Score{P1: []int{11, 11, 11}, P2: []int{5, 7}}, api.matches.lastScore)
	assert.Equal(t, 3, api.matches.lastBestOf)

	var issues []map[string]interface{}
	require.NoError(t, json.Unmarshal(env["issues"], &issues))
	assert.NotEmpty(t, issues, "soft issues are reported with a 200")

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(env["result"], &result))
	assert.Equal(t, "A", result["winner"])
}

func TestSubmitScoreHandler_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want int
	}{
		{"malformed json", `{"p1":[11`, nil, http.StatusBadRequest},
		{"unknown field", `{"p1":[11],"p2":[3],"sets":1}`, nil, http.StatusBadRequest},
		{"empty body", ``, nil, http.StatusBadRequest},
		{"even best-of", `{"p1":[11],"p2":[3],"best_of":2}`, services.ErrInvalidBestOf, http.StatusBadRequest},
		{"bye match", `{"p1":[11],"p2":[3]}`, services.ErrByeMatchScore, http.StatusConflict},
		{"missing match", `{"p1":[11],"p2":[3]}`, services.ErrMatchNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI()
			api.matches.SubmitErr = tt.err

			rec, _ := api.do(t, http.MethodPut, "/matches/9/score", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestGetBracketHandler(t *testing.T) {
	api := newTestAPI()
	api.views.BuildViewFn = func(_ context.Context, id int) (*models.BracketView, error) {
		if id != 1 {
			return nil, services.ErrTournamentNotFound
		}
		return &models.BracketView{TournamentID: 1, TotalMatches: 3, CurrentRound: 2, Rounds: []models.RoundView{}}, nil
	}

	rec, env := api.do(t, http.MethodGet, "/tournaments/1/bracket", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var view models.BracketView
	require.NoError(t, json.Unmarshal(env["bracket"], &view))
	assert.Equal(t, 2, view.CurrentRound)

	rec, _ = api.do(t, http.MethodGet, "/tournaments/2/bracket", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadOnlyTournamentEndpoints(t *testing.T) {
	api := newTestAPI()
	api.tournaments.GetByIDFn = func(_ context.Context, id int) (*models.Tournament, error) {
		return &models.Tournament{ID: id, Name: "Open", Participants: []models.Participant{{ID: 1, Wins: 2}}}, nil
	}
	api.matches.ListFn = func(context.Context, int) ([]*models.Match, error) {
		return []*models.Match{{ID: 1}, {ID: 2}}, nil
	}

	rec, env := api.do(t, http.MethodGet, "/tournaments/4", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var tour models.Tournament
	require.NoError(t, json.Unmarshal(env["tournament"], &tour))
	assert.Equal(t, 2, tour.Participants[0].Wins)

	rec, env = api.do(t, http.MethodGet, "/tournaments/4/matches", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var matches []models.Match
	require.NoError(t, json.Unmarshal(env["matches"], &matches))
	assert.Len(t, matches, 2)
}
