package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bracket-engine/services"
)

type TournamentHandler struct {
	bracketService    services.BracketService
	viewService       services.BracketViewService
	tournamentService services.TournamentService
	matchService      services.MatchService
}

func NewTournamentHandler(
	bracketService services.BracketService,
	viewService services.BracketViewService,
	tournamentService services.TournamentService,
	matchService services.MatchService,
) *TournamentHandler {
	return &TournamentHandler{
		bracketService:    bracketService,
		viewService:       viewService,
		tournamentService: tournamentService,
		matchService:      matchService,
	}
}

// StartHandler godoc
// @Summary Generate round 1 and start the tournament
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string][]models.Match
// @Failure 404,409,422 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/start [post]
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.bracketService.GenerateBracket(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	logOrganizerAction(r, "start_tournament",
		slog.Int("tournament_id", tournamentID),
		slog.Int("matches", len(matches)))
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// NextRoundHandler godoc
// @Summary Generate the next knockout round
// @Description When the last round left a single winner the tournament is completed instead and the champion returned with a 200.
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 201 {object} map[string]interface{}
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,409 {object} map[string]string
// @Security BearerAuth
// @Router /tournaments/{tournamentID}/rounds/next [post]
func (h *TournamentHandler) NextRoundHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.GenerateNextRound(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if !result.Completed {
		logOrganizerAction(r, "generate_next_round",
			slog.Int("tournament_id", tournamentID),
			slog.Int("round", result.Round))
		if err := writeJSON(w, http.StatusCreated, jsonResponse{"round": result.Round, "matches": result.Matches}, nil); err != nil {
			serverErrorResponse(w, r, err)
		}
		return
	}

	tournament, err := h.tournamentService.Complete(r.Context(), tournamentID, *result.ChampionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	logOrganizerAction(r, "complete_tournament",
		slog.Int("tournament_id", tournamentID),
		slog.Int("champion_id", *result.ChampionID))
	resp := jsonResponse{"completed": true, "champion_id": *result.ChampionID, "tournament": tournament}
	if err := writeJSON(w, http.StatusOK, resp, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetBracketHandler godoc
// @Summary Bracket view grouped by round with progress
// @Tags brackets
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]models.BracketView
// @Failure 400,404 {object} map[string]string
// @Router /tournaments/{tournamentID}/bracket [get]
func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.viewService.BuildView(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler godoc
// @Summary Tournament with participants and their stats
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string]models.Tournament
// @Failure 400,404 {object} map[string]string
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler godoc
// @Summary All matches of a tournament by round and order
// @Tags matches
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} map[string][]models.Match
// @Failure 400,404 {object} map[string]string
// @Router /tournaments/{tournamentID}/matches [get]
func (h *TournamentHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListMatchesByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
