package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/bracket-engine/models"
	"github.com/Dosada05/bracket-engine/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

type submitScoreInput struct {
	P1     []int `json:"p1"`
	P2     []int `json:"p2"`
	BestOf int   `json:"best_of"`
}

// SubmitScoreHandler godoc
// @Summary Record a match score sheet
// @Description Soft validation findings come back in "issues" with a 200; they never reject the request.
// @Tags matches
// @Accept json
// @Produce json
// @Param matchID path int true "Match ID"
// @Param input body submitScoreInput true "Points per game for each side"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,409 {object} map[string]string
// @Security BearerAuth
// @Router /matches/{matchID}/score [put]
func (h *MatchHandler) SubmitScoreHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitScoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	sub, err := h.matchService.SubmitScore(r.Context(), matchID, models.Score{P1: input.P1, P2: input.P2}, input.BestOf)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	logOrganizerAction(r, "submit_score",
		slog.Int("match_id", matchID),
		slog.String("status", string(sub.Match.Status)))
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": sub.Match, "result": sub.Result, "issues": sub.Issues}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
