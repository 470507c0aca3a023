package handlers

import (
	"errors"
	"net/http"

	"github.com/opencourt/matchday/services"
)

type MatchHandler struct {
	matchService       services.MatchService
	progressionService services.ProgressionService
}

func NewMatchHandler(ms services.MatchService, ps services.ProgressionService) *MatchHandler {
	return &MatchHandler{
		matchService:       ms,
		progressionService: ps,
	}
}

// GetByIDHandler handles GET /matches/{matchID}
func (h *MatchHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByPhaseHandler handles GET /phases/{phaseID}/matches
func (h *MatchHandler) ListByPhaseHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByPhase(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// EnterResultHandler handles PUT /matches/{matchID}/result
func (h *MatchHandler) EnterResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.EnterResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Status == "" {
		badRequestResponse(w, r, errors.New("status is required"))
		return
	}

	result, err := h.matchService.EnterResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PropagateHandler handles POST /matches/{matchID}/propagate. Re-running
// propagation on an already propagated match is a no-op.
func (h *MatchHandler) PropagateHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.progressionService.Propagate(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"propagation": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SweepPhaseHandler handles POST /phases/{phaseID}/sweep
func (h *MatchHandler) SweepPhaseHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := h.progressionService.SweepPhase(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"sweep": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResolveSourceHandler handles GET /tournaments/{tournamentID}/resolve?code=WSF1
func (h *MatchHandler) ResolveSourceHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		badRequestResponse(w, r, errors.New("code query parameter is required"))
		return
	}

	registrationID, err := h.progressionService.ResolveSource(r.Context(), tournamentID, code)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{
		"code":            code,
		"registration_id": registrationID,
		"resolved":        registrationID != nil,
	}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
