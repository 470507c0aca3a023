package handlers

import (
	"net/http"

	"github.com/opencourt/matchday/services"
)

type PoolHandler struct {
	poolService      services.PoolService
	standingsService services.StandingsService
	matchService     services.MatchService
}

func NewPoolHandler(ps services.PoolService, ss services.StandingsService, ms services.MatchService) *PoolHandler {
	return &PoolHandler{
		poolService:      ps,
		standingsService: ss,
		matchService:     ms,
	}
}

// CreateHandler handles POST /phases/{phaseID}/pools
func (h *PoolHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.CreatePoolInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.poolService.CreatePool(r.Context(), phaseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pool": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler handles GET /pools/{poolID}
func (h *PoolHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pool, err := h.poolService.GetPool(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pool": pool}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByPhaseHandler handles GET /phases/{phaseID}/pools
func (h *PoolHandler) ListByPhaseHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	pools, err := h.poolService.ListByPhase(r.Context(), phaseID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"pools": pools}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AddTeamHandler handles POST /pools/{poolID}/teams
func (h *PoolHandler) AddTeamHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		RegistrationID int `json:"registration_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	poolTeam, err := h.poolService.AddTeam(r.Context(), poolID, input.RegistrationID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pool_team": poolTeam}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveTeamHandler handles DELETE /pools/{poolID}/teams/{registrationID}
func (h *PoolHandler) RemoveTeamHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	registrationID, err := getIDFromURL(r, "registrationID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.poolService.RemoveTeam(r.Context(), poolID, registrationID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StandingsHandler handles GET /pools/{poolID}/standings
func (h *PoolHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	standings, err := h.standingsService.PoolStandings(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": standings}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler handles GET /pools/{poolID}/matches
func (h *PoolHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByPool(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /pools/{poolID}
func (h *PoolHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.poolService.DeletePool(r.Context(), poolID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
