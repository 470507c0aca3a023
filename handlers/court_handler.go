package handlers

import (
	"net/http"

	"github.com/opencourt/matchday/services"
)

type CourtHandler struct {
	courtService services.CourtService
}

func NewCourtHandler(cs services.CourtService) *CourtHandler {
	return &CourtHandler{courtService: cs}
}

// CreateHandler handles POST /tournaments/{tournamentID}/courts
func (h *CourtHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Name string `json:"name"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	court, err := h.courtService.Create(r.Context(), tournamentID, input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"court": court}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListByTournamentHandler handles GET /tournaments/{tournamentID}/courts
func (h *CourtHandler) ListByTournamentHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	courts, err := h.courtService.ListByTournament(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"courts": courts}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler handles DELETE /courts/{courtID}
func (h *CourtHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.courtService.Delete(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
