package handlers

import (
	"net/http"

	"github.com/opencourt/matchday/services"
)

type StructureHandler struct {
	structureService services.StructureService
}

func NewStructureHandler(ss services.StructureService) *StructureHandler {
	return &StructureHandler{structureService: ss}
}

// GenerateFixturesHandler handles POST /phases/{phaseID}/fixtures
func (h *StructureHandler) GenerateFixturesHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DoubleRound bool `json:"double_round"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.structureService.GeneratePoolFixtures(r.Context(), phaseID, input.DoubleRound)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracketHandler handles POST /phases/{phaseID}/bracket
func (h *StructureHandler) GenerateBracketHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		SeedSources    []string `json:"seed_sources"`
		WithThirdPlace bool     `json:"with_third_place"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.structureService.GenerateFinalsBracket(r.Context(), phaseID, input.SeedSources, input.WithThirdPlace)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateLoserBracketHandler handles POST /phases/{phaseID}/loser-bracket
func (h *StructureHandler) GenerateLoserBracketHandler(w http.ResponseWriter, r *http.Request) {
	phaseID, err := getIDFromURL(r, "phaseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		SeedSources []string `json:"seed_sources"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.structureService.GenerateLoserBracket(r.Context(), phaseID, input.SeedSources)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
