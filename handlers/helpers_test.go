package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencourt/matchday/services"
)

func requestWithURLParam(t *testing.T, param, value string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(param, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetIDFromURL(t *testing.T) {
	id, err := getIDFromURL(requestWithURLParam(t, "matchID", "42"), "matchID")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	for _, raw := range []string{"", "0", "-3", "abc", "1.5"} {
		_, err := getIDFromURL(requestWithURLParam(t, "matchID", raw), "matchID")
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Pool A"}`))
		var dst payload
		require.NoError(t, readJSON(httptest.NewRecorder(), r, &dst))
		assert.Equal(t, "Pool A", dst.Name)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
		var dst payload
		assert.Error(t, readJSON(httptest.NewRecorder(), r, &dst))
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"surprise":true}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key")
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must not be empty")
	})

	t.Run("multiple JSON values", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}{"name":"b"}`))
		var dst payload
		err := readJSON(httptest.NewRecorder(), r, &dst)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "single JSON value")
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	err := writeJSON(w, http.StatusCreated, jsonResponse{"pool": "A"}, http.Header{"X-Request-Id": []string{"abc"}})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "abc", w.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"pool":"A"}`, w.Body.String())
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrMatchNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: pool 3", services.ErrPoolNotFound), http.StatusNotFound},
		{services.ErrTournamentNotFound, http.StatusNotFound},
		{services.ErrTournamentNameConflict, http.StatusConflict},
		{services.ErrRegistrationConflict, http.StatusConflict},
		{services.ErrScoresRequired, http.StatusBadRequest},
		{services.ErrInvalidMatchStatusTransition, http.StatusBadRequest},
		{services.ErrMatchNotLive, http.StatusBadRequest},
		{fmt.Errorf("%w: phase 2 is pools, want bracket", services.ErrPhaseTypeMismatch), http.StatusBadRequest},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		mapServiceErrorToHTTP(w, r, tc.err)
		assert.Equal(t, tc.status, w.Code, "error %v", tc.err)
	}
}
