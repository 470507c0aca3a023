package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/opencourt/matchday/live"
	"github.com/opencourt/matchday/services"
)

const sseHeartbeat = 15 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// TODO: restrict Origin once the frontend domain is fixed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type LiveHandler struct {
	liveService services.LiveService
	broadcaster *live.Broadcaster
	logger      *slog.Logger
}

func NewLiveHandler(ls services.LiveService, b *live.Broadcaster, logger *slog.Logger) *LiveHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveHandler{
		liveService: ls,
		broadcaster: b,
		logger:      logger,
	}
}

// parseMatchIDs reads the comma-separated match_ids query parameter.
func parseMatchIDs(r *http.Request) ([]int, error) {
	raw := r.URL.Query().Get("match_ids")
	if raw == "" {
		return nil, errors.New("match_ids query parameter is required")
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid match id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// PublishHandler handles POST /live/matches/{matchID}
func (h *LiveHandler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Payload) == 0 {
		badRequestResponse(w, r, errors.New("payload is required"))
		return
	}

	snapshot, err := h.liveService.Publish(r.Context(), matchID, input.Payload)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"snapshot": snapshot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SnapshotsHandler handles GET /live/snapshots?match_ids=1,2,3
func (h *LiveHandler) SnapshotsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := parseMatchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snapshots := h.liveService.Snapshots(ids)
	if err := writeJSON(w, http.StatusOK, jsonResponse{"snapshots": snapshots}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ServeWsHandler handles GET /live/ws?match_ids=1,2,3 and upgrades the
// connection to a websocket fed by the broadcaster.
func (h *LiveHandler) ServeWsHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := parseMatchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := live.NewClient(h.broadcaster, conn, ids, h.logger)
	go client.WritePump()
	go client.ReadPump()
}

// StreamHandler handles GET /live/stream?match_ids=1,2,3 as a
// server-sent-events stream. Current snapshots are replayed first, then
// updates as they arrive; comment lines keep idle connections alive.
func (h *LiveHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := parseMatchIDs(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		serverErrorResponse(w, r, errors.New("streaming is not supported by this connection"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events := h.liveService.Subscribe(ids)
	defer h.liveService.Unsubscribe(events, ids)

	writeEvent := func(ev live.Event) bool {
		data, err := json.Marshal(ev)
		if err != nil {
			return true
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Event, data); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	for _, id := range ids {
		if snap, ok := h.liveService.Snapshot(id); ok {
			if !writeEvent(snapshotEvent(snap)) {
				return
			}
		}
	}

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if !writeEvent(ev) {
				return
			}
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func snapshotEvent(snap live.Snapshot) live.Event {
	return live.Event{
		Event:     live.EventScoreUpdate,
		MatchID:   snap.MatchID,
		Sport:     snap.Sport,
		Payload:   snap.Payload,
		Timestamp: snap.UpdatedAt.Format(time.RFC3339Nano),
	}
}
