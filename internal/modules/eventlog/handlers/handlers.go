// Package handlers provides HTTP handlers for the event log and the clock.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/rs/zerolog"
)

// Handler handles event log HTTP requests
type Handler struct {
	journal *eventlog.Log
	log     zerolog.Logger
}

// NewHandler creates a new event log handler
func NewHandler(journal *eventlog.Log, log zerolog.Logger) *Handler {
	return &Handler{
		journal: journal,
		log:     log.With().Str("handler", "eventlog").Logger(),
	}
}

// HandleGetEntries handles GET /api/logs?event=NAME&limit=N.
// Without filters every retained entry is returned oldest first; with either
// filter the newest matching entries come first.
func (h *Handler) HandleGetEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := h.journal.Capacity()
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var entries []eventlog.Entry
	switch {
	case len(q["event"]) > 0:
		entries = h.journal.RecentByEvent(limit, q["event"]...)
	case q.Get("limit") != "":
		entries = h.journal.Recent(limit)
	default:
		entries = h.journal.Entries()
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": entries,
		"metadata": map[string]interface{}{
			"timestamp":  time.Now().Format(time.RFC3339),
			"count":      len(entries),
			"total":      h.journal.Count(),
			"capacity":   h.journal.Capacity(),
			"session_id": h.journal.SessionID(),
		},
	})
}

// HandleClear handles DELETE /api/logs
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.journal.Clear(); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear event log")
		http.Error(w, "Failed to clear event log", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetSession handles GET /api/logs/session
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	clock := h.journal.Clock()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"session_id":     h.journal.SessionID(),
			"started":        clock.Started(),
			"uptime":         eventlog.FormatUptime(clock.Uptime()),
			"uptime_seconds": int64(clock.Uptime().Seconds()),
		},
	})
}

// HandleGetTime handles GET /api/time?format=iso|unix|quantum|human
func (h *Handler) HandleGetTime(w http.ResponseWriter, r *http.Request) {
	clock := h.journal.Clock()
	format := r.URL.Query().Get("format")
	if format == "" {
		format = eventlog.FormatISO
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"format":       format,
			"value":        clock.Current(format),
			"display_time": clock.FormatDisplayTime(),
			"sync":         clock.SyncState(),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
