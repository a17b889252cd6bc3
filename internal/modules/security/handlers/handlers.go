// Package handlers provides HTTP handlers for the security page.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/session"
	"github.com/rs/zerolog"
)

// Scanner runs the simulated security scan
type Scanner interface {
	SecurityScan(ctx context.Context) (security.ScanResult, error)
	StartSecurityScan() error
}

// Handler handles security HTTP requests
type Handler struct {
	service *security.Service
	scanner Scanner
	log     zerolog.Logger
}

// NewHandler creates a new security handler
func NewHandler(service *security.Service, scanner Scanner, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		scanner: scanner,
		log:     log.With().Str("handler", "security").Logger(),
	}
}

// HandleGetStatus handles GET /api/security
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.service.Status(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetEvents handles GET /api/security/events
func (h *Handler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	entries := h.service.RecentEvents()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": entries,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(entries),
		},
	})
}

// HandleScan handles POST /api/security/scan. The scan runs in the
// background (202) unless ?wait=true.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if ok, _ := strconv.ParseBool(r.URL.Query().Get("wait")); !ok {
		if err := h.scanner.StartSecurityScan(); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"data": map[string]interface{}{"accepted": true},
		})
		return
	}

	result, err := h.scanner.SecurityScan(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": result})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := session.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Security scan failed")
	}
	h.writeJSON(w, status, map[string]interface{}{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
