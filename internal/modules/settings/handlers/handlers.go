// Package handlers provides HTTP handlers for the settings page.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/session"
	"github.com/rs/zerolog"
)

// Commands is the part of the session controller the settings routes drive
type Commands interface {
	SaveSettings(ctx context.Context, in settings.Settings) (settings.Settings, error)
	ResetSettings(ctx context.Context) (settings.Settings, error)
	ExportSettings(ctx context.Context, format string) (session.ExportResult, error)
}

// Handler handles settings HTTP requests
type Handler struct {
	service  *settings.Service
	commands Commands
	log      zerolog.Logger
}

// NewHandler creates a new settings handler
func NewHandler(service *settings.Service, commands Commands, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		commands: commands,
		log:      log.With().Str("handler", "settings").Logger(),
	}
}

// HandleGetSettings handles GET /api/settings
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	current := h.service.Get()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": current,
		"metadata": map[string]interface{}{
			"timestamp":       time.Now().Format(time.RFC3339),
			"security_slider": settings.SliderForSecurityLevel(current.SecurityLevel),
		},
	})
}

// HandleSaveSettings handles PUT /api/settings
func (h *Handler) HandleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var in settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.commands.SaveSettings(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": saved,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleResetSettings handles POST /api/settings/reset
func (h *Handler) HandleResetSettings(w http.ResponseWriter, r *http.Request) {
	defaults, err := h.commands.ResetSettings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": defaults})
}

// HandleExport handles GET /api/settings/export?format=json|yaml as a download
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	result, err := h.commands.ExportSettings(r.Context(), r.URL.Query().Get("format"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Body); err != nil {
		h.log.Error().Err(err).Msg("Failed to write settings export")
	}
}

// HandleSecurityLevel handles GET /api/settings/security-level?slider=N
func (h *Handler) HandleSecurityLevel(w http.ResponseWriter, r *http.Request) {
	value, err := strconv.Atoi(r.URL.Query().Get("slider"))
	if err != nil || value < 0 || value > 100 {
		http.Error(w, "slider must be an integer between 0 and 100", http.StatusBadRequest)
		return
	}

	level := settings.SecurityLevelForSlider(value)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"slider":         value,
			"security_level": level,
		},
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := session.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Settings command failed")
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
