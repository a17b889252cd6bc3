// Package handlers provides HTTP handlers for the network page.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/session"
	"github.com/rs/zerolog"
)

// Connector establishes the simulated network
type Connector interface {
	ConnectNetwork(ctx context.Context) (network.ConnectResult, error)
}

// Handler handles network HTTP requests
type Handler struct {
	store     *network.Store
	connector Connector
	log       zerolog.Logger
}

// NewHandler creates a new network handler
func NewHandler(store *network.Store, connector Connector, log zerolog.Logger) *Handler {
	return &Handler{
		store:     store,
		connector: connector,
		log:       log.With().Str("handler", "network").Logger(),
	}
}

// HandleGetStatus handles GET /api/network
func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.store.Status(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleConnect handles POST /api/network/connect. The request waits out
// the datacenter scan.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	result, err := h.connector.ConnectNetwork(r.Context())
	if err != nil {
		status := session.StatusCode(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Network connect failed")
		}
		h.writeJSON(w, status, map[string]interface{}{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": result,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetNodes handles GET /api/network/nodes
func (h *Handler) HandleGetNodes(w http.ResponseWriter, r *http.Request) {
	nodes := h.store.ActiveNodes()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": nodes,
		"metadata": map[string]interface{}{
			"timestamp":  time.Now().Format(time.RFC3339),
			"count":      len(nodes),
			"connection": h.store.ConnectionStatus(),
		},
	})
}

// HandleGetMetrics handles GET /api/network/metrics
func (h *Handler) HandleGetMetrics(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.store.Metrics(),
	})
}

// HandleGetProtocols handles GET /api/network/protocols
func (h *Handler) HandleGetProtocols(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.store.Protocols(),
	})
}

// HandleGetCatalog handles GET /api/network/catalog
func (h *Handler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": network.Catalog,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
