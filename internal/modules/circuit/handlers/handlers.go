// Package handlers provides HTTP handlers for the circuit page.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/session"
	"github.com/aristath/qdash/internal/validation"
	"github.com/rs/zerolog"
)

// Commands is the part of the session controller the circuit routes drive
type Commands interface {
	ApplyOperation(ctx context.Context, name string, targets []int) (circuit.Operation, error)
	StartApplyOperation(name string, targets []int) error
	SetQubitCount(ctx context.Context, n int) (int, error)
	Reset(ctx context.Context) (circuit.Snapshot, error)
	SaveCircuit(ctx context.Context) (circuit.SavedCircuit, error)
	RestoreCircuit(ctx context.Context) (circuit.Snapshot, error)
	ExportCircuit(ctx context.Context) (session.ExportResult, error)
	ExecuteCircuit(ctx context.Context) error
	StartExecuteCircuit() error
	Busy() session.BusyState
}

// ApplyRequest is the body of POST /api/circuit/operations
type ApplyRequest struct {
	Operation string `json:"operation" validate:"required"`
	Targets   []int  `json:"targets" validate:"omitempty,max=64"`
}

// QubitsRequest is the body of PUT /api/circuit/qubits
type QubitsRequest struct {
	Count *int `json:"count" validate:"required"`
}

// Handler handles circuit HTTP requests
type Handler struct {
	store    *circuit.Store
	commands Commands
	log      zerolog.Logger
}

// NewHandler creates a new circuit handler
func NewHandler(store *circuit.Store, commands Commands, log zerolog.Logger) *Handler {
	return &Handler{
		store:    store,
		commands: commands,
		log:      log.With().Str("handler", "circuit").Logger(),
	}
}

// HandleGetCircuit handles GET /api/circuit
func (h *Handler) HandleGetCircuit(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.store.Snapshot(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"busy":      h.commands.Busy(),
		},
	})
}

// HandleGetGates handles GET /api/circuit/gates
func (h *Handler) HandleGetGates(w http.ResponseWriter, r *http.Request) {
	gates := circuit.Gates()
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": gates,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(gates),
		},
	})
}

// HandleGetDistribution handles GET /api/circuit/distribution
func (h *Handler) HandleGetDistribution(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.store.StateDistribution(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetBusy handles GET /api/circuit/busy
func (h *Handler) HandleGetBusy(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": h.commands.Busy(),
	})
}

// HandleApplyOperation handles POST /api/circuit/operations.
// The operation runs in the background (202) unless ?wait=true.
func (h *Handler) HandleApplyOperation(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !h.decode(w, r, &req) {
		return
	}

	if !wait(r) {
		if err := h.commands.StartApplyOperation(req.Operation, req.Targets); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"data": map[string]interface{}{
				"accepted":  true,
				"operation": req.Operation,
			},
		})
		return
	}

	op, err := h.commands.ApplyOperation(r.Context(), req.Operation, req.Targets)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": op,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleSetQubits handles PUT /api/circuit/qubits
func (h *Handler) HandleSetQubits(w http.ResponseWriter, r *http.Request) {
	var req QubitsRequest
	if !h.decode(w, r, &req) {
		return
	}

	count, err := h.commands.SetQubitCount(r.Context(), *req.Count)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"requested":   *req.Count,
			"qubit_count": count,
		},
	})
}

// HandleReset handles POST /api/circuit/reset
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.commands.Reset(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": snap})
}

// HandleSave handles POST /api/circuit/save. A storage failure still returns
// the record alongside the error.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	record, err := h.commands.SaveCircuit(r.Context())
	if err != nil {
		status := session.StatusCode(err)
		if record.Version == "" {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, status, map[string]interface{}{
			"data":  record,
			"error": err.Error(),
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": record})
}

// HandleRestore handles POST /api/circuit/restore
func (h *Handler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	snap, err := h.commands.RestoreCircuit(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"data": snap})
}

// HandleExport handles GET /api/circuit/export as a file download
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	result, err := h.commands.ExportCircuit(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Body)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Body); err != nil {
		h.log.Error().Err(err).Msg("Failed to write circuit export")
	}
}

// HandleExecute handles POST /api/circuit/execute
func (h *Handler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	if !wait(r) {
		if err := h.commands.StartExecuteCircuit(); err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"data": map[string]interface{}{"accepted": true},
		})
		return
	}

	if err := h.commands.ExecuteCircuit(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"completed": true},
	})
}

func wait(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return ok
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := validation.Struct(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := session.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("Circuit command failed")
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
