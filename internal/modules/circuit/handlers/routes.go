package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all circuit routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/circuit", func(r chi.Router) {
		r.Get("/", h.HandleGetCircuit)
		r.Get("/gates", h.HandleGetGates)
		r.Get("/distribution", h.HandleGetDistribution)
		r.Get("/busy", h.HandleGetBusy)
		r.Get("/export", h.HandleExport)

		r.Post("/operations", h.HandleApplyOperation)
		r.Put("/qubits", h.HandleSetQubits)
		r.Post("/reset", h.HandleReset)
		r.Post("/save", h.HandleSave)
		r.Post("/restore", h.HandleRestore)
		r.Post("/execute", h.HandleExecute)
	})
}
