package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all settings routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/settings", func(r chi.Router) {
		r.Get("/", h.HandleGetSettings)
		r.Put("/", h.HandleSaveSettings)
		r.Post("/reset", h.HandleResetSettings)
		r.Get("/export", h.HandleExport)
		r.Get("/security-level", h.HandleSecurityLevel)
	})
}
