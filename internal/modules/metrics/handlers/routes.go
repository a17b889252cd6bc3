package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all metrics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/metrics", func(r chi.Router) {
		r.Get("/current", h.HandleGetCurrent)
		r.Get("/history", h.HandleGetHistory)
		r.Get("/health", h.HandleGetHealth)
	})
}
