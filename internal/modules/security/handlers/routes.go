package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all security routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/security", func(r chi.Router) {
		r.Get("/", h.HandleGetStatus)
		r.Get("/events", h.HandleGetEvents)
		r.Post("/scan", h.HandleScan)
	})
}
