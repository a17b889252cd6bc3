package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the event log and clock routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/logs", func(r chi.Router) {
		r.Get("/", h.HandleGetEntries)
		r.Delete("/", h.HandleClear)
		r.Get("/session", h.HandleGetSession)
	})
	r.Get("/time", h.HandleGetTime)
}
