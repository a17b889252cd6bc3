package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all network routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/network", func(r chi.Router) {
		r.Get("/", h.HandleGetStatus)
		r.Get("/nodes", h.HandleGetNodes)
		r.Get("/metrics", h.HandleGetMetrics)
		r.Get("/protocols", h.HandleGetProtocols)
		r.Get("/catalog", h.HandleGetCatalog)
		r.Post("/connect", h.HandleConnect)
	})
}
