// Package server provides the HTTP server and routing for the dashboard.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/qdash/internal/config"
	"github.com/aristath/qdash/internal/di"
	analyticshandlers "github.com/aristath/qdash/internal/modules/analytics/handlers"
	circuithandlers "github.com/aristath/qdash/internal/modules/circuit/handlers"
	eventloghandlers "github.com/aristath/qdash/internal/modules/eventlog/handlers"
	metricshandlers "github.com/aristath/qdash/internal/modules/metrics/handlers"
	networkhandlers "github.com/aristath/qdash/internal/modules/network/handlers"
	securityhandlers "github.com/aristath/qdash/internal/modules/security/handlers"
	settingshandlers "github.com/aristath/qdash/internal/modules/settings/handlers"
	"github.com/aristath/qdash/internal/scheduler"
	"github.com/aristath/qdash/internal/version"
	"github.com/aristath/qdash/pkg/embedded"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
	Port      int
	DevMode   bool
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
	statusMonitor  *StatusMonitor
}

// New creates a new HTTP server and registers the status monitor job
func New(cfg Config) (*Server, error) {
	c := cfg.Container

	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: c,
		systemHandlers: NewSystemHandlers(
			cfg.Log,
			cfg.Config.DataDir,
			cfg.Config.ArtifactDir,
			c.Controller,
			c.Scheduler,
			c.Processor,
		),
		statusMonitor: NewStatusMonitor(c.Controller, c.EventManager, cfg.Log),
	}

	if cfg.Config.StatusInterval > 0 {
		job := scheduler.NewQueuedJob(s.statusMonitor.Name(), c.Processor, s.statusMonitor.Run)
		if err := c.Scheduler.AddInterval(cfg.Config.StatusInterval, job); err != nil {
			return nil, fmt.Errorf("failed to register status monitor: %w", err)
		}
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.DevMode)

	s.server = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE and websocket streams stay open. Regular
		// API routes are bounded by the Timeout middleware instead.
		IdleTimeout: 60 * time.Second,
	}

	return s, nil
}

// Router exposes the handler for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// setupMiddleware configures middleware shared by every route
func (s *Server) setupMiddleware() {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(devMode bool) {
	c := s.container
	ctrl := c.Controller
	sess := c.Session

	s.router.Get("/health", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", c.Registry.Handler())

	s.router.Route("/api", func(r chi.Router) {
		// Long-lived streams, outside the request timeout
		r.Get("/events/stream", NewEventsStreamHandler(c.EventBus, s.log).ServeHTTP)
		r.Get("/ws", NewWebSocketHandler(c.EventBus, s.log).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			if !devMode {
				r.Use(middleware.Compress(5))
			}

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/jobs", s.systemHandlers.HandleJobsStatus)
				r.Get("/disk", s.systemHandlers.HandleDiskUsage)
			})

			circuithandlers.NewHandler(sess.Circuit, ctrl, s.log).RegisterRoutes(r)
			networkhandlers.NewHandler(sess.Network, ctrl, s.log).RegisterRoutes(r)
			securityhandlers.NewHandler(sess.Security, ctrl, s.log).RegisterRoutes(r)
			settingshandlers.NewHandler(sess.Settings, ctrl, s.log).RegisterRoutes(r)
			eventloghandlers.NewHandler(sess.Journal, s.log).RegisterRoutes(r)
			metricshandlers.NewHandler(sess.Metrics, s.log).RegisterRoutes(r)
			analyticshandlers.NewHandler(c.Analytics, s.log).RegisterRoutes(r)
		})
	})

	s.router.Get("/", s.handleDashboard)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Str("version", version.Version).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleDashboard serves the dashboard page from the embedded filesystem
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	frontendFS, err := fs.Sub(embedded.Files, "frontend")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to create frontend filesystem from embedded files")
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	data, err := fs.ReadFile(frontendFS, "index.html")
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to read embedded index.html")
		http.Error(w, "Frontend not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to write index.html response")
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
