// Package main is the entry point for the qdash server.
//
// Startup order: configuration, logger, dependency wiring (state.db, stores,
// event log, scheduler), HTTP server, background work. SIGINT/SIGTERM trigger
// a graceful shutdown in reverse order.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/aristath/qdash/internal/config"
	"github.com/aristath/qdash/internal/di"
	"github.com/aristath/qdash/internal/server"
	"github.com/aristath/qdash/internal/version"
	"github.com/aristath/qdash/pkg/logger"
)

func main() {
	port := pflag.IntP("port", "p", 0, "HTTP port (overrides QDASH_PORT)")
	logLevel := pflag.String("log-level", "", "log level: debug, info, warn, error (overrides QDASH_LOG_LEVEL)")
	seed := pflag.Int64("seed", 0, "seed for simulated values, 0 keeps QDASH_SEED")
	devMode := pflag.Bool("dev", false, "development mode (no response compression)")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		os.Stdout.WriteString(version.UserAgent() + "\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if *port != 0 {
		cfg.Port = *port
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *devMode {
		cfg.DevMode = true
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("version", version.Version).Str("data_dir", cfg.DataDir).Msg("Starting qdash")

	ctx := context.Background()

	container, err := di.Wire(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	srv, err := server.New(server.Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})
	if err != nil {
		container.Close()
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	container.Start()
	log.Info().Msg("Work processor and scheduler started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Cancels pending commands, stops jobs, drains the queue, closes state.db
	if err := container.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close state database")
	}

	log.Info().Msg("Server stopped")
}
