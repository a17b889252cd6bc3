package di

import (
	"context"
	"fmt"

	"github.com/aristath/qdash/internal/artifacts"
	"github.com/aristath/qdash/internal/config"
	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/modules/analytics"
	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/modules/metrics"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/random"
	"github.com/aristath/qdash/internal/session"
	"github.com/rs/zerolog"
)

// InitializeServices builds the event bus, the stores, the event log and the
// session controller. Requires InitializeDatabases and InitializeWork.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.RNG = random.New(cfg.Seed)
	log.Info().Uint64("seed", container.RNG.Seed()).Msg("Random source initialized")

	// Events
	container.EventBus = events.NewBus(log)
	container.EventManager = events.NewManager(container.EventBus, log)

	container.Registry = metrics.NewRegistry()
	container.EventBus.SubscribeAll(func(e *events.Event) {
		container.Registry.RecordEvent(string(e.Type))
	})

	// Event log
	clock := eventlog.NewClock(container.RNG)
	journal := eventlog.New(eventlog.Config{
		Capacity:  cfg.EventLogCapacity,
		UserAgent: cfg.UserAgent,
	}, container.KV, container.RNG, clock, log)
	journal.Attach(container.EventBus, events.Journaled)

	// Stores
	circuitStore := circuit.NewStore(circuit.Config{
		MaxQubits:     cfg.MaxQubits,
		InitialQubits: cfg.DefaultQubits,
	}, container.KV, container.RNG, log)
	networkStore := network.NewStore(cfg.ConnectDelay, container.RNG, log)

	if cfg.HostStats {
		container.HostReader = metrics.NewHostReader()
	}
	metricsSource := metrics.NewSource(cfg.MetricsHistorySize, container.RNG, container.HostReader, log)

	settingsService := settings.NewService(settings.NewRepository(container.KV, log), cfg.MaxQubits, log)
	securityService := security.NewService(networkStore, journal, log)

	publisher, err := InitializeArtifacts(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize artifact sinks: %w", err)
	}

	container.Session = &session.Session{
		Circuit:   circuitStore,
		Network:   networkStore,
		Journal:   journal,
		Clock:     clock,
		Metrics:   metricsSource,
		Registry:  container.Registry,
		Settings:  settingsService,
		Security:  securityService,
		Events:    container.EventManager,
		Queue:     container.Processor,
		Artifacts: publisher,
	}

	container.Controller = session.NewController(container.Session, session.Config{
		OperationDelayMin: cfg.OperationDelayMin,
		OperationDelayMax: cfg.OperationDelayMax,
		ExecuteDelay:      cfg.ExecuteDelay,
		ScanDelay:         cfg.ScanDelay,
	}, container.RNG, log)

	container.Analytics = analytics.NewService(circuitStore, metricsSource, log)

	log.Info().
		Int("qubits", circuitStore.QubitCount()).
		Int("max_qubits", circuitStore.MaxQubits()).
		Str("session_id", journal.SessionID()).
		Msg("Session initialized")
	return nil
}

// InitializeArtifacts builds the export sinks: the local directory always,
// and the S3 bucket when one is configured
func InitializeArtifacts(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*artifacts.Publisher, error) {
	var sinks []artifacts.Sink

	if cfg.ArtifactDir != "" {
		local, err := artifacts.NewLocalSink(cfg.ArtifactDir)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, local)
	}

	if cfg.S3.Enabled() {
		s3Sink, err := artifacts.NewS3Sink(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s3Sink)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 artifact sink enabled")
	}

	return artifacts.NewPublisher(log, sinks...), nil
}
