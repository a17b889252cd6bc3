package di

import (
	"fmt"

	"github.com/aristath/qdash/internal/config"
	"github.com/aristath/qdash/internal/session"
	"github.com/rs/zerolog"
)

// RegisterJobs registers the session's periodic jobs with the scheduler
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	err := container.Controller.RegisterJobs(container.Scheduler, session.Intervals{
		Metrics: cfg.MetricsInterval,
		Network: cfg.NetworkRefreshInterval,
		NTPSync: cfg.NTPSyncInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to register session jobs: %w", err)
	}

	log.Info().
		Dur("metrics", cfg.MetricsInterval).
		Dur("network", cfg.NetworkRefreshInterval).
		Dur("ntp_sync", cfg.NTPSyncInterval).
		Msg("Session jobs registered")
	return nil
}
