package session

import (
	"fmt"
	"time"

	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/scheduler"
)

// Intervals are the periodic job cadences
type Intervals struct {
	Metrics time.Duration
	Network time.Duration
	NTPSync time.Duration
}

// RegisterJobs adds the periodic jobs to sched. Each job posts its work to
// the session queue instead of running on the cron goroutine.
func (c *Controller) RegisterJobs(sched *scheduler.Scheduler, iv Intervals) error {
	jobs := []struct {
		every time.Duration
		job   scheduler.Job
	}{
		{iv.Metrics, scheduler.NewQueuedJob("metrics_sample", c.s.Queue, c.SampleMetrics)},
		{iv.Network, scheduler.NewQueuedJob("network_refresh", c.s.Queue, c.RefreshNetwork)},
		{iv.NTPSync, scheduler.NewQueuedJob("ntp_sync", c.s.Queue, c.SyncClock)},
	}

	for _, j := range jobs {
		if err := sched.AddInterval(j.every, j.job); err != nil {
			return fmt.Errorf("failed to register %s job: %w", j.job.Name(), err)
		}
	}
	return nil
}

// SampleMetrics draws a metrics snapshot and publishes it
func (c *Controller) SampleMetrics() error {
	snap := c.s.Metrics.Sample()
	circuitSnap := c.s.Circuit.Snapshot()

	if c.s.Registry != nil {
		c.s.Registry.ObserveSnapshot(snap)
		c.s.Registry.ObserveCircuit(circuitSnap.QubitCount, circuitSnap.Depth, circuitSnap.Entangled)
		c.s.Registry.ObserveQueue(c.s.Journal.Count(), c.s.Queue.Stats().Pending)
	}

	c.s.Events.Emit(events.MetricsUpdated, "metrics", map[string]interface{}{
		"metrics":      snap,
		"health":       c.s.Metrics.Health(),
		"display_time": c.s.Clock.FormatDisplayTime(),
		"busy":         c.Busy().Busy,
	})
	return nil
}

// RefreshNetwork redraws the link metrics. A refresh carrying a security
// event raises QUANTUM_INTRUSION_DETECTED.
func (c *Controller) RefreshNetwork() error {
	m := c.s.Network.RefreshMetrics()

	if c.s.Registry != nil {
		c.s.Registry.ObserveNetwork(m.Latency, m.Bandwidth, m.Fidelity, len(c.s.Network.ActiveNodes()))
	}

	c.s.Events.Emit(events.NetworkMetricsUpdated, "network", map[string]interface{}{
		"metrics": m,
	})

	for _, e := range m.SecurityEvents {
		if e != network.IntrusionEvent {
			continue
		}
		c.log.Warn().Msg("Quantum intrusion detected")
		c.s.Events.Emit(events.QuantumIntrusionDetected, "network", map[string]interface{}{
			"event":          e,
			"network_health": m.NetworkHealth,
			"latency":        m.Latency,
		})
	}
	return nil
}

// SyncClock runs the simulated NTP sync
func (c *Controller) SyncClock() error {
	state := c.s.Clock.Sync()
	c.s.Events.Emit(events.TimeSynced, "eventlog", map[string]interface{}{
		"offset_ms": state.OffsetMs,
		"last_sync": state.LastSync,
		"servers":   state.Servers,
	})
	return nil
}
