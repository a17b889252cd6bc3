package session

import (
	"testing"
	"time"

	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/scheduler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleMetrics(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.ctrl.SampleMetrics())

	updated := f.rec.ofType(events.MetricsUpdated)
	require.Len(t, updated, 1)
	assert.Contains(t, updated[0].Data, "metrics")
	assert.Contains(t, updated[0].Data, "display_time")
	assert.Len(t, f.s.Metrics.History(), 1)
	assert.Zero(t, journaled(f.s, events.MetricsUpdated))
}

func TestRefreshNetwork(t *testing.T) {
	f := newFixture(t, Config{})

	for i := 0; i < 50; i++ {
		require.NoError(t, f.ctrl.RefreshNetwork())
	}

	assert.Len(t, f.rec.ofType(events.NetworkMetricsUpdated), 50)
	assert.Equal(t, len(f.rec.ofType(events.QuantumIntrusionDetected)), journaled(f.s, events.QuantumIntrusionDetected))
}

func TestSyncClock(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.ctrl.SyncClock())

	synced := f.rec.ofType(events.TimeSynced)
	require.Len(t, synced, 1)
	offset := synced[0].Data["offset_ms"].(float64)
	assert.GreaterOrEqual(t, offset, -5.0)
	assert.Less(t, offset, 5.0)
	assert.False(t, f.s.Clock.SyncState().LastSync.IsZero())
}

func TestRegisterJobs(t *testing.T) {
	f := newFixture(t, Config{})
	sched := scheduler.New(zerolog.New(nil).Level(zerolog.Disabled))

	require.NoError(t, f.ctrl.RegisterJobs(sched, Intervals{Metrics: time.Second, Network: 5 * time.Second, NTPSync: time.Hour}))

	jobs := sched.Jobs()
	assert.Contains(t, jobs, "metrics_sample")
	assert.Contains(t, jobs, "network_refresh")
	assert.Contains(t, jobs, "ntp_sync")

	assert.Error(t, f.ctrl.RegisterJobs(sched, Intervals{Metrics: time.Second, Network: time.Second, NTPSync: time.Second}))
}
