package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aristath/qdash/internal/config"
	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		DataDir:                dataDir,
		MaxQubits:              100,
		DefaultQubits:          5,
		EventLogCapacity:       1000,
		UserAgent:              "qdash-test",
		Seed:                   42,
		MetricsInterval:        time.Second,
		NetworkRefreshInterval: 5 * time.Second,
		NTPSyncInterval:        time.Hour,
		MetricsHistorySize:     10,
		ArtifactDir:            filepath.Join(dataDir, "exports"),
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t.TempDir())

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, container)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.StateDB)
	assert.NotNil(t, container.KV)
	assert.NotNil(t, container.RNG)
	assert.NotNil(t, container.EventBus)
	assert.NotNil(t, container.EventManager)
	assert.NotNil(t, container.Processor)
	assert.NotNil(t, container.Scheduler)
	assert.NotNil(t, container.Session)
	assert.NotNil(t, container.Controller)
	assert.NotNil(t, container.Analytics)
	assert.NotNil(t, container.Registry)
	assert.Nil(t, container.HostReader)

	assert.Equal(t, uint64(42), container.RNG.Seed())
	assert.Equal(t, 5, container.Session.Circuit.QubitCount())
	assert.Equal(t, 100, container.Session.Circuit.MaxQubits())

	jobs := container.Scheduler.Jobs()
	assert.Contains(t, jobs, "metrics_sample")
	assert.Contains(t, jobs, "network_refresh")
	assert.Contains(t, jobs, "ntp_sync")
}

func TestWire_HostStats(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.HostStats = true

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.HostReader)
}

func TestWire_PersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(t.TempDir())
	ctx := context.Background()

	first, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	first.Start()

	count, err := first.Controller.SetQubitCount(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, count)

	_, err = first.Controller.ApplyOperation(ctx, circuit.GateHadamard, []int{0})
	require.NoError(t, err)

	_, err = first.Controller.SaveCircuit(ctx)
	require.NoError(t, err)
	entries := first.Session.Journal.Count()
	require.NoError(t, first.Close())

	second, err := Wire(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	second.Start()
	t.Cleanup(func() { second.Close() })

	// Event log is reloaded from state.db
	assert.Equal(t, entries, second.Session.Journal.Count())

	snapshot, err := second.Controller.RestoreCircuit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, snapshot.QubitCount)
	assert.Len(t, snapshot.Operations, 1)
}

func TestStart_ConnectsNetworkOnce(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.ConnectOnStart = true

	container, err := Wire(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.Equal(t, network.ConnectionDisconnected, container.Session.Network.ConnectionStatus())

	container.Start()

	require.Eventually(t, func() bool {
		return container.Session.Network.ConnectionStatus() == network.ConnectionConnected
	}, 3*time.Second, 10*time.Millisecond)
	assert.Len(t, container.Session.Network.ActiveNodes(), 5)

	require.Eventually(t, func() bool {
		return len(container.Session.Journal.RecentByEvent(10, "NETWORK_CONNECTED")) == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestWire_InvalidDataDir(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	container, err := Wire(context.Background(), testConfig(filepath.Join(blocker, "data")), zerolog.Nop())
	assert.Error(t, err)
	assert.Nil(t, container)
}
