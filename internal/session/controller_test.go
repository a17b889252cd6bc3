package session

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/aristath/qdash/internal/artifacts"
	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/kvstore"
	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/modules/metrics"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/random"
	"github.com/aristath/qdash/internal/work"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*events.Event
}

func (r *recorder) handle(e *events.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) ofType(t events.EventType) []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	ctrl *Controller
	s    *Session
	kv   *kvstore.Memory
	rec  *recorder
}

func newFixture(t *testing.T, cfg Config, sinks ...artifacts.Sink) *fixture {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	rng := random.NewSeeded(17)
	kv := kvstore.NewMemory()

	bus := events.NewBus(logger)
	rec := &recorder{}
	bus.SubscribeAll(rec.handle)

	queue := work.NewProcessor(16, logger)
	go queue.Run()
	t.Cleanup(queue.Stop)

	clock := eventlog.NewClock(rng)
	journal := eventlog.New(eventlog.Config{Capacity: 100, UserAgent: "test"}, kv, rng, clock, logger)
	journal.Attach(bus, events.Journaled)

	networkStore := network.NewStore(0, rng, logger)
	s := &Session{
		Circuit:   circuit.NewStore(circuit.Config{MaxQubits: 100, InitialQubits: 5}, kv, rng, logger),
		Network:   networkStore,
		Journal:   journal,
		Clock:     clock,
		Metrics:   metrics.NewSource(10, rng, nil, logger),
		Registry:  metrics.NewRegistry(),
		Settings:  settings.NewService(settings.NewRepository(kv, logger), 100, logger),
		Security:  security.NewService(networkStore, journal, logger),
		Events:    events.NewManager(bus, logger),
		Queue:     queue,
		Artifacts: artifacts.NewPublisher(logger, sinks...),
	}

	ctrl := NewController(s, cfg, rng, logger)
	t.Cleanup(ctrl.Stop)
	return &fixture{ctrl: ctrl, s: s, kv: kv, rec: rec}
}

func journaled(s *Session, name events.EventType) int {
	n := 0
	for _, e := range s.Journal.Entries() {
		if e.Event == string(name) {
			n++
		}
	}
	return n
}

func TestApplyOperation_HadamardDefaultTarget(t *testing.T) {
	f := newFixture(t, Config{})

	op, err := f.ctrl.ApplyOperation(context.Background(), circuit.GateHadamard, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, op.Depth)
	assert.Equal(t, []int{0}, op.Targets)
	q := f.s.Circuit.Qubits()[0]
	assert.Equal(t, "|+⟩", q.State)
	assert.Equal(t, 0.5, q.Probability.Zero)

	applied := f.rec.ofType(events.QuantumOperationApplied)
	require.Len(t, applied, 1)
	assert.Equal(t, "hadamard", applied[0].Data["operation"])
	assert.Equal(t, 5.0, applied[0].Data["qubit_count"])
	assert.Equal(t, 1.0, applied[0].Data["circuit_depth"])

	busy := f.rec.ofType(events.BusyStateChanged)
	require.Len(t, busy, 2)
	assert.Equal(t, true, busy[0].Data["busy"])
	assert.Equal(t, false, busy[1].Data["busy"])
	assert.False(t, f.ctrl.Busy().Busy)

	assert.Equal(t, 1, journaled(f.s, events.QuantumOperationApplied))
	assert.Zero(t, journaled(f.s, events.BusyStateChanged))
}

func TestApplyOperation_UnknownGate(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.ctrl.ApplyOperation(context.Background(), "toffoli", []int{0, 1, 2})
	assert.ErrorIs(t, err, circuit.ErrUnknownGate)
	assert.ErrorIs(t, f.ctrl.StartApplyOperation("toffoli", nil), circuit.ErrUnknownGate)

	assert.Empty(t, f.s.Circuit.Operations())
	assert.Empty(t, f.rec.ofType(events.BusyStateChanged))
}

func TestApplyOperation_AutoSave(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.ctrl.ApplyOperation(context.Background(), circuit.GateCNOT, []int{0, 1})
	require.NoError(t, err)

	var saved circuit.SavedCircuit
	require.NoError(t, f.kv.Get(circuit.CircuitKey, &saved))
	assert.Len(t, saved.Operations, 1)

	_, err = f.ctrl.SaveSettings(context.Background(), settings.Settings{MaxQubits: 5, AutoSave: false, Performance: 75, SecurityLevel: "high"})
	require.NoError(t, err)
	_, err = f.ctrl.ApplyOperation(context.Background(), circuit.GateHadamard, nil)
	require.NoError(t, err)

	require.NoError(t, f.kv.Get(circuit.CircuitKey, &saved))
	assert.Len(t, saved.Operations, 1)
}

func TestBusyGatesCommands(t *testing.T) {
	f := newFixture(t, Config{OperationDelayMin: time.Hour, OperationDelayMax: time.Hour})

	require.NoError(t, f.ctrl.StartApplyOperation(circuit.GateGrover, nil))
	state := f.ctrl.Busy()
	assert.True(t, state.Busy)
	assert.Equal(t, "apply:grover", state.Command)

	ctx := context.Background()
	_, err := f.ctrl.ApplyOperation(ctx, circuit.GateHadamard, nil)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.ctrl.SetQubitCount(ctx, 3)
	assert.ErrorIs(t, err, ErrBusy)
	_, err = f.ctrl.Reset(ctx)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, f.ctrl.StartExecuteCircuit(), ErrBusy)

	_, err = f.ctrl.SaveCircuit(ctx)
	assert.NoError(t, err)

	f.ctrl.Stop()
	assert.False(t, f.ctrl.Busy().Busy)
	assert.Empty(t, f.s.Circuit.Operations())
	assert.Empty(t, f.rec.ofType(events.ErrorOccurred))

	assert.ErrorIs(t, f.ctrl.StartApplyOperation(circuit.GateHadamard, nil), ErrStopped)
}

func TestApplyOperation_CancelledWaitReleasesBusy(t *testing.T) {
	f := newFixture(t, Config{OperationDelayMin: time.Hour, OperationDelayMax: time.Hour})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := f.ctrl.ApplyOperation(ctx, circuit.GateHadamard, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, f.ctrl.Busy().Busy)
	assert.Empty(t, f.s.Circuit.Operations())
}

func TestStartApplyOperation_Completes(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.ctrl.StartApplyOperation(circuit.GateBellState, nil))
	assert.Eventually(t, func() bool {
		return len(f.s.Circuit.Operations()) == 1 && !f.ctrl.Busy().Busy
	}, time.Second, 5*time.Millisecond)

	qubits := f.s.Circuit.Qubits()
	assert.Equal(t, []int{1}, qubits[0].EntangledWith)
	assert.Equal(t, []int{0}, qubits[1].EntangledWith)
}

func TestSetQubitCount_Clamps(t *testing.T) {
	f := newFixture(t, Config{})

	n, err := f.ctrl.SetQubitCount(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, 100, f.s.Circuit.QubitCount())

	updated := f.rec.ofType(events.QubitCountUpdated)
	require.Len(t, updated, 1)
	assert.Equal(t, 100.0, updated[0].Data["new_count"])

	n, err = f.ctrl.SetQubitCount(context.Background(), -4)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestResetSaveRestore_RoundTrip(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.ctrl.ApplyOperation(ctx, circuit.GateHadamard, nil)
	require.NoError(t, err)
	_, err = f.ctrl.SetQubitCount(ctx, 7)
	require.NoError(t, err)

	snap, err := f.ctrl.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, snap.QubitCount)
	assert.Empty(t, snap.Operations)

	record, err := f.ctrl.SaveCircuit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, record.Qubits)
	assert.Equal(t, "3.0.0-ENTERPRISE", record.Version)

	_, err = f.ctrl.SetQubitCount(ctx, 2)
	require.NoError(t, err)

	restored, err := f.ctrl.RestoreCircuit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, restored.QubitCount)
	assert.Empty(t, restored.Operations)

	assert.Equal(t, 1, journaled(f.s, events.CircuitReset))
	assert.Equal(t, 1, journaled(f.s, events.CircuitSaved))
	assert.Equal(t, 1, journaled(f.s, events.CircuitRestored))
}

func TestRestoreCircuit_NothingSaved(t *testing.T) {
	f := newFixture(t, Config{})
	_, err := f.ctrl.RestoreCircuit(context.Background())
	assert.ErrorIs(t, err, circuit.ErrNoSavedCircuit)
	assert.False(t, f.ctrl.Busy().Busy)
}

func TestExecuteCircuit(t *testing.T) {
	f := newFixture(t, Config{})

	require.NoError(t, f.ctrl.ExecuteCircuit(context.Background()))
	assert.Len(t, f.rec.ofType(events.CircuitExecutionStarted), 1)
	assert.Len(t, f.rec.ofType(events.CircuitExecutionCompleted), 1)

	require.NoError(t, f.ctrl.StartExecuteCircuit())
	assert.Eventually(t, func() bool {
		return len(f.rec.ofType(events.CircuitExecutionCompleted)) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestConnectNetwork_Once(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	first, err := f.ctrl.ConnectNetwork(ctx)
	require.NoError(t, err)
	second, err := f.ctrl.ConnectNetwork(ctx)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 5, first.Nodes)
	assert.Len(t, f.s.Network.ActiveNodes(), 5)
	assert.Len(t, f.rec.ofType(events.NetworkConnected), 1)
}

func TestStartConnectNetwork(t *testing.T) {
	f := newFixture(t, Config{})

	f.ctrl.StartConnectNetwork()

	require.Eventually(t, func() bool {
		return f.s.Network.ConnectionStatus() == network.ConnectionConnected
	}, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		return len(f.rec.ofType(events.NetworkConnected)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSecurityScan(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.ctrl.SecurityScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "SECURE", result.Status)

	completed := f.rec.ofType(events.SecurityScanCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, 0.0, completed[0].Data["threats_detected"])
	assert.Equal(t, 0.0, completed[0].Data["vulnerabilities"])
	assert.Equal(t, "SECURE", completed[0].Data["status"])

	assert.Len(t, f.s.Security.RecentEvents(), 1)
}

func TestStartSecurityScan_InProgress(t *testing.T) {
	f := newFixture(t, Config{ScanDelay: time.Hour})

	require.NoError(t, f.ctrl.StartSecurityScan())
	assert.ErrorIs(t, f.ctrl.StartSecurityScan(), security.ErrScanInProgress)

	f.ctrl.Stop()
	assert.False(t, f.s.Security.Scanning())
	assert.Empty(t, f.rec.ofType(events.SecurityScanCompleted))
}

func TestSaveSettings_AppliesQubitCount(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	saved, err := f.ctrl.SaveSettings(ctx, settings.Settings{MaxQubits: 12, AutoSave: true, Performance: 50, SecurityLevel: "medium"})
	require.NoError(t, err)
	assert.Equal(t, 12, saved.MaxQubits)
	assert.Equal(t, 12, f.s.Circuit.QubitCount())
	assert.Len(t, f.rec.ofType(events.SettingsSaved), 1)

	_, err = f.ctrl.SaveSettings(ctx, settings.Settings{MaxQubits: 12, Performance: 33, SecurityLevel: "medium"})
	assert.Error(t, err)
	assert.Len(t, f.rec.ofType(events.SettingsSaved), 1)

	defaults, err := f.ctrl.ResetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), defaults)
	assert.Equal(t, 5, f.s.Circuit.QubitCount())
	assert.Len(t, f.rec.ofType(events.SettingsReset), 1)
}

func TestExportCircuit_DeliversToSink(t *testing.T) {
	sink, err := artifacts.NewLocalSink(t.TempDir())
	require.NoError(t, err)
	f := newFixture(t, Config{}, sink)

	result, err := f.ctrl.ExportCircuit(context.Background())
	require.NoError(t, err)

	assert.Regexp(t, `^quantum-circuit-\d+\.json$`, result.Filename)
	require.Len(t, result.Deliveries, 1)
	data, err := os.ReadFile(result.Deliveries[0].Location)
	require.NoError(t, err)
	assert.Equal(t, result.Body, data)

	exported := f.rec.ofType(events.CircuitExported)
	require.Len(t, exported, 1)
	assert.Equal(t, result.Filename, exported[0].Data["filename"])
	assert.Equal(t, result.Deliveries[0].Location, exported[0].Data["location"])
}

func TestExportSettings(t *testing.T) {
	f := newFixture(t, Config{})

	result, err := f.ctrl.ExportSettings(context.Background(), "yaml")
	require.NoError(t, err)
	assert.Regexp(t, `^rados-quantum-settings-\d+\.yaml$`, result.Filename)
	assert.Contains(t, string(result.Body), "securityLevel: high")
	assert.Empty(t, result.Deliveries)

	exported := f.rec.ofType(events.SettingsExported)
	require.Len(t, exported, 1)
	assert.Equal(t, "yaml", exported[0].Data["format"])

	_, err = f.ctrl.ExportSettings(context.Background(), "toml")
	assert.ErrorIs(t, err, settings.ErrUnsupportedFormat)
}
