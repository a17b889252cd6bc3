package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/qdash/internal/artifacts"
	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/random"
	"github.com/rs/zerolog"
)

const module = "session"

var (
	// ErrBusy is returned when a gated command arrives while another runs
	ErrBusy = errors.New("quantum system busy")
	// ErrStopped is returned once the controller has been stopped
	ErrStopped = errors.New("session stopped")
)

// Config holds the simulated command timings
type Config struct {
	OperationDelayMin time.Duration
	OperationDelayMax time.Duration
	ExecuteDelay      time.Duration
	ScanDelay         time.Duration
}

// BusyState is the current busy flag
type BusyState struct {
	Busy    bool      `json:"busy"`
	Command string    `json:"command,omitempty"`
	Since   time.Time `json:"since,omitempty"`
}

// ExportResult is a rendered export and where it was delivered
type ExportResult struct {
	Filename    string               `json:"filename"`
	ContentType string               `json:"content_type"`
	Body        []byte               `json:"-"`
	Deliveries  []artifacts.Delivery `json:"deliveries"`
}

// Controller dispatches commands against a Session.
//
// Mutations run on the session's work queue. Simulated delays are waited
// outside the queue so periodic jobs keep running meanwhile. Apply-operation,
// execute, resize, reset, restore and settings changes are gated by the busy
// flag; saves, exports, connect and scans are not.
type Controller struct {
	s   *Session
	cfg Config
	rng *random.Source

	mu    sync.Mutex
	busy  BusyState
	clock func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	log zerolog.Logger
}

// NewController creates a controller. Stop cancels any simulated wait in flight.
func NewController(s *Session, cfg Config, rng *random.Source, log zerolog.Logger) *Controller {
	if cfg.OperationDelayMax < cfg.OperationDelayMin {
		cfg.OperationDelayMax = cfg.OperationDelayMin
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		s:      s,
		cfg:    cfg,
		rng:    rng,
		clock:  time.Now,
		ctx:    ctx,
		cancel: cancel,
		log:    log.With().Str("service", "session").Logger(),
	}
}

// Session returns the controlled session
func (c *Controller) Session() *Session {
	return c.s
}

// Stop cancels pending simulated waits and blocks until background commands return
func (c *Controller) Stop() {
	c.cancel()
	c.wg.Wait()
}

// Busy returns the busy flag
func (c *Controller) Busy() BusyState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

func (c *Controller) begin(command string) error {
	if c.ctx.Err() != nil {
		return ErrStopped
	}

	c.mu.Lock()
	if c.busy.Busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = BusyState{Busy: true, Command: command, Since: c.clock()}
	c.mu.Unlock()

	c.s.Events.EmitTyped(module, &events.BusyStateData{Busy: true, Command: command})
	return nil
}

func (c *Controller) end() {
	c.mu.Lock()
	command := c.busy.Command
	c.busy = BusyState{}
	c.mu.Unlock()

	c.s.Events.EmitTyped(module, &events.BusyStateData{Busy: false, Command: command})
}

// wait sleeps d unless ctx or the controller is cancelled first
func (c *Controller) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		select {
		case <-c.ctx.Done():
			return ErrStopped
		default:
			return ctx.Err()
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrStopped
	}
}

// background runs fn on the controller's own context, releasing the busy flag after
func (c *Controller) background(command string, fn func(ctx context.Context) error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.end()

		if err := fn(c.ctx); err != nil && c.ctx.Err() == nil {
			c.s.Events.EmitError(module, err, map[string]interface{}{"command": command})
		}
	}()
}

// ApplyOperation waits the simulated operation delay, then applies the gate.
// Unknown gates fail immediately with circuit.ErrUnknownGate.
func (c *Controller) ApplyOperation(ctx context.Context, name string, targets []int) (circuit.Operation, error) {
	if _, ok := circuit.LookupGate(name); !ok {
		return circuit.Operation{}, fmt.Errorf("%w: %s", circuit.ErrUnknownGate, name)
	}
	if err := c.begin("apply:" + name); err != nil {
		return circuit.Operation{}, err
	}
	defer c.end()

	return c.applyOperation(ctx, name, targets)
}

// StartApplyOperation is ApplyOperation in the background. Busy and unknown
// gate errors are returned synchronously.
func (c *Controller) StartApplyOperation(name string, targets []int) error {
	if _, ok := circuit.LookupGate(name); !ok {
		return fmt.Errorf("%w: %s", circuit.ErrUnknownGate, name)
	}
	command := "apply:" + name
	if err := c.begin(command); err != nil {
		return err
	}

	targets = append([]int(nil), targets...)
	c.background(command, func(ctx context.Context) error {
		_, err := c.applyOperation(ctx, name, targets)
		return err
	})
	return nil
}

func (c *Controller) applyOperation(ctx context.Context, name string, targets []int) (circuit.Operation, error) {
	delay := c.rng.Duration(c.cfg.OperationDelayMin, c.cfg.OperationDelayMax)
	if err := c.wait(ctx, delay); err != nil {
		return circuit.Operation{}, err
	}

	var (
		op             circuit.Operation
		qubits, depth  int
		autoSave       bool
		autoSaveFailed error
	)
	err := c.s.Queue.Do(ctx, "apply_operation", func() error {
		var err error
		op, err = c.s.Circuit.ApplyOperation(name, targets)
		if err != nil {
			return err
		}
		qubits = c.s.Circuit.QubitCount()
		depth = c.s.Circuit.Depth()

		if c.s.Settings.Get().AutoSave {
			autoSave = true
			_, autoSaveFailed = c.s.Circuit.SaveCircuit()
		}
		return nil
	})
	if err != nil {
		return circuit.Operation{}, err
	}

	c.s.Events.EmitTyped(module, &events.OperationAppliedData{
		Operation:    op.Name,
		Targets:      op.Targets,
		QubitCount:   qubits,
		CircuitDepth: depth,
	})
	if autoSave {
		if autoSaveFailed != nil {
			c.s.Events.EmitError(module, autoSaveFailed, map[string]interface{}{"command": "auto_save"})
		} else {
			c.log.Debug().Int("depth", depth).Msg("Circuit auto-saved")
		}
	}
	return op, nil
}

// SetQubitCount resizes the register, clamping n into range
func (c *Controller) SetQubitCount(ctx context.Context, n int) (int, error) {
	if err := c.begin("set_qubits"); err != nil {
		return 0, err
	}
	defer c.end()

	return c.setQubitCount(ctx, n)
}

func (c *Controller) setQubitCount(ctx context.Context, n int) (int, error) {
	var applied int
	if err := c.s.Queue.Do(ctx, "set_qubit_count", func() error {
		applied = c.s.Circuit.SetQubitCount(n)
		return nil
	}); err != nil {
		return 0, err
	}

	if applied != n {
		c.log.Debug().Int("requested", n).Int("applied", applied).Msg("Qubit count clamped")
	}
	c.s.Events.EmitTyped(module, &events.QubitCountUpdatedData{NewCount: applied})
	return applied, nil
}

// Reset clears the circuit
func (c *Controller) Reset(ctx context.Context) (circuit.Snapshot, error) {
	if err := c.begin("reset"); err != nil {
		return circuit.Snapshot{}, err
	}
	defer c.end()

	var snap circuit.Snapshot
	if err := c.s.Queue.Do(ctx, "reset_circuit", func() error {
		c.s.Circuit.Reset()
		snap = c.s.Circuit.Snapshot()
		return nil
	}); err != nil {
		return circuit.Snapshot{}, err
	}

	c.s.Events.Emit(events.CircuitReset, module, map[string]interface{}{
		"qubit_count": snap.QubitCount,
	})
	return snap, nil
}

// SaveCircuit persists the circuit. On a storage failure the record is still
// returned together with the error.
func (c *Controller) SaveCircuit(ctx context.Context) (circuit.SavedCircuit, error) {
	var (
		record  circuit.SavedCircuit
		saveErr error
	)
	if err := c.s.Queue.Do(ctx, "save_circuit", func() error {
		record, saveErr = c.s.Circuit.SaveCircuit()
		return nil
	}); err != nil {
		return circuit.SavedCircuit{}, err
	}

	if saveErr != nil {
		c.s.Events.EmitError(module, saveErr, map[string]interface{}{"command": "save_circuit"})
		return record, saveErr
	}

	c.s.Events.Emit(events.CircuitSaved, module, map[string]interface{}{
		"circuit": record,
	})
	return record, nil
}

// RestoreCircuit loads the saved circuit and replays it
func (c *Controller) RestoreCircuit(ctx context.Context) (circuit.Snapshot, error) {
	if err := c.begin("restore"); err != nil {
		return circuit.Snapshot{}, err
	}
	defer c.end()

	var snap circuit.Snapshot
	if err := c.s.Queue.Do(ctx, "restore_circuit", func() error {
		record, err := c.s.Circuit.LoadCircuit()
		if err != nil {
			return err
		}
		snap = c.s.Circuit.RestoreCircuit(record)
		return nil
	}); err != nil {
		return circuit.Snapshot{}, err
	}

	c.s.Events.Emit(events.CircuitRestored, module, map[string]interface{}{
		"qubit_count": snap.QubitCount,
		"operations":  len(snap.Operations),
	})
	return snap, nil
}

// ExportCircuit renders the circuit export and delivers it to the artifact sinks.
// Delivery failures are reported in the result, not as an error.
func (c *Controller) ExportCircuit(ctx context.Context) (ExportResult, error) {
	var (
		filename string
		body     []byte
	)
	if err := c.s.Queue.Do(ctx, "export_circuit", func() error {
		var err error
		_, filename, body, err = c.s.Circuit.ExportCircuit()
		return err
	}); err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{Filename: filename, ContentType: "application/json", Body: body}
	result.Deliveries = c.publish(ctx, filename, result.ContentType, body)

	c.s.Events.EmitTyped(module, events.NewCircuitExportData(filename, firstLocation(result.Deliveries)))
	return result, nil
}

// ExecuteCircuit logs the start, waits the execute delay and logs completion
func (c *Controller) ExecuteCircuit(ctx context.Context) error {
	if err := c.begin("execute"); err != nil {
		return err
	}
	defer c.end()

	return c.executeCircuit(ctx)
}

// StartExecuteCircuit is ExecuteCircuit in the background
func (c *Controller) StartExecuteCircuit() error {
	if err := c.begin("execute"); err != nil {
		return err
	}
	c.background("execute", c.executeCircuit)
	return nil
}

func (c *Controller) executeCircuit(ctx context.Context) error {
	c.s.Events.Emit(events.CircuitExecutionStarted, module, map[string]interface{}{
		"qubit_count":   c.s.Circuit.QubitCount(),
		"circuit_depth": c.s.Circuit.Depth(),
	})

	if err := c.wait(ctx, c.cfg.ExecuteDelay); err != nil {
		c.log.Warn().Err(err).Msg("Circuit execution interrupted")
		return err
	}

	c.s.Events.Emit(events.CircuitExecutionCompleted, module, map[string]interface{}{
		"qubit_count":   c.s.Circuit.QubitCount(),
		"circuit_depth": c.s.Circuit.Depth(),
	})
	return nil
}

// ConnectNetwork scans and establishes the simulated network. A connected
// network returns its existing result straight away.
func (c *Controller) ConnectNetwork(ctx context.Context) (network.ConnectResult, error) {
	if result, ok := c.s.Network.Result(); ok {
		return result, nil
	}

	ctx, cancel := c.merge(ctx)
	defer cancel()

	nodes, err := c.s.Network.Scan(ctx)
	if err != nil {
		if c.ctx.Err() != nil {
			return network.ConnectResult{}, ErrStopped
		}
		return network.ConnectResult{}, err
	}

	var (
		result   network.ConnectResult
		existing bool
	)
	if err := c.s.Queue.Do(ctx, "establish_network", func() error {
		_, existing = c.s.Network.Result()
		result = c.s.Network.Establish(nodes)
		return nil
	}); err != nil {
		return network.ConnectResult{}, err
	}

	if !existing {
		c.s.Events.Emit(events.NetworkConnected, module, map[string]interface{}{
			"connection": result,
		})
	}
	return result, nil
}

// SecurityScan runs the simulated scan
func (c *Controller) SecurityScan(ctx context.Context) (security.ScanResult, error) {
	if err := c.s.Security.BeginScan(); err != nil {
		return security.ScanResult{}, err
	}
	return c.securityScan(ctx)
}

// StartConnectNetwork runs ConnectNetwork in the background under the
// controller's lifetime. Stop cancels a pending connect.
func (c *Controller) StartConnectNetwork() {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.ConnectNetwork(c.ctx); err != nil && c.ctx.Err() == nil {
			c.s.Events.EmitError(module, err, map[string]interface{}{"command": "connect_network"})
		}
	}()
}

// StartSecurityScan is SecurityScan in the background
func (c *Controller) StartSecurityScan() error {
	if c.ctx.Err() != nil {
		return ErrStopped
	}
	if err := c.s.Security.BeginScan(); err != nil {
		return err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if _, err := c.securityScan(c.ctx); err != nil && c.ctx.Err() == nil {
			c.s.Events.EmitError(module, err, map[string]interface{}{"command": "security_scan"})
		}
	}()
	return nil
}

func (c *Controller) securityScan(ctx context.Context) (security.ScanResult, error) {
	if err := c.wait(ctx, c.cfg.ScanDelay); err != nil {
		c.s.Security.AbortScan()
		return security.ScanResult{}, err
	}

	var result security.ScanResult
	if err := c.s.Queue.Do(ctx, "complete_security_scan", func() error {
		result = c.s.Security.CompleteScan()
		return nil
	}); err != nil {
		c.s.Security.AbortScan()
		return security.ScanResult{}, err
	}

	c.s.Events.EmitTyped(module, &events.SecurityScanData{
		ThreatsDetected: result.ThreatsDetected,
		Vulnerabilities: result.Vulnerabilities,
		Status:          result.Status,
	})
	return result, nil
}

// SaveSettings validates and stores in, then applies its qubit count
func (c *Controller) SaveSettings(ctx context.Context, in settings.Settings) (settings.Settings, error) {
	if err := c.s.Settings.Validate(in); err != nil {
		return settings.Settings{}, err
	}
	if err := c.begin("save_settings"); err != nil {
		return settings.Settings{}, err
	}
	defer c.end()

	var saved settings.Settings
	if err := c.s.Queue.Do(ctx, "save_settings", func() error {
		var err error
		saved, err = c.s.Settings.Save(in)
		return err
	}); err != nil {
		return settings.Settings{}, err
	}

	c.s.Events.Emit(events.SettingsSaved, module, map[string]interface{}{
		"settings": saved,
	})

	if _, err := c.setQubitCount(ctx, saved.MaxQubits); err != nil {
		return saved, err
	}
	return saved, nil
}

// ResetSettings restores default settings and a five-qubit register
func (c *Controller) ResetSettings(ctx context.Context) (settings.Settings, error) {
	if err := c.begin("reset_settings"); err != nil {
		return settings.Settings{}, err
	}
	defer c.end()

	var defaults settings.Settings
	if err := c.s.Queue.Do(ctx, "reset_settings", func() error {
		defaults = c.s.Settings.Reset()
		return nil
	}); err != nil {
		return settings.Settings{}, err
	}

	c.s.Events.Emit(events.SettingsReset, module, map[string]interface{}{
		"settings": defaults,
	})

	if _, err := c.setQubitCount(ctx, defaults.MaxQubits); err != nil {
		return defaults, err
	}
	return defaults, nil
}

// ExportSettings renders the settings in format and delivers them
func (c *Controller) ExportSettings(ctx context.Context, format string) (ExportResult, error) {
	file, err := c.s.Settings.Export(format)
	if err != nil {
		return ExportResult{}, err
	}

	result := ExportResult{Filename: file.Filename, ContentType: file.ContentType, Body: file.Body}
	result.Deliveries = c.publish(ctx, file.Filename, file.ContentType, file.Body)

	c.s.Events.EmitTyped(module, events.NewSettingsExportData(file.Filename, file.Format, firstLocation(result.Deliveries)))
	return result, nil
}

func (c *Controller) publish(ctx context.Context, name, contentType string, body []byte) []artifacts.Delivery {
	if c.s.Artifacts == nil {
		return []artifacts.Delivery{}
	}
	deliveries, err := c.s.Artifacts.Publish(ctx, name, contentType, body)
	if err != nil {
		c.log.Warn().Err(err).Str("artifact", name).Msg("Artifact delivery incomplete")
	}
	return deliveries
}

// merge returns a context cancelled when either ctx or the controller is
func (c *Controller) merge(ctx context.Context) (context.Context, context.CancelFunc) {
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

func firstLocation(deliveries []artifacts.Delivery) string {
	for _, d := range deliveries {
		if d.Location != "" {
			return d.Location
		}
	}
	return ""
}
