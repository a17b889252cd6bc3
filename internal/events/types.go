// Package events provides the in-process event bus that carries store changes
// to the event log and to every view (SSE, websocket, TUI).
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// Circuit
	QuantumOperationApplied   EventType = "QUANTUM_OPERATION_APPLIED"
	QubitCountUpdated         EventType = "QUBIT_COUNT_UPDATED"
	CircuitReset              EventType = "CIRCUIT_RESET"
	CircuitSaved              EventType = "CIRCUIT_SAVED"
	CircuitRestored           EventType = "CIRCUIT_RESTORED"
	CircuitExported           EventType = "CIRCUIT_EXPORTED"
	CircuitExecutionStarted   EventType = "CIRCUIT_EXECUTION_STARTED"
	CircuitExecutionCompleted EventType = "CIRCUIT_EXECUTION_COMPLETED"

	// Network
	NetworkConnected         EventType = "NETWORK_CONNECTED"
	NetworkMetricsUpdated    EventType = "NETWORK_METRICS_UPDATED"
	QuantumIntrusionDetected EventType = "QUANTUM_INTRUSION_DETECTED"

	// Security
	SecurityScanCompleted EventType = "SECURITY_SCAN_COMPLETED"

	// Settings
	SettingsSaved    EventType = "SETTINGS_SAVED"
	SettingsReset    EventType = "SETTINGS_RESET"
	SettingsExported EventType = "SETTINGS_EXPORTED"

	// System
	MetricsUpdated      EventType = "METRICS_UPDATED"
	TimeSynced          EventType = "TIME_SYNCED"
	BusyStateChanged    EventType = "BUSY_STATE_CHANGED"
	SystemStatusChanged EventType = "SYSTEM_STATUS_CHANGED"
	LogEntryAppended    EventType = "LOG_ENTRY_APPENDED"
	ErrorOccurred       EventType = "ERROR_OCCURRED"
)

// Journaled lists the event types recorded in the persistent event log.
// Periodic telemetry (metrics, status, busy flips) stays off the log.
var Journaled = []EventType{
	QuantumOperationApplied,
	QubitCountUpdated,
	CircuitReset,
	CircuitSaved,
	CircuitRestored,
	CircuitExported,
	CircuitExecutionStarted,
	CircuitExecutionCompleted,
	NetworkConnected,
	QuantumIntrusionDetected,
	SecurityScanCompleted,
	SettingsSaved,
	SettingsReset,
	SettingsExported,
	ErrorOccurred,
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type" msgpack:"type"`
	Timestamp time.Time              `json:"timestamp" msgpack:"timestamp"`
	Data      map[string]interface{} `json:"data" msgpack:"data"`
	Module    string                 `json:"module" msgpack:"module"`
}
