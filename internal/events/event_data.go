package events

// EventData is implemented by typed payloads
type EventData interface {
	EventType() EventType
}

// OperationAppliedData is the payload of QUANTUM_OPERATION_APPLIED
type OperationAppliedData struct {
	Operation    string `json:"operation"`
	Targets      []int  `json:"targets"`
	QubitCount   int    `json:"qubit_count"`
	CircuitDepth int    `json:"circuit_depth"`
}

// EventType returns the event type for OperationAppliedData
func (d *OperationAppliedData) EventType() EventType {
	return QuantumOperationApplied
}

// QubitCountUpdatedData is the payload of QUBIT_COUNT_UPDATED
type QubitCountUpdatedData struct {
	NewCount int `json:"new_count"`
}

// EventType returns the event type for QubitCountUpdatedData
func (d *QubitCountUpdatedData) EventType() EventType {
	return QubitCountUpdated
}

// SecurityScanData is the payload of SECURITY_SCAN_COMPLETED
type SecurityScanData struct {
	ThreatsDetected int    `json:"threats_detected"`
	Vulnerabilities int    `json:"vulnerabilities"`
	Status          string `json:"status"`
}

// EventType returns the event type for SecurityScanData
func (d *SecurityScanData) EventType() EventType {
	return SecurityScanCompleted
}

// BusyStateData is the payload of BUSY_STATE_CHANGED
type BusyStateData struct {
	Busy    bool   `json:"busy"`
	Command string `json:"command,omitempty"`
}

// EventType returns the event type for BusyStateData
func (d *BusyStateData) EventType() EventType {
	return BusyStateChanged
}

// ExportData is the payload of CIRCUIT_EXPORTED and SETTINGS_EXPORTED
type ExportData struct {
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Location string `json:"location,omitempty"`
	kind     EventType
}

// NewCircuitExportData builds an ExportData for a circuit export
func NewCircuitExportData(filename, location string) *ExportData {
	return &ExportData{Filename: filename, Format: "json", Location: location, kind: CircuitExported}
}

// NewSettingsExportData builds an ExportData for a settings export
func NewSettingsExportData(filename, format, location string) *ExportData {
	return &ExportData{Filename: filename, Format: format, Location: location, kind: SettingsExported}
}

// EventType returns the event type for ExportData
func (d *ExportData) EventType() EventType {
	return d.kind
}

// ErrorEventData contains data for ERROR_OCCURRED events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
