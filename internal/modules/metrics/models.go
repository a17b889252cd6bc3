// Package metrics generates the dashboard's system telemetry: periodic
// snapshots, the fixed health map and their Prometheus exposition.
package metrics

import "time"

// Snapshot is one metrics sample. Percentages are in [0, 100].
type Snapshot struct {
	NetworkHealth       float64   `json:"network_health"`
	QuantumCoherence    float64   `json:"quantum_coherence"`
	OperationsPerSecond float64   `json:"operations_per_second"`
	CPUUsage            float64   `json:"cpu_usage"`
	MemoryUsage         float64   `json:"memory_usage"`
	Uptime              int64     `json:"uptime"`
	UptimeHuman         string    `json:"uptime_human"`
	HostBacked          bool      `json:"host_backed"`
	Timestamp           time.Time `json:"timestamp"`
}

// Health is the component status map shown on the dashboard
type Health struct {
	Overall     string `json:"overall"`
	QuantumCore string `json:"quantum_core"`
	Network     string `json:"network"`
	Security    string `json:"security"`
	Performance string `json:"performance"`
	Compliance  string `json:"compliance"`
}

// SystemHealth is the fixed health map
var SystemHealth = Health{
	Overall:     "HEALTHY",
	QuantumCore: "OPERATIONAL",
	Network:     "CONNECTED",
	Security:    "SECURE",
	Performance: "OPTIMAL",
	Compliance:  "COMPLIANT",
}
