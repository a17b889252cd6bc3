// Package network holds the simulated quantum network: the datacenter
// catalog, per-session tunnels, the protocol table and refreshed link metrics.
package network

import (
	"errors"
	"time"
)

// Node statuses
const (
	StatusOnline  = "online"
	StatusOffline = "offline"
	StatusWarning = "warning"
)

const (
	// ConnectionConnected is reported once nodes are established
	ConnectionConnected = "CONNECTED"
	// ConnectionDisconnected is reported before the first connect
	ConnectionDisconnected = "DISCONNECTED"

	// SecurityLevel is the fixed link security label
	SecurityLevel = "QUANTUM_ENCRYPTED"
	// Encryption is stamped on every tunnel
	Encryption = "AES-256-QUANTUM"

	// IntrusionEvent is raised on a refresh with probability IntrusionProbability
	IntrusionEvent       = "QUANTUM_INTRUSION_DETECTED"
	IntrusionProbability = 0.01

	protocolActive = "Active"
)

// ErrNotConnected is returned by operations that need an established network
var ErrNotConnected = errors.New("network not connected")

// Node is a simulated remote datacenter
type Node struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Qubits      int       `json:"qubits"`
	Latency     float64   `json:"latency"`
	Status      string    `json:"status"`
	Tunnel      string    `json:"tunnel"`
	Encryption  string    `json:"encryption"`
	Established time.Time `json:"established"`
}

// Metrics are the aggregate link readings
type Metrics struct {
	Latency        float64   `json:"latency"`
	Bandwidth      float64   `json:"bandwidth"`
	NetworkHealth  float64   `json:"network_health"`
	CoherenceTime  float64   `json:"coherence_time"`
	Fidelity       float64   `json:"fidelity"`
	SecurityEvents []string  `json:"security_events"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ConnectResult is returned by Connect
type ConnectResult struct {
	Status    string    `json:"status"`
	Nodes     int       `json:"nodes"`
	Security  string    `json:"security"`
	Timestamp time.Time `json:"timestamp"`
}

// Status is the network page summary
type Status struct {
	Connection    string            `json:"connection"`
	SecurityLevel string            `json:"security_level"`
	Nodes         []Node            `json:"nodes"`
	Protocols     map[string]string `json:"protocols"`
	Metrics       Metrics           `json:"metrics"`
}

// Catalog is the fixed datacenter list scanned on connect
var Catalog = []Node{
	{ID: "EU-QUANTUM-01", Location: "Frankfurt", Qubits: 1000, Latency: 12, Status: StatusOnline},
	{ID: "US-QUANTUM-02", Location: "Oregon", Qubits: 850, Latency: 45, Status: StatusOnline},
	{ID: "ASIA-QUANTUM-03", Location: "Tokyo", Qubits: 750, Latency: 78, Status: StatusWarning},
	{ID: "UK-QUANTUM-04", Location: "London", Qubits: 900, Latency: 23, Status: StatusOnline},
	{ID: "CA-QUANTUM-05", Location: "Toronto", Qubits: 600, Latency: 67, Status: StatusOnline},
}

// Protocols activated on connect
var Protocols = []string{
	"QUANTUM_TCP",
	"ENTANGLEMENT_PROTOCOL",
	"QUANTUM_ERROR_CORRECTION",
	"TELEPORTATION_CHANNEL",
	"QUANTUM_INTERNET",
}
