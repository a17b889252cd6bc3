// Package circuit holds the circuit state store: the qubit display slots, the
// applied operations, and their save/restore/export forms.
package circuit

import (
	"errors"
	"time"
)

const (
	// CircuitKey is the kv key of the saved circuit
	CircuitKey = "rados_quantum_circuit"
	// FormatVersion is stamped on saved circuits
	FormatVersion = "3.0.0-ENTERPRISE"

	groundState = "|0⟩"
)

var (
	// ErrUnknownGate is returned for operation names outside the gate table
	ErrUnknownGate = errors.New("unknown gate")
	// ErrNoSavedCircuit is returned when nothing has been saved yet
	ErrNoSavedCircuit = errors.New("no saved circuit")
)

// Probability is the display pair P(0), P(1)
type Probability struct {
	Zero float64 `json:"0"`
	One  float64 `json:"1"`
}

// Qubit is a display slot
type Qubit struct {
	ID            int         `json:"id"`
	State         string      `json:"state"`
	Probability   Probability `json:"probability"`
	Entangled     bool        `json:"entangled"`
	EntangledWith []int       `json:"entangledWith"`
}

// Operation is an applied gate. Depth is its 0-based sequence position since
// the last reset.
type Operation struct {
	Name      string    `json:"name"`
	Targets   []int     `json:"targets"`
	Depth     int       `json:"depth"`
	Timestamp time.Time `json:"timestamp"`
}

// SavedCircuit is the persisted record
type SavedCircuit struct {
	Qubits     int         `json:"qubits"`
	Operations []Operation `json:"operations"`
	Timestamp  time.Time   `json:"timestamp"`
	Version    string      `json:"version"`
}

// Export is the downloadable artifact
type Export struct {
	Qubits     int         `json:"qubits"`
	Operations []Operation `json:"operations"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Snapshot is a consistent copy of the store
type Snapshot struct {
	Qubits     []Qubit     `json:"qubits"`
	Operations []Operation `json:"operations"`
	QubitCount int         `json:"qubit_count"`
	Depth      int         `json:"circuit_depth"`
	MaxQubits  int         `json:"max_qubits"`
	Entangled  int         `json:"entangled_count"`
}

// StateProbability is one bar of the state distribution chart
type StateProbability struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

func groundQubit(id int) Qubit {
	return Qubit{
		ID:            id,
		State:         groundState,
		Probability:   Probability{Zero: 1, One: 0},
		EntangledWith: []int{},
	}
}

func (q Qubit) clone() Qubit {
	q.EntangledWith = append([]int{}, q.EntangledWith...)
	return q
}

func (o Operation) clone() Operation {
	o.Targets = append([]int{}, o.Targets...)
	return o
}

func cloneOperations(ops []Operation) []Operation {
	out := make([]Operation, len(ops))
	for i, op := range ops {
		out[i] = op.clone()
	}
	return out
}
