package circuit

import "sort"

// Gate names
const (
	GateHadamard         = "hadamard"
	GateCNOT             = "cnot"
	GateBellState        = "bell_state"
	GateSuperdenseCoding = "superdense_coding"
	GateTeleportation    = "teleportation"
	GateQFT              = "qft"
	GateGrover           = "grover"
	GateShor             = "shor"
)

// applyMode selects which resolved targets a gate writes to
type applyMode int

const (
	applyEvery applyMode = iota // every target
	applyPair                   // first two targets, entangled with each other
	applyFirst                  // first target only
	applyThird                  // third target only
)

// Gate is the fixed display transform for a named operation
type Gate struct {
	Name  string      `json:"name"`
	Arity int         `json:"arity"`
	State string      `json:"state"`
	P     Probability `json:"probability"`

	// Register gates take any number of targets and default to the first
	// min(Arity, qubits) indices only when none are given.
	Register bool `json:"register"`

	Entangles bool `json:"entangles"`
	mode      applyMode
}

var gates = map[string]Gate{
	GateHadamard:         {Name: GateHadamard, Arity: 1, State: "|+⟩", P: Probability{0.5, 0.5}, mode: applyEvery},
	GateCNOT:             {Name: GateCNOT, Arity: 2, State: "|Φ⟩", P: Probability{0.5, 0.5}, Entangles: true, mode: applyPair},
	GateBellState:        {Name: GateBellState, Arity: 2, State: "|Φ+⟩", P: Probability{0.5, 0.5}, Entangles: true, mode: applyPair},
	GateSuperdenseCoding: {Name: GateSuperdenseCoding, Arity: 2, State: "|SC⟩", P: Probability{0.5, 0.5}, mode: applyFirst},
	GateTeleportation:    {Name: GateTeleportation, Arity: 3, State: "|T⟩", P: Probability{0.5, 0.5}, mode: applyThird},
	GateQFT:              {Name: GateQFT, Arity: 3, State: "|QFT⟩", P: Probability{0.3, 0.7}, Register: true, mode: applyEvery},
	GateGrover:           {Name: GateGrover, Arity: 3, State: "|G⟩", P: Probability{0.2, 0.8}, Register: true, mode: applyEvery},
	GateShor:             {Name: GateShor, Arity: 7, State: "|S⟩", P: Probability{0.4, 0.6}, Register: true, mode: applyEvery},
}

// LookupGate returns the gate definition for name
func LookupGate(name string) (Gate, bool) {
	g, ok := gates[name]
	return g, ok
}

// Gates returns every known gate sorted by name
func Gates() []Gate {
	out := make([]Gate, 0, len(gates))
	for _, g := range gates {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// GateNames returns every known gate name sorted
func GateNames() []string {
	names := make([]string, 0, len(gates))
	for name := range gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolveTargets fills in the default target pattern. Fixed-arity gates use
// [0..arity) when fewer than arity targets are given; register gates use the
// first min(arity, qubits) indices when none are given.
func (g Gate) resolveTargets(targets []int, qubits int) []int {
	if g.Register {
		if len(targets) > 0 {
			return append([]int(nil), targets...)
		}
		n := g.Arity
		if qubits < n {
			n = qubits
		}
		return sequence(n)
	}

	if len(targets) < g.Arity {
		return sequence(g.Arity)
	}
	return append([]int(nil), targets...)
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
