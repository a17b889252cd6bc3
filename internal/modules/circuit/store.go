package circuit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aristath/qdash/internal/kvstore"
	"github.com/aristath/qdash/internal/random"
	"github.com/rs/zerolog"
)

var distributionLabels = []string{"|00000⟩", "|10110⟩", "|11001⟩", "|01101⟩"}

// Config holds store limits
type Config struct {
	MaxQubits     int
	InitialQubits int
}

// Store owns the qubit array and the operation list. Mutations are expected to
// arrive through the work queue; the mutex keeps readers on other goroutines
// consistent.
type Store struct {
	mu         sync.RWMutex
	qubits     []Qubit
	operations []Operation
	nextDepth  int
	maxQubits  int

	kv    kvstore.Store
	rng   *random.Source
	clock func() time.Time
	log   zerolog.Logger
}

// NewStore creates a store with cfg.InitialQubits ground-state qubits
func NewStore(cfg Config, kv kvstore.Store, rng *random.Source, log zerolog.Logger) *Store {
	if cfg.MaxQubits < 1 {
		cfg.MaxQubits = 1
	}
	s := &Store{
		maxQubits: cfg.MaxQubits,
		kv:        kv,
		rng:       rng,
		clock:     time.Now,
		log:       log.With().Str("component", "circuit_store").Logger(),
	}
	s.resetQubits(s.clamp(cfg.InitialQubits))
	return s
}

// MaxQubits returns the configured upper bound
func (s *Store) MaxQubits() int {
	return s.maxQubits
}

// SetQubitCount clamps n into [1, MaxQubits] and rebuilds the array in the
// ground state with entanglement cleared. Operations are kept. It returns the
// resulting count.
func (s *Store) SetQubitCount(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := s.clamp(n)
	if count != n {
		s.log.Debug().Int("requested", n).Int("count", count).Msg("Qubit count clamped")
	}
	s.resetQubits(count)
	return count
}

// ApplyOperation applies the named gate. Unknown names return ErrUnknownGate
// and leave the store untouched.
func (s *Store) ApplyOperation(name string, targets []int) (Operation, error) {
	gate, ok := LookupGate(name)
	if !ok {
		s.log.Warn().Str("operation", name).Msg("Unknown operation ignored")
		return Operation{}, fmt.Errorf("%w: %s", ErrUnknownGate, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(gate, targets, s.clock()), nil
}

func (s *Store) applyLocked(gate Gate, requested []int, at time.Time) Operation {
	n := len(s.qubits)
	targets := gate.resolveTargets(requested, n)

	switch gate.mode {
	case applyEvery:
		for _, t := range targets {
			s.setState(t, gate)
		}
	case applyPair:
		a, b := targets[0], targets[1]
		if s.inRange(a) && s.inRange(b) {
			s.setState(a, gate)
			s.setState(b, gate)
			if gate.Entangles && a != b {
				s.entangle(a, b)
			}
		}
	case applyFirst:
		s.setState(targets[0], gate)
	case applyThird:
		s.setState(targets[2], gate)
	}

	recorded := make([]int, 0, len(targets))
	for _, t := range targets {
		if s.inRange(t) {
			recorded = append(recorded, t)
		}
	}

	op := Operation{
		Name:      gate.Name,
		Targets:   recorded,
		Depth:     s.nextDepth,
		Timestamp: at,
	}
	s.nextDepth++
	s.operations = append(s.operations, op)

	return op.clone()
}

// Reset clears operations and the depth counter and rebuilds qubits at the
// current length.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.operations = nil
	s.nextDepth = 0
	s.resetQubits(len(s.qubits))
}

// Qubits returns a copy of the qubit array
func (s *Store) Qubits() []Qubit {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Qubit, len(s.qubits))
	for i, q := range s.qubits {
		out[i] = q.clone()
	}
	return out
}

// Operations returns a copy of the applied operations
func (s *Store) Operations() []Operation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneOperations(s.operations)
}

// QubitCount returns the current array length
func (s *Store) QubitCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.qubits)
}

// Depth returns the next sequence number, equal to the operations applied since reset
func (s *Store) Depth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextDepth
}

// Snapshot returns a consistent copy of the whole store
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qubits := make([]Qubit, len(s.qubits))
	entangled := 0
	for i, q := range s.qubits {
		qubits[i] = q.clone()
		if q.Entangled {
			entangled++
		}
	}

	return Snapshot{
		Qubits:     qubits,
		Operations: cloneOperations(s.operations),
		QubitCount: len(s.qubits),
		Depth:      s.nextDepth,
		MaxQubits:  s.maxQubits,
		Entangled:  entangled,
	}
}

// SaveCircuit persists the qubit count and operations under CircuitKey. A
// storage failure is logged and returned alongside the record, which is
// still valid.
func (s *Store) SaveCircuit() (SavedCircuit, error) {
	s.mu.RLock()
	record := SavedCircuit{
		Qubits:     len(s.qubits),
		Operations: cloneOperations(s.operations),
		Timestamp:  s.clock(),
		Version:    FormatVersion,
	}
	s.mu.RUnlock()

	if err := s.kv.Set(CircuitKey, record); err != nil {
		s.log.Warn().Err(err).Msg("Failed to persist circuit")
		return record, fmt.Errorf("failed to save circuit: %w", err)
	}

	s.log.Info().
		Int("qubits", record.Qubits).
		Int("operations", len(record.Operations)).
		Msg("Circuit saved")
	return record, nil
}

// LoadCircuit reads the saved record without applying it
func (s *Store) LoadCircuit() (SavedCircuit, error) {
	var record SavedCircuit
	if err := s.kv.Get(CircuitKey, &record); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return SavedCircuit{}, ErrNoSavedCircuit
		}
		return SavedCircuit{}, fmt.Errorf("failed to load circuit: %w", err)
	}
	if record.Operations == nil {
		record.Operations = []Operation{}
	}
	return record, nil
}

// RestoreCircuit rebuilds the array at the saved size and replays the saved
// operations in depth order. Operations naming unknown gates are skipped.
func (s *Store) RestoreCircuit(record SavedCircuit) Snapshot {
	ops := cloneOperations(record.Operations)
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Depth < ops[j].Depth })

	s.mu.Lock()
	s.operations = nil
	s.nextDepth = 0
	s.resetQubits(s.clamp(record.Qubits))

	skipped := 0
	for _, op := range ops {
		gate, ok := LookupGate(op.Name)
		if !ok {
			skipped++
			continue
		}
		at := op.Timestamp
		if at.IsZero() {
			at = s.clock()
		}
		s.applyLocked(gate, op.Targets, at)
	}
	s.mu.Unlock()

	if skipped > 0 {
		s.log.Warn().Int("skipped", skipped).Msg("Unknown operations skipped during restore")
	}
	return s.Snapshot()
}

// ExportCircuit builds the export artifact. It returns the record, the
// download filename and its pretty-printed JSON.
func (s *Store) ExportCircuit() (Export, string, []byte, error) {
	s.mu.RLock()
	export := Export{
		Qubits:     len(s.qubits),
		Operations: cloneOperations(s.operations),
		Timestamp:  s.clock(),
	}
	s.mu.RUnlock()

	body, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return Export{}, "", nil, fmt.Errorf("failed to serialize circuit export: %w", err)
	}

	filename := fmt.Sprintf("quantum-circuit-%d.json", export.Timestamp.UnixMilli())
	return export, filename, body, nil
}

// StateDistribution returns the four display basis states with a random
// probability in [10, 50).
func (s *Store) StateDistribution() []StateProbability {
	out := make([]StateProbability, len(distributionLabels))
	for i, label := range distributionLabels {
		out[i] = StateProbability{Label: label, Probability: s.rng.Between(10, 50)}
	}
	return out
}

func (s *Store) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > s.maxQubits {
		return s.maxQubits
	}
	return n
}

func (s *Store) resetQubits(n int) {
	s.qubits = make([]Qubit, n)
	for i := range s.qubits {
		s.qubits[i] = groundQubit(i)
	}
}

func (s *Store) inRange(i int) bool {
	return i >= 0 && i < len(s.qubits)
}

func (s *Store) setState(i int, gate Gate) {
	if !s.inRange(i) {
		return
	}
	s.qubits[i].State = gate.State
	s.qubits[i].Probability = gate.P
}

func (s *Store) entangle(a, b int) {
	s.qubits[a].Entangled = true
	s.qubits[b].Entangled = true
	s.qubits[a].EntangledWith = addPartner(s.qubits[a].EntangledWith, b)
	s.qubits[b].EntangledWith = addPartner(s.qubits[b].EntangledWith, a)
}

// addPartner inserts p keeping the list sorted and free of duplicates
func addPartner(partners []int, p int) []int {
	i := sort.SearchInts(partners, p)
	if i < len(partners) && partners[i] == p {
		return partners
	}
	partners = append(partners, 0)
	copy(partners[i+1:], partners[i:])
	partners[i] = p
	return partners
}
