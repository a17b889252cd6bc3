package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aristath/qdash/internal/random"
	"github.com/rs/zerolog"
)

// Store owns the active nodes and the network metrics
type Store struct {
	mu        sync.RWMutex
	nodes     []Node
	protocols map[string]string
	metrics   Metrics
	result    *ConnectResult

	scanDelay time.Duration
	rng       *random.Source
	clock     func() time.Time
	log       zerolog.Logger
}

// NewStore creates a disconnected store. scanDelay is the simulated
// datacenter scan time on connect.
func NewStore(scanDelay time.Duration, rng *random.Source, log zerolog.Logger) *Store {
	return &Store{
		protocols: make(map[string]string),
		metrics: Metrics{
			NetworkHealth:  100,
			SecurityEvents: []string{},
		},
		scanDelay: scanDelay,
		rng:       rng,
		clock:     time.Now,
		log:       log.With().Str("component", "network_store").Logger(),
	}
}

// Connect scans the catalog and establishes tunnels. Calling it again returns
// the existing session result without adding nodes.
func (s *Store) Connect(ctx context.Context) (ConnectResult, error) {
	if result, ok := s.Result(); ok {
		return result, nil
	}

	nodes, err := s.Scan(ctx)
	if err != nil {
		return ConnectResult{}, err
	}
	return s.Establish(nodes), nil
}

// Scan waits the simulated scan delay and returns a copy of the catalog. It
// does not touch the store; cancelling ctx aborts the wait.
func (s *Store) Scan(ctx context.Context) ([]Node, error) {
	s.log.Info().Dur("delay", s.scanDelay).Msg("Scanning quantum datacenters")

	if s.scanDelay > 0 {
		timer := time.NewTimer(s.scanDelay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to scan datacenters: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return append([]Node(nil), Catalog...), nil
}

// Establish assigns each scanned node a tunnel, activates the protocol table
// and records the session result. It is a no-op once connected.
func (s *Store) Establish(scanned []Node) ConnectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result != nil {
		return *s.result
	}

	now := s.clock()
	s.nodes = make([]Node, 0, len(scanned))
	for _, n := range scanned {
		n.Tunnel = "QUANTUM_TUNNEL_" + s.rng.Base36(9)
		n.Encryption = Encryption
		n.Established = now
		s.nodes = append(s.nodes, n)
	}

	for _, p := range Protocols {
		s.protocols[p] = protocolActive
	}

	s.result = &ConnectResult{
		Status:    ConnectionConnected,
		Nodes:     len(s.nodes),
		Security:  SecurityLevel,
		Timestamp: now,
	}

	s.log.Info().Int("nodes", len(s.nodes)).Msg("Quantum network connected")
	return *s.result
}

// RefreshMetrics draws new link readings. With probability
// IntrusionProbability the refresh carries a security event.
func (s *Store) RefreshMetrics() Metrics {
	m := Metrics{
		Latency:        s.rng.Between(0, 100),
		Bandwidth:      s.rng.Between(1000, 10000),
		NetworkHealth:  s.rng.Between(85, 100),
		CoherenceTime:  s.rng.Between(100, 250),
		Fidelity:       s.rng.Between(0.95, 0.99),
		SecurityEvents: []string{},
		UpdatedAt:      s.clock(),
	}
	if s.rng.Chance(IntrusionProbability) {
		m.SecurityEvents = append(m.SecurityEvents, IntrusionEvent)
	}

	s.mu.Lock()
	s.metrics = m
	s.mu.Unlock()

	return copyMetrics(m)
}

// Metrics returns a copy of the latest readings
func (s *Store) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyMetrics(s.metrics)
}

// ActiveNodes returns a copy of the established nodes
func (s *Store) ActiveNodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodesLocked()
}

// Protocols returns a copy of the protocol table
func (s *Store) Protocols() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocolsLocked()
}

// ConnectionStatus reports CONNECTED once any node is active
func (s *Store) ConnectionStatus() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectionLocked()
}

// SecurityLevel returns the fixed link security label
func (s *Store) SecurityLevel() string {
	return SecurityLevel
}

// Result returns the connect result of this session, if any
func (s *Store) Result() (ConnectResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.result == nil {
		return ConnectResult{}, false
	}
	return *s.result, true
}

// Status returns the network page summary, read as one snapshot
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		Connection:    s.connectionLocked(),
		SecurityLevel: SecurityLevel,
		Nodes:         s.nodesLocked(),
		Protocols:     s.protocolsLocked(),
		Metrics:       copyMetrics(s.metrics),
	}
}

func (s *Store) nodesLocked() []Node {
	return append([]Node{}, s.nodes...)
}

func (s *Store) protocolsLocked() map[string]string {
	out := make(map[string]string, len(s.protocols))
	for k, v := range s.protocols {
		out[k] = v
	}
	return out
}

func (s *Store) connectionLocked() string {
	if len(s.nodes) > 0 {
		return ConnectionConnected
	}
	return ConnectionDisconnected
}

func copyMetrics(m Metrics) Metrics {
	m.SecurityEvents = append([]string{}, m.SecurityEvents...)
	return m
}
