package analytics

import (
	"time"

	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/metrics"
	"github.com/rs/zerolog"
)

// Service builds analytics reports from the circuit store and the metrics history
type Service struct {
	circuit *circuit.Store
	metrics *metrics.Source
	period  int
	log     zerolog.Logger
}

// NewService creates a new analytics service
func NewService(circuitStore *circuit.Store, source *metrics.Source, log zerolog.Logger) *Service {
	return &Service{
		circuit: circuitStore,
		metrics: source,
		period:  DefaultTrendPeriod,
		log:     log.With().Str("service", "analytics").Logger(),
	}
}

// Operations returns the operation mix of the current circuit
func (s *Service) Operations() []OperationCount {
	return CountOperations(s.circuit.Operations())
}

// Report assembles the full analytics payload
func (s *Service) Report() Report {
	snap := s.circuit.Snapshot()
	history := s.metrics.History()

	coherence := make([]float64, len(history))
	throughput := make([]float64, len(history))
	health := make([]float64, len(history))
	cpu := make([]float64, len(history))
	memory := make([]float64, len(history))
	points := make([]PerformancePoint, len(history))
	for i, h := range history {
		coherence[i] = h.QuantumCoherence
		throughput[i] = h.OperationsPerSecond
		health[i] = h.NetworkHealth
		cpu[i] = h.CPUUsage
		memory[i] = h.MemoryUsage
		points[i] = PerformancePoint{
			Time:          h.Timestamp,
			Coherence:     h.QuantumCoherence,
			Operations:    h.OperationsPerSecond,
			NetworkHealth: h.NetworkHealth,
		}
	}

	s.log.Debug().Int("samples", len(history)).Int("operations", len(snap.Operations)).Msg("Building analytics report")

	return Report{
		TotalOperations: len(snap.Operations),
		CircuitDepth:    snap.Depth,
		QubitCount:      snap.QubitCount,
		Operations:      CountOperations(snap.Operations),
		Distribution:    s.circuit.StateDistribution(),
		Coherence:       Describe(coherence, s.period),
		Throughput:      Describe(throughput, s.period),
		NetworkHealth:   Describe(health, s.period),
		CPU:             Describe(cpu, s.period),
		Memory:          Describe(memory, s.period),
		Performance:     points,
		GeneratedAt:     time.Now(),
	}
}
