package metrics

import (
	"sync"
	"time"

	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/random"
	"github.com/rs/zerolog"
)

// DefaultHistorySize is the number of snapshots kept for analytics
const DefaultHistorySize = 120

// Source produces metrics snapshots and keeps a ring of recent ones.
//
// CPU and memory are random unless a HostReader is set, in which case real
// host readings replace them. A failing host read falls back to random values
// for that sample.
type Source struct {
	mu      sync.RWMutex
	history []Snapshot
	size    int
	index   int
	count   int
	uptime  int64

	rng     *random.Source
	host    HostReader
	started time.Time
	clock   func() time.Time
	log     zerolog.Logger
}

// NewSource creates a source. host may be nil.
func NewSource(historySize int, rng *random.Source, host HostReader, log zerolog.Logger) *Source {
	if historySize < 1 {
		historySize = DefaultHistorySize
	}
	s := &Source{
		history: make([]Snapshot, historySize),
		size:    historySize,
		rng:     rng,
		host:    host,
		clock:   time.Now,
		log:     log.With().Str("component", "metrics_source").Logger(),
	}
	s.started = s.clock()
	return s
}

// Sample draws a new snapshot and records it in the history
func (s *Source) Sample() Snapshot {
	now := s.clock()

	snap := Snapshot{
		NetworkHealth:       s.rng.Between(85, 100),
		QuantumCoherence:    s.rng.Between(95, 100),
		OperationsPerSecond: s.rng.Between(1000, 6000),
		CPUUsage:            s.rng.Between(0, 100),
		MemoryUsage:         s.rng.Between(0, 100),
		Timestamp:           now,
	}

	if s.host != nil {
		cpuPct, memPct, err := s.host.Read()
		if err != nil {
			s.log.Warn().Err(err).Msg("Host stats unavailable, using simulated values")
		} else {
			snap.CPUUsage = clampPercent(cpuPct)
			snap.MemoryUsage = clampPercent(memPct)
			snap.HostBacked = true
		}
	}

	s.mu.Lock()
	uptime := now.Sub(s.started).Milliseconds()
	if uptime < s.uptime {
		uptime = s.uptime
	}
	s.uptime = uptime
	snap.Uptime = uptime
	snap.UptimeHuman = eventlog.FormatUptime(time.Duration(uptime) * time.Millisecond)

	s.history[s.index] = snap
	s.index = (s.index + 1) % s.size
	if s.count < s.size {
		s.count++
	}
	s.mu.Unlock()

	return snap
}

// Latest returns the newest snapshot, sampling one if none exists yet
func (s *Source) Latest() Snapshot {
	s.mu.RLock()
	if s.count > 0 {
		snap := s.history[(s.index-1+s.size)%s.size]
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()
	return s.Sample()
}

// History returns the recorded snapshots, oldest first
func (s *Source) History() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Snapshot, 0, s.count)
	for i := 0; i < s.count; i++ {
		out = append(out, s.history[(s.index-s.count+i+s.size)%s.size])
	}
	return out
}

// Started returns when the source began counting uptime
func (s *Source) Started() time.Time {
	return s.started
}

// Health returns the fixed health map
func (s *Source) Health() Health {
	return SystemHealth
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
