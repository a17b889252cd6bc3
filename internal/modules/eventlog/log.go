// Package eventlog keeps the bounded, persisted journal of state-changing
// events together with the session identity and the clock that stamps them.
package eventlog

import (
	"errors"
	"sync"

	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/kvstore"
	"github.com/aristath/qdash/internal/random"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	// LogsKey is the kv key holding the persisted entries, oldest first
	LogsKey = "rados_quantum_logs"
	// DefaultCapacity bounds the ring
	DefaultCapacity = 1000
)

// Entry is one journal record
type Entry struct {
	ID               string                 `json:"id"`
	Timestamp        QuantumTimestamp       `json:"timestamp"`
	Event            string                 `json:"event"`
	Data             map[string]interface{} `json:"data"`
	SessionID        string                 `json:"session_id"`
	UserAgent        string                 `json:"user_agent"`
	IPHash           string                 `json:"ip_hash"`
	QuantumSignature string                 `json:"quantum_signature"`
}

// Config holds log settings
type Config struct {
	Capacity  int
	UserAgent string
}

// Log is a circular buffer of entries persisted after every append
type Log struct {
	// persistMu orders writes to kv so a newer buffer is never overwritten
	// by an older one
	persistMu  sync.Mutex
	mu         sync.RWMutex
	entries    []Entry
	bufferSize int
	index      int
	count      int

	sessionID string
	userAgent string

	kv    kvstore.Store
	rng   *random.Source
	clock *Clock
	bus   *events.Bus
	log   zerolog.Logger
}

// New creates a log seeded with the persisted entries (the newest Capacity of them)
func New(cfg Config, kv kvstore.Store, rng *random.Source, clock *Clock, log zerolog.Logger) *Log {
	if cfg.Capacity < 1 {
		cfg.Capacity = DefaultCapacity
	}
	l := &Log{
		entries:    make([]Entry, cfg.Capacity),
		bufferSize: cfg.Capacity,
		sessionID:  "RADOS_" + rng.Base36(16),
		userAgent:  cfg.UserAgent,
		kv:         kv,
		rng:        rng,
		clock:      clock,
		log:        log.With().Str("component", "event_log").Logger(),
	}
	l.load()
	return l
}

func (l *Log) load() {
	var persisted []Entry
	if err := l.kv.Get(LogsKey, &persisted); err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			l.log.Warn().Err(err).Msg("Failed to load persisted event log, starting empty")
		}
		return
	}

	if len(persisted) > l.bufferSize {
		persisted = persisted[len(persisted)-l.bufferSize:]
	}
	for _, e := range persisted {
		l.push(e)
	}
	l.log.Debug().Int("entries", l.count).Msg("Event log restored")
}

// Attach journals every type in types from bus and announces each append on
// it as LOG_ENTRY_APPENDED. The returned ids unsubscribe.
func (l *Log) Attach(bus *events.Bus, types []events.EventType) []events.SubscriptionID {
	l.mu.Lock()
	l.bus = bus
	l.mu.Unlock()

	ids := make([]events.SubscriptionID, 0, len(types))
	for _, t := range types {
		ids = append(ids, bus.Subscribe(t, func(e *events.Event) {
			l.LogEvent(string(e.Type), e.Data)
		}))
	}
	return ids
}

// LogEvent appends a record, evicting the oldest beyond capacity, and
// persists the full buffer. A storage failure is logged, not returned.
func (l *Log) LogEvent(name string, payload map[string]interface{}) Entry {
	if payload == nil {
		payload = map[string]interface{}{}
	}

	entry := Entry{
		ID:               l.newID(),
		Timestamp:        l.clock.Quantum(),
		Event:            name,
		Data:             payload,
		SessionID:        l.sessionID,
		UserAgent:        l.userAgent,
		IPHash:           "SHA256_" + l.rng.Base36(32),
		QuantumSignature: "QS_" + l.rng.Base36(24),
	}

	l.persistMu.Lock()
	l.mu.Lock()
	l.push(entry)
	snapshot := l.orderedLocked()
	bus := l.bus
	l.mu.Unlock()

	if err := l.kv.Set(LogsKey, snapshot); err != nil {
		l.log.Warn().Err(err).Str("event", name).Msg("Failed to persist event log")
	}
	l.persistMu.Unlock()

	if bus != nil {
		bus.Emit(events.LogEntryAppended, "eventlog", map[string]interface{}{
			"id":    entry.ID,
			"event": entry.Event,
			"count": len(snapshot),
		})
	}

	return entry
}

// Entries returns every entry, oldest first
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.orderedLocked()
}

// Recent returns up to n entries, newest first
func (l *Log) Recent(n int) []Entry {
	return l.RecentByEvent(n)
}

// RecentByEvent returns up to n entries whose event is in names (all when
// names is empty), newest first
func (l *Log) RecentByEvent(n int, names ...string) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	want := make(map[string]bool, len(names))
	for _, name := range names {
		want[name] = true
	}

	result := make([]Entry, 0)
	for i := 0; i < l.count && len(result) < n; i++ {
		idx := (l.index - 1 - i + l.bufferSize) % l.bufferSize
		e := l.entries[idx]
		if len(want) > 0 && !want[e.Event] {
			continue
		}
		result = append(result, e)
	}
	return result
}

// Count returns the number of stored entries
func (l *Log) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}

// Capacity returns the ring size
func (l *Log) Capacity() int {
	return l.bufferSize
}

// SessionID returns the identifier shared by every entry of this process
func (l *Log) SessionID() string {
	return l.sessionID
}

// Clock returns the clock used to stamp entries
func (l *Log) Clock() *Clock {
	return l.clock
}

// Clear empties the buffer and persists the empty list
func (l *Log) Clear() error {
	l.persistMu.Lock()
	defer l.persistMu.Unlock()

	l.mu.Lock()
	l.entries = make([]Entry, l.bufferSize)
	l.index = 0
	l.count = 0
	l.mu.Unlock()

	if err := l.kv.Set(LogsKey, []Entry{}); err != nil {
		l.log.Warn().Err(err).Msg("Failed to persist cleared event log")
		return err
	}
	return nil
}

func (l *Log) push(e Entry) {
	l.entries[l.index] = e
	l.index = (l.index + 1) % l.bufferSize
	if l.count < l.bufferSize {
		l.count++
	}
}

func (l *Log) orderedLocked() []Entry {
	out := make([]Entry, 0, l.count)
	for i := 0; i < l.count; i++ {
		idx := (l.index - l.count + i + l.bufferSize) % l.bufferSize
		out = append(out, l.entries[idx])
	}
	return out
}

func (l *Log) newID() string {
	id, err := uuid.NewRandomFromReader(l.rng)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
