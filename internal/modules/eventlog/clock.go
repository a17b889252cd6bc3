package eventlog

import (
	"fmt"
	"strconv"
	"sync"
	"time"
	_ "time/tzdata" // Europe/London for the human format on hosts without zoneinfo

	"github.com/aristath/qdash/internal/random"
)

// Timestamp formats accepted by Clock.Current
const (
	FormatISO     = "iso"
	FormatUnix    = "unix"
	FormatQuantum = "quantum"
	FormatHuman   = "human"
)

const humanLayout = "Monday, 2 January 2006, 15:04:05"

// NTPServers are reported by the simulated sync
var NTPServers = []string{"pool.ntp.org", "time.google.com", "time.cloudflare.com"}

// QuantumTimestamp is a millisecond timestamp with a sub-millisecond fraction
type QuantumTimestamp struct {
	Timestamp        float64 `json:"timestamp"`
	Precision        string  `json:"precision"`
	QuantumCorrected bool    `json:"quantum_corrected"`
	Entropy          string  `json:"entropy"`
}

// Time converts the millisecond value back to a time.Time
func (q QuantumTimestamp) Time() time.Time {
	ms := int64(q.Timestamp)
	return time.UnixMilli(ms).Add(time.Duration((q.Timestamp - float64(ms)) * float64(time.Millisecond)))
}

// SyncState is the outcome of the last simulated NTP sync
type SyncState struct {
	OffsetMs float64   `json:"offset_ms"`
	LastSync time.Time `json:"last_sync"`
	Servers  []string  `json:"servers"`
	Timezone string    `json:"timezone"`
}

// Clock produces the log timestamps and the display time strings
type Clock struct {
	mu       sync.RWMutex
	offsetMs float64
	lastSync time.Time

	rng     *random.Source
	now     func() time.Time
	london  *time.Location
	started time.Time
}

// NewClock creates a clock. It does not sync; call Sync for the first offset.
func NewClock(rng *random.Source) *Clock {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		london = time.UTC
	}
	c := &Clock{rng: rng, now: time.Now, london: london}
	c.started = c.now()
	return c
}

// Now returns the current time
func (c *Clock) Now() time.Time {
	return c.now()
}

// Started returns the clock creation time, used for uptime
func (c *Clock) Started() time.Time {
	return c.started
}

// Uptime returns time since the clock was created
func (c *Clock) Uptime() time.Duration {
	d := c.now().Sub(c.started)
	if d < 0 {
		return 0
	}
	return d
}

// Quantum returns a fresh quantum timestamp
func (c *Clock) Quantum() QuantumTimestamp {
	now := c.now()
	return QuantumTimestamp{
		Timestamp:        float64(now.UnixNano())/1e6 + c.rng.Between(0, 0.001),
		Precision:        "nanosecond",
		QuantumCorrected: true,
		Entropy:          c.rng.Base36(16),
	}
}

// Current returns the current time in format. Unknown formats fall back to iso.
func (c *Clock) Current(format string) interface{} {
	now := c.now()
	switch format {
	case FormatUnix:
		return strconv.FormatInt(now.Unix(), 10)
	case FormatQuantum:
		return c.Quantum()
	case FormatHuman:
		return now.In(c.london).Format(humanLayout)
	default:
		return now.UTC().Format("2006-01-02T15:04:05.000Z")
	}
}

// FormatDisplayTime returns "YYYY-MM-DD HH:MM:SS GMT"
func (c *Clock) FormatDisplayTime() string {
	return c.now().UTC().Format("2006-01-02 15:04:05") + " GMT"
}

// Sync simulates an NTP sync, drawing an offset in [-5, 5) ms
func (c *Clock) Sync() SyncState {
	c.mu.Lock()
	c.offsetMs = c.rng.Between(-5, 5)
	c.lastSync = c.now()
	c.mu.Unlock()
	return c.SyncState()
}

// SyncState returns the last sync outcome
func (c *Clock) SyncState() SyncState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return SyncState{
		OffsetMs: c.offsetMs,
		LastSync: c.lastSync,
		Servers:  append([]string(nil), NTPServers...),
		Timezone: c.london.String(),
	}
}

// FormatUptime renders d as "Xh Ym Zs"
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
