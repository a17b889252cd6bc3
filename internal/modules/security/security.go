// Package security derives the security page from the network store and the
// event log, and tracks the simulated scan.
package security

import (
	"errors"
	"sync"
	"time"

	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/rs/zerolog"
)

// Threat levels
const (
	ThreatMinimal  = "MINIMAL"
	ThreatElevated = "ELEVATED"
)

const (
	// ScanStatusSecure is the only scan outcome the simulation produces
	ScanStatusSecure = "SECURE"
	// RecentEventLimit bounds the events shown on the page
	RecentEventLimit = 10
	// ThreatWindow is how long an intrusion keeps the threat level elevated
	ThreatWindow = 5 * time.Minute
)

// ErrScanInProgress is returned when a scan is started while one is running
var ErrScanInProgress = errors.New("security scan already in progress")

var securityEventNames = []string{
	string(events.QuantumIntrusionDetected),
	string(events.SecurityScanCompleted),
}

// ScanResult is the outcome of a completed scan
type ScanResult struct {
	ThreatsDetected int       `json:"threats_detected"`
	Vulnerabilities int       `json:"vulnerabilities"`
	Status          string    `json:"status"`
	CompletedAt     time.Time `json:"completed_at"`
}

// Status is the security page payload
type Status struct {
	SecurityLevel string           `json:"security_level"`
	Encryption    string           `json:"encryption"`
	ThreatLevel   string           `json:"threat_level"`
	Scanning      bool             `json:"scanning"`
	LastScan      *time.Time       `json:"last_scan,omitempty"`
	ActiveNodes   int              `json:"active_nodes"`
	Events        []eventlog.Entry `json:"events"`
}

// Service tracks scans and summarises security state
type Service struct {
	mu       sync.RWMutex
	scanning bool
	lastScan time.Time

	network *network.Store
	journal *eventlog.Log
	clock   func() time.Time
	log     zerolog.Logger
}

// NewService creates a new security service
func NewService(networkStore *network.Store, journal *eventlog.Log, log zerolog.Logger) *Service {
	return &Service{
		network: networkStore,
		journal: journal,
		clock:   time.Now,
		log:     log.With().Str("service", "security").Logger(),
	}
}

// BeginScan marks a scan as running
func (s *Service) BeginScan() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scanning {
		return ErrScanInProgress
	}
	s.scanning = true
	return nil
}

// AbortScan clears the running flag without recording a result
func (s *Service) AbortScan() {
	s.mu.Lock()
	s.scanning = false
	s.mu.Unlock()
}

// CompleteScan records the scan time and returns the (always clean) result
func (s *Service) CompleteScan() ScanResult {
	now := s.clock()

	s.mu.Lock()
	s.scanning = false
	s.lastScan = now
	s.mu.Unlock()

	s.log.Info().Msg("Security scan completed, no threats detected")
	return ScanResult{
		ThreatsDetected: 0,
		Vulnerabilities: 0,
		Status:          ScanStatusSecure,
		CompletedAt:     now,
	}
}

// Scanning reports whether a scan is running
func (s *Service) Scanning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanning
}

// RecentEvents returns the last RecentEventLimit security entries, newest first
func (s *Service) RecentEvents() []eventlog.Entry {
	return s.journal.RecentByEvent(RecentEventLimit, securityEventNames...)
}

// ThreatLevel is ELEVATED while the latest link readings carry a security
// event or an intrusion was journaled within ThreatWindow, MINIMAL otherwise
func (s *Service) ThreatLevel() string {
	if len(s.network.Metrics().SecurityEvents) > 0 {
		return ThreatElevated
	}

	cutoff := s.clock().Add(-ThreatWindow)
	for _, e := range s.journal.RecentByEvent(1, string(events.QuantumIntrusionDetected)) {
		if e.Timestamp.Time().After(cutoff) {
			return ThreatElevated
		}
	}
	return ThreatMinimal
}

// Status assembles the security page
func (s *Service) Status() Status {
	s.mu.RLock()
	scanning := s.scanning
	var last *time.Time
	if !s.lastScan.IsZero() {
		t := s.lastScan
		last = &t
	}
	s.mu.RUnlock()

	return Status{
		SecurityLevel: s.network.SecurityLevel(),
		Encryption:    network.SecurityLevel,
		ThreatLevel:   s.ThreatLevel(),
		Scanning:      scanning,
		LastScan:      last,
		ActiveNodes:   len(s.network.ActiveNodes()),
		Events:        s.RecentEvents(),
	}
}
