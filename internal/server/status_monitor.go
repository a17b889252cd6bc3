package server

import (
	"time"

	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/session"
	"github.com/rs/zerolog"
)

// statusKey is the part of the system status whose changes are announced
type statusKey struct {
	Overall     string
	Connection  string
	ThreatLevel string
	Busy        bool
	Scanning    bool
}

// StatusMonitor checks the session status on a schedule and emits
// SYSTEM_STATUS_CHANGED when it differs from the previous check
type StatusMonitor struct {
	controller   *session.Controller
	eventManager *events.Manager
	log          zerolog.Logger

	checked bool
	last    statusKey
}

// NewStatusMonitor creates a new status monitor
func NewStatusMonitor(controller *session.Controller, eventManager *events.Manager, log zerolog.Logger) *StatusMonitor {
	return &StatusMonitor{
		controller:   controller,
		eventManager: eventManager,
		log:          log.With().Str("component", "status_monitor").Logger(),
	}
}

// Name returns the scheduler job name
func (m *StatusMonitor) Name() string {
	return "status_monitor"
}

// Run performs one check. The first check always emits.
func (m *StatusMonitor) Run() error {
	s := m.controller.Session()
	health := s.Metrics.Health()
	current := statusKey{
		Overall:     health.Overall,
		Connection:  s.Network.ConnectionStatus(),
		ThreatLevel: s.Security.ThreatLevel(),
		Busy:        m.controller.Busy().Busy,
		Scanning:    s.Security.Scanning(),
	}

	if m.checked && current == m.last {
		return nil
	}
	m.checked = true
	m.last = current

	m.log.Debug().
		Str("connection", current.Connection).
		Str("threat_level", current.ThreatLevel).
		Bool("busy", current.Busy).
		Msg("System status changed")

	m.eventManager.Emit(events.SystemStatusChanged, "status_monitor", map[string]interface{}{
		"overall":      current.Overall,
		"connection":   current.Connection,
		"threat_level": current.ThreatLevel,
		"busy":         current.Busy,
		"scanning":     current.Scanning,
		"timestamp":    time.Now().Format(time.RFC3339),
	})
	return nil
}
