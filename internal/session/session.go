// Package session owns the live dashboard state and the command controller
// that mutates it. A Session bundles the stores; a Controller runs commands
// against them through the single work queue, with the simulated delays, the
// busy flag and event emission around each mutation.
package session

import (
	"github.com/aristath/qdash/internal/artifacts"
	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/modules/circuit"
	"github.com/aristath/qdash/internal/modules/eventlog"
	"github.com/aristath/qdash/internal/modules/metrics"
	"github.com/aristath/qdash/internal/modules/network"
	"github.com/aristath/qdash/internal/modules/security"
	"github.com/aristath/qdash/internal/modules/settings"
	"github.com/aristath/qdash/internal/work"
)

// Session is the set of stores shared by every view. It is built once by
// di.Wire and passed by reference.
type Session struct {
	Circuit   *circuit.Store
	Network   *network.Store
	Journal   *eventlog.Log
	Clock     *eventlog.Clock
	Metrics   *metrics.Source
	Registry  *metrics.Registry
	Settings  *settings.Service
	Security  *security.Service
	Events    *events.Manager
	Queue     *work.Processor
	Artifacts *artifacts.Publisher
}
