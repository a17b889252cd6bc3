/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every long-lived component of a dashboard session. It is
 * built by Wire() and handed to the HTTP server and the command line entry
 * point, which never construct components themselves.
 */
package di

import (
	"github.com/aristath/qdash/internal/database"
	"github.com/aristath/qdash/internal/events"
	"github.com/aristath/qdash/internal/kvstore"
	"github.com/aristath/qdash/internal/modules/analytics"
	"github.com/aristath/qdash/internal/modules/metrics"
	"github.com/aristath/qdash/internal/random"
	"github.com/aristath/qdash/internal/scheduler"
	"github.com/aristath/qdash/internal/session"
	"github.com/aristath/qdash/internal/work"
)

/**
 * Container holds all dependencies for the application.
 *
 * Architecture:
 * - Database: state.db with a single kv table (saved circuit, event log, settings)
 * - Randomness: one seedable source shared by every simulated value
 * - Events: synchronous bus plus the manager that stamps module names
 * - Work: one processor that serialises every store mutation
 * - Scheduler: cron jobs (metrics, network refresh, clock sync, status)
 * - Session: the stores, the event log and the services built on them
 */
type Container struct {
	// Database
	StateDB *database.DB
	KV      *kvstore.Repository

	RNG *random.Source

	// Events
	EventBus     *events.Bus
	EventManager *events.Manager

	// Work and scheduling
	Processor *work.Processor
	Scheduler *scheduler.Scheduler

	// Session
	Session    *session.Session
	Controller *session.Controller
	Analytics  *analytics.Service
	Registry   *metrics.Registry
	HostReader metrics.HostReader

	// ConnectOnStart makes Start join the network in the background
	ConnectOnStart bool
}

// Close stops background work and closes the database. Safe on a partially
// wired container.
func (c *Container) Close() error {
	if c.Controller != nil {
		c.Controller.Stop()
	}
	if c.Scheduler != nil {
		c.Scheduler.Stop()
	}
	if c.Processor != nil {
		c.Processor.Stop()
	}
	if c.StateDB != nil {
		return c.StateDB.Close()
	}
	return nil
}
