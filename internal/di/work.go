package di

import (
	"github.com/aristath/qdash/internal/scheduler"
	"github.com/aristath/qdash/internal/work"
	"github.com/rs/zerolog"
)

// processorBuffer bounds the number of queued mutations
const processorBuffer = 256

// InitializeWork creates the work processor and the scheduler. Neither is
// started here; see Container.Start.
func InitializeWork(container *Container, log zerolog.Logger) {
	container.Processor = work.NewProcessor(processorBuffer, log)
	container.Scheduler = scheduler.New(log)
}

// Start launches the work processor loop and the scheduler, then joins the
// network once when ConnectOnStart is set
func (c *Container) Start() {
	go c.Processor.Run()
	c.Scheduler.Start()

	if c.ConnectOnStart {
		c.Controller.StartConnectNetwork()
	}
}
