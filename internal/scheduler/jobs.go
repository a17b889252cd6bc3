package scheduler

import (
	"fmt"

	"github.com/aristath/qdash/internal/work"
)

// Poster queues a task on the single mutation queue
type Poster interface {
	Submit(name string, task work.Task) bool
}

// QueuedJob posts its work onto the task queue instead of mutating state from
// the cron goroutine. A full queue skips the tick.
type QueuedJob struct {
	name  string
	queue Poster
	fn    work.Task
}

// NewQueuedJob builds a job that runs fn on queue
func NewQueuedJob(name string, queue Poster, fn work.Task) *QueuedJob {
	return &QueuedJob{name: name, queue: queue, fn: fn}
}

// Name returns the job name
func (j *QueuedJob) Name() string {
	return j.name
}

// Run posts the work; it does not wait for it
func (j *QueuedJob) Run() error {
	if !j.queue.Submit(j.name, j.fn) {
		return fmt.Errorf("job %s skipped: work queue unavailable", j.name)
	}
	return nil
}
