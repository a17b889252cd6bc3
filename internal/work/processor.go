package work

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrStopped is returned for tasks submitted after Stop or dropped by it
var ErrStopped = errors.New("work processor stopped")

// Task is a unit of work. Tasks must not call Do on the same processor.
type Task func() error

type item struct {
	name     string
	task     Task
	result   chan error
	enqueued time.Time
}

// Processor executes tasks serially in submission order
type Processor struct {
	queue   chan *item
	stop    chan struct{}
	stopped chan struct{}
	once    sync.Once
	log     zerolog.Logger

	mu        sync.Mutex
	running   bool
	processed uint64
	failed    uint64
}

// Stats is a snapshot of processor counters
type Stats struct {
	Running   bool   `json:"running"`
	Pending   int    `json:"pending"`
	Processed uint64 `json:"processed"`
	Failed    uint64 `json:"failed"`
}

// NewProcessor creates a processor with room for buffer pending tasks
func NewProcessor(buffer int, log zerolog.Logger) *Processor {
	if buffer < 1 {
		buffer = 1
	}
	return &Processor{
		queue:   make(chan *item, buffer),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
		log:     log.With().Str("component", "work_processor").Logger(),
	}
}

// Run starts the processor loop. This blocks until Stop() is called.
func (p *Processor) Run() {
	p.mu.Lock()
	p.running = true
	p.mu.Unlock()

	defer close(p.stopped)
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	for {
		select {
		case <-p.stop:
			p.drain()
			return
		case it := <-p.queue:
			p.execute(it)
		}
	}
}

// Stop stops the processor and fails any task still queued. Safe to call twice.
func (p *Processor) Stop() {
	p.once.Do(func() { close(p.stop) })

	p.mu.Lock()
	running := p.running
	p.mu.Unlock()
	if running {
		<-p.stopped
	}
}

// Do queues task and waits for its result. ctx bounds the wait, not the task:
// once started a task always runs to completion.
func (p *Processor) Do(ctx context.Context, name string, task Task) error {
	it := &item{name: name, task: task, result: make(chan error, 1), enqueued: time.Now()}

	select {
	case <-p.stop:
		return ErrStopped
	default:
	}

	select {
	case p.queue <- it:
	case <-p.stop:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-it.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit queues task without waiting. It reports false when the processor is
// stopped or the queue is full, in which case the task is dropped.
func (p *Processor) Submit(name string, task Task) bool {
	select {
	case <-p.stop:
		return false
	default:
	}

	it := &item{name: name, task: task, result: make(chan error, 1), enqueued: time.Now()}
	select {
	case p.queue <- it:
		return true
	default:
		p.log.Warn().Str("task", name).Msg("Work queue full, dropping task")
		return false
	}
}

// Stats returns processor counters
func (p *Processor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Running:   p.running,
		Pending:   len(p.queue),
		Processed: p.processed,
		Failed:    p.failed,
	}
}

func (p *Processor) execute(it *item) {
	start := time.Now()
	err := p.safeRun(it)

	p.mu.Lock()
	p.processed++
	if err != nil {
		p.failed++
	}
	p.mu.Unlock()

	if err != nil {
		p.log.Debug().Err(err).Str("task", it.name).Msg("Task returned error")
	}
	p.log.Trace().
		Str("task", it.name).
		Dur("queued", start.Sub(it.enqueued)).
		Dur("took", time.Since(start)).
		Msg("Task done")

	it.result <- err
}

func (p *Processor) safeRun(it *item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Str("task", it.name).Msg("Task panicked")
			err = fmt.Errorf("task %s panicked: %v", it.name, r)
		}
	}()
	return it.task()
}

func (p *Processor) drain() {
	for {
		select {
		case it := <-p.queue:
			it.result <- ErrStopped
		default:
			return
		}
	}
}
