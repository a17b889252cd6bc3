package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aristath/qdash/internal/work"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	calls atomic.Int32
	err   error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run() error {
	j.calls.Add(1)
	return j.err
}

func newTestScheduler() *Scheduler {
	return New(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestEverySchedule(t *testing.T) {
	assert.Equal(t, "@every 1s", EverySchedule(time.Second))
	assert.Equal(t, "@every 5s", EverySchedule(5*time.Second))
	assert.Equal(t, "@every 1h0m0s", EverySchedule(time.Hour))
	assert.Equal(t, "@every 1s", EverySchedule(200*time.Millisecond))
	assert.Equal(t, "@every 2s", EverySchedule(2500*time.Millisecond))
}

func TestAddJob_RejectsDuplicatesAndBadSpecs(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddInterval(time.Second, &countingJob{name: "metrics"}))
	assert.Error(t, s.AddInterval(time.Second, &countingJob{name: "metrics"}))
	assert.Error(t, s.AddJob("not a schedule", &countingJob{name: "bad"}))

	jobs := s.Jobs()
	assert.Len(t, jobs, 1)
	assert.Contains(t, jobs, "metrics")
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddInterval(time.Second, &countingJob{name: "network"}))

	s.RemoveJob("network")
	s.RemoveJob("unknown")
	assert.Empty(t, s.Jobs())
}

func TestStartRunsJobsAndStopHalts(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "tick"}
	require.NoError(t, s.AddInterval(time.Second, job))

	s.Start()
	s.Start()
	require.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	s.Stop()
	s.Stop()

	after := job.calls.Load()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, after, job.calls.Load())
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()
	failing := &countingJob{name: "failing", err: errors.New("boom")}

	assert.Error(t, s.RunNow(failing))
	assert.Equal(t, int32(1), failing.calls.Load())
}

func TestQueuedJob_PostsToProcessor(t *testing.T) {
	p := work.NewProcessor(4, zerolog.New(nil).Level(zerolog.Disabled))
	go p.Run()
	defer p.Stop()

	var ran atomic.Bool
	job := NewQueuedJob("refresh", p, func() error {
		ran.Store(true)
		return nil
	})

	assert.Equal(t, "refresh", job.Name())
	require.NoError(t, job.Run())
	assert.Eventually(t, ran.Load, time.Second, time.Millisecond)
}

func TestQueuedJob_StoppedProcessor(t *testing.T) {
	p := work.NewProcessor(4, zerolog.New(nil).Level(zerolog.Disabled))
	p.Stop()

	job := NewQueuedJob("refresh", p, func() error { return nil })
	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skipped")
}
