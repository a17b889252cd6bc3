package work

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	p := NewProcessor(16, zerolog.New(nil).Level(zerolog.Disabled))
	go p.Run()
	t.Cleanup(p.Stop)

	require.Eventually(t, func() bool { return p.Stats().Running }, time.Second, time.Millisecond)
	return p
}

func TestProcessor_DoReturnsTaskResult(t *testing.T) {
	p := newTestProcessor(t)

	ran := false
	err := p.Do(context.Background(), "ok", func() error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	sentinel := errors.New("boom")
	err = p.Do(context.Background(), "fail", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.Processed)
	assert.Equal(t, uint64(1), stats.Failed)
}

func TestProcessor_TasksRunSerially(t *testing.T) {
	p := newTestProcessor(t)

	var (
		mu      sync.Mutex
		active  int
		maxSeen int
		order   []int
	)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = p.Do(context.Background(), "serial", func() error {
				mu.Lock()
				active++
				if active > maxSeen {
					maxSeen = active
				}
				order = append(order, n)
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Len(t, order, 20)
}

func TestProcessor_SubmitPreservesOrder(t *testing.T) {
	p := newTestProcessor(t)

	var got []int
	for i := 0; i < 5; i++ {
		n := i
		require.True(t, p.Submit("ordered", func() error {
			got = append(got, n)
			return nil
		}))
	}

	// Do runs after every earlier submission
	require.NoError(t, p.Do(context.Background(), "barrier", func() error { return nil }))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestProcessor_PanicBecomesError(t *testing.T) {
	p := newTestProcessor(t)

	err := p.Do(context.Background(), "panics", func() error { panic("bad") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// processor keeps working
	assert.NoError(t, p.Do(context.Background(), "after", func() error { return nil }))
}

func TestProcessor_DoAfterStop(t *testing.T) {
	p := NewProcessor(4, zerolog.New(nil).Level(zerolog.Disabled))
	go p.Run()
	require.Eventually(t, func() bool { return p.Stats().Running }, time.Second, time.Millisecond)
	p.Stop()
	p.Stop()

	err := p.Do(context.Background(), "late", func() error { return nil })
	assert.ErrorIs(t, err, ErrStopped)
	assert.False(t, p.Submit("late", func() error { return nil }))
}

func TestProcessor_DoRespectsContextWhileWaiting(t *testing.T) {
	p := newTestProcessor(t)

	release := make(chan struct{})
	require.True(t, p.Submit("blocker", func() error {
		<-release
		return nil
	}))
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Do(ctx, "waiting", func() error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcessor_SubmitFullQueue(t *testing.T) {
	p := NewProcessor(1, zerolog.New(nil).Level(zerolog.Disabled))
	// not running: the single slot fills and the next submit is dropped
	assert.True(t, p.Submit("first", func() error { return nil }))
	assert.False(t, p.Submit("second", func() error { return nil }))
}
