package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoscope/demoscope/internal/worker"
)

type countingTask struct {
	name string
	mu   *sync.Mutex
	runs *int
	done chan struct{}
	err  error
}

func (t *countingTask) Name() string { return t.name }

func (t *countingTask) Run(ctx context.Context) error {
	t.mu.Lock()
	*t.runs++
	t.mu.Unlock()
	if t.done != nil {
		close(t.done)
	}
	return t.err
}

func TestPoolRunsSubmittedTasks(t *testing.T) {
	pool := worker.NewPool("test-pool", 2, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	var mu sync.Mutex
	runs := 0
	done := make(chan struct{})

	err := pool.Submit(context.Background(), &countingTask{name: "one", mu: &mu, runs: &runs, done: done})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, runs)
}

func TestPoolSubmitAfterStop(t *testing.T) {
	pool := worker.NewPool("test-pool", 1, 1)
	pool.Start(context.Background())
	pool.Stop()

	var mu sync.Mutex
	runs := 0
	err := pool.Submit(context.Background(), &countingTask{name: "late", mu: &mu, runs: &runs})
	assert.ErrorIs(t, err, worker.ErrPoolClosed)
}

func TestPoolSubmitHonorsContext(t *testing.T) {
	// One worker stuck on a slow task and a full queue: the next Submit
	// blocks until its context ends.
	pool := worker.NewPool("test-pool", 1, 1)
	pool.Start(context.Background())
	defer pool.Stop()

	block := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), &blockingTask{block: block}))
	require.NoError(t, pool.Submit(context.Background(), &blockingTask{block: block}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := pool.Submit(ctx, &blockingTask{block: block})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	close(block)
}

type blockingTask struct {
	block chan struct{}
}

func (t *blockingTask) Name() string { return "blocking" }

func (t *blockingTask) Run(ctx context.Context) error {
	select {
	case <-t.block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestPoolTaskErrorsDoNotStopWorkers(t *testing.T) {
	pool := worker.NewPool("test-pool", 1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	var mu sync.Mutex
	runs := 0
	first := make(chan struct{})
	second := make(chan struct{})

	require.NoError(t, pool.Submit(context.Background(),
		&countingTask{name: "fails", mu: &mu, runs: &runs, done: first, err: errors.New("boom")}))
	require.NoError(t, pool.Submit(context.Background(),
		&countingTask{name: "succeeds", mu: &mu, runs: &runs, done: second}))

	for _, ch := range []chan struct{}{first, second} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("task never ran")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, runs)
}
