package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/demoscope/demoscope/internal/logger"
)

// Task is one unit of background work. Run receives a context carrying a
// task-scoped logger.
type Task interface {
	Run(context.Context) error
	Name() string
}

// ErrPoolClosed is returned by Submit after Stop.
var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs tasks on a fixed number of goroutines over a bounded channel.
// Submit blocks when the channel is full, which backpressures the queue
// dispatcher instead of growing memory.
type Pool struct {
	tasks   chan Task
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc

	mu     sync.Mutex
	closed bool

	log *logger.Logger
}

func NewPool(name string, workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	log := logger.Default().WithPrefix(name)
	log.Debug("creating worker pool with %d workers and queue size %d", workers, queueSize)
	return &Pool{
		tasks:   make(chan Task, queueSize),
		workers: workers,
		log:     log,
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting worker pool with %d workers", p.workers)

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i+1)
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	workerLog := p.log.WithField("worker_id", id)
	workerLog.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			workerLog.Debug("worker shutting down (context cancelled)")
			return
		case task := <-p.tasks:
			taskLog := workerLog.WithField("task", task.Name())
			taskLog.Debug("starting task")
			start := time.Now()

			taskCtx := logger.NewContext(ctx, taskLog)
			if err := task.Run(taskCtx); err != nil {
				taskLog.Error("task failed after %v: %v", time.Since(start), err)
			} else {
				taskLog.Info("task completed in %v", time.Since(start))
			}
		}
	}
}

// Stop rejects further submissions, cancels running tasks and waits for
// the workers to exit.
func (p *Pool) Stop() {
	p.log.Info("stopping worker pool")
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Submit enqueues a task, blocking while the pool is saturated. It fails
// instead of blocking when the pool is stopped or ctx ends first.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.mu.Unlock()

	p.log.Debug("submitting task: %s", task.Name())
	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QueueSize returns the current number of waiting tasks.
func (p *Pool) QueueSize() int {
	return len(p.tasks)
}
