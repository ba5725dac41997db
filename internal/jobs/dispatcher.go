package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/demoscope/demoscope/internal/errors"
	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
	"github.com/demoscope/demoscope/internal/worker"
)

// HandlerFunc processes one claimed job.
type HandlerFunc func(ctx context.Context, job *models.Job) error

type registration struct {
	pool    *worker.Pool
	handler HandlerFunc
}

// Dispatcher polls the jobs table, claims runnable jobs and hands them to
// the worker pool registered for their type. Completion and failure are
// recorded back on the jobs table; a fatal handler error fails the job
// immediately, anything else goes through retry accounting.
type Dispatcher struct {
	repo         repository.JobRepository
	registry     map[models.JobType]registration
	pollInterval time.Duration
	lease        time.Duration
	retryDelay   time.Duration

	wg     sync.WaitGroup
	cancel context.CancelFunc
	log    *logger.Logger
}

func NewDispatcher(repo repository.JobRepository, pollInterval, lease, retryDelay time.Duration) *Dispatcher {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Dispatcher{
		repo:         repo,
		registry:     make(map[models.JobType]registration),
		pollInterval: pollInterval,
		lease:        lease,
		retryDelay:   retryDelay,
		log:          logger.Default().WithPrefix("dispatcher"),
	}
}

// Register binds a job type to a pool and handler. Must be called before
// Start.
func (d *Dispatcher) Register(jobType models.JobType, pool *worker.Pool, handler HandlerFunc) {
	d.registry[jobType] = registration{pool: pool, handler: handler}
}

func (d *Dispatcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.log.Info("starting dispatcher: poll=%v, lease=%v", d.pollInterval, d.lease)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				d.log.Debug("dispatcher shutting down")
				return
			case <-ticker.C:
				d.drain(ctx)
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	d.log.Info("stopping dispatcher")
	if d.cancel != nil {
		d.cancel()
	}
	d.wg.Wait()
	d.log.Info("dispatcher stopped")
}

// drain claims and submits jobs until the table has nothing runnable.
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		job, err := d.repo.ClaimNext(ctx, time.Now().UTC(), d.lease)
		if err != nil {
			d.log.Error("claim failed: %v", err)
			return
		}
		if job == nil {
			return
		}

		reg, ok := d.registry[job.Type]
		if !ok {
			d.log.Warn("no handler registered for job type %s, failing job %s", job.Type, job.ID)
			d.ack(job, fmt.Errorf("no handler for job type %s", job.Type), true)
			continue
		}

		if err := reg.pool.Submit(ctx, &claimedJob{dispatcher: d, job: job, handler: reg.handler}); err != nil {
			d.log.Warn("submit failed for job %s: %v", job.ID, err)
			d.ack(job, err, false)
			return
		}
	}
}

// ack records the handler outcome. It runs on a fresh context so shutdown
// cannot lose the acknowledgment.
func (d *Dispatcher) ack(job *models.Job, runErr error, forceFatal bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = logger.NewContext(ctx, d.log)

	if runErr == nil {
		if err := d.repo.Complete(ctx, job.ID); err != nil {
			d.log.Error("failed to mark job %s completed: %v", job.ID, err)
		}
		return
	}

	fatal := forceFatal || apperrors.IsFatal(runErr)
	if err := d.repo.Fail(ctx, job.ID, runErr.Error(), fatal, d.retryDelay); err != nil {
		d.log.Error("failed to record failure for job %s: %v", job.ID, err)
	}
}

// claimedJob adapts a claimed queue job to the pool's Task interface.
type claimedJob struct {
	dispatcher *Dispatcher
	job        *models.Job
	handler    HandlerFunc
}

func (c *claimedJob) Name() string {
	return fmt.Sprintf("%s/%s", c.job.Type, shortID(c.job.ID))
}

func (c *claimedJob) Run(ctx context.Context) error {
	err := c.handler(ctx, c.job)
	c.dispatcher.ack(c.job, err, false)
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
