package jobs

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/demoscope/demoscope/internal/logger"
)

// Scheduler enqueues the recurring cleanup job on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	queue Queue
	log   *logger.Logger
}

func NewScheduler(queue Queue) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		queue: queue,
		log:   logger.Default().WithPrefix("scheduler"),
	}
}

// ScheduleCleanup registers the file-cleanup job. spec uses the standard
// five-field cron syntax.
func (s *Scheduler) ScheduleCleanup(spec string, retentionDays int) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx := logger.NewContext(context.Background(), s.log)
		id, err := s.queue.EnqueueCleanup(ctx, retentionDays)
		if err != nil {
			s.log.Error("failed to enqueue cleanup job: %v", err)
			return
		}
		s.log.Info("enqueued scheduled cleanup: job=%s, retention_days=%d", shortID(id), retentionDays)
	})
	if err != nil {
		s.log.Error("invalid cleanup schedule %q: %v", spec, err)
	}
	return err
}

func (s *Scheduler) Start() {
	s.log.Info("starting scheduler")
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}
