// Package jobs provides the durable background-job queue. Jobs live in
// the database, survive restarts, and are retried with exponential
// backoff until they succeed, exhaust their budget, or fail fatally.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

// Queue enqueues background jobs. Enqueue returns the job id.
type Queue interface {
	EnqueueProcessDemo(ctx context.Context, demoID, userID, filePath string) (string, error)
	EnqueueUserStatsRefresh(ctx context.Context, userID string) (string, error)
	EnqueueCleanup(ctx context.Context, olderThanDays int) (string, error)
}

// DurableQueue implements Queue on top of the jobs table.
type DurableQueue struct {
	repo       repository.JobRepository
	maxRetries int
}

// NewDurableQueue creates a new DurableQueue. maxRetries applies to every
// enqueued job.
func NewDurableQueue(repo repository.JobRepository, maxRetries int) *DurableQueue {
	return &DurableQueue{repo: repo, maxRetries: maxRetries}
}

func (q *DurableQueue) enqueue(ctx context.Context, jobType models.JobType, payload any) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("queue")

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to marshal job payload: %v", err)
		return "", err
	}

	job := models.Job{
		ID:         uuid.NewString(),
		Type:       jobType,
		Payload:    body,
		MaxRetries: q.maxRetries,
	}
	if err := q.repo.Enqueue(ctx, job); err != nil {
		return "", err
	}
	log.Info("enqueued job: id=%s, type=%s", job.ID, jobType)
	return job.ID, nil
}

func (q *DurableQueue) EnqueueProcessDemo(ctx context.Context, demoID, userID, filePath string) (string, error) {
	return q.enqueue(ctx, models.JobTypeProcessDemo, models.ProcessDemoPayload{
		DemoID:   demoID,
		UserID:   userID,
		FilePath: filePath,
	})
}

func (q *DurableQueue) EnqueueUserStatsRefresh(ctx context.Context, userID string) (string, error) {
	return q.enqueue(ctx, models.JobTypeUserStatsRefresh, models.UserStatsRefreshPayload{
		UserID: userID,
	})
}

func (q *DurableQueue) EnqueueCleanup(ctx context.Context, olderThanDays int) (string, error) {
	return q.enqueue(ctx, models.JobTypeCleanup, models.CleanupPayload{
		OlderThanDays: olderThanDays,
	})
}
