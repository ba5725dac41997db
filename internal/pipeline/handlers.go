package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/demoscope/demoscope/internal/jobs"
	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

// ProcessDemoHandler adapts the processor to the queue.
func ProcessDemoHandler(p *Processor) jobs.HandlerFunc {
	return func(ctx context.Context, job *models.Job) error {
		var payload models.ProcessDemoPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode process-demo payload: %w", err)
		}
		return p.ProcessDemo(ctx, payload.DemoID)
	}
}

// UserStatsRefreshHandler recomputes one user's aggregate cache.
func UserStatsRefreshHandler(userStats repository.UserStatsRepository) jobs.HandlerFunc {
	return func(ctx context.Context, job *models.Job) error {
		var payload models.UserStatsRefreshPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode stats-refresh payload: %w", err)
		}
		return userStats.Refresh(ctx, payload.UserID)
	}
}

// CleanupHandler archives completed demos past retention: the replay file
// is removed from disk and the row flagged archived. Derived rows are
// never touched. Finished queue jobs past the same cutoff are pruned too.
func CleanupHandler(demos repository.DemoRepository, jobRepo repository.JobRepository) jobs.HandlerFunc {
	return func(ctx context.Context, job *models.Job) error {
		log := logger.FromContext(ctx)

		var payload models.CleanupPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode cleanup payload: %w", err)
		}
		if payload.OlderThanDays <= 0 {
			payload.OlderThanDays = 30
		}
		cutoff := time.Now().UTC().AddDate(0, 0, -payload.OlderThanDays)

		archivable, err := demos.ListArchivable(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("list archivable demos: %w", err)
		}

		archived := 0
		for _, demo := range archivable {
			if err := os.Remove(demo.FilePath); err != nil && !os.IsNotExist(err) {
				log.Warn("failed to remove replay file %s: %v", demo.FilePath, err)
				continue
			}
			if err := demos.Archive(ctx, demo.ID); err != nil {
				return fmt.Errorf("archive demo %s: %w", demo.ID, err)
			}
			archived++
		}
		log.Info("cleanup archived %d of %d demos older than %d days",
			archived, len(archivable), payload.OlderThanDays)

		if jobRepo != nil {
			if _, err := jobRepo.DeleteFinishedBefore(ctx, cutoff); err != nil {
				log.Warn("failed to prune finished jobs: %v", err)
			}
		}
		return nil
	}
}
