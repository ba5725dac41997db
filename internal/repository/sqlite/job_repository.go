package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

const jobColumns = `id, type, payload, status, retry_count, max_retries, run_at,
       claimed_at, expires_at, last_error, created_at, updated_at`

type jobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new JobRepository implementation
func NewJobRepository(db *sql.DB) repository.JobRepository {
	return &jobRepository{db: db}
}

func scanJob(row interface{ Scan(...any) error }) (*models.Job, error) {
	var j models.Job
	var payload string
	err := row.Scan(&j.ID, &j.Type, &payload, &j.Status, &j.RetryCount, &j.MaxRetries,
		&j.RunAt, &j.ClaimedAt, &j.ExpiresAt, &j.LastError, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	j.Payload = []byte(payload)
	return &j, nil
}

func (r *jobRepository) Enqueue(ctx context.Context, job models.Job) error {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("enqueueing job: id=%s, type=%s", job.ID, job.Type)

	payload := job.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	runAt := job.RunAt
	if runAt.IsZero() {
		runAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO jobs (id, type, payload, status, retry_count, max_retries, run_at)
VALUES (?, ?, ?, ?, 0, ?, ?)
`, job.ID, job.Type, string(payload), models.JobStatusPending, job.MaxRetries, runAt)
	if err != nil {
		log.Error("failed to enqueue job: %v", err)
	}
	return err
}

// ClaimNext atomically claims the oldest runnable job: either pending with
// run_at due, or active with an expired lease (a worker died holding it).
// Returns nil when nothing is runnable.
func (r *jobRepository) ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*models.Job, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")

	var claimed *models.Job
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		job, err := scanJob(tx.QueryRowContext(ctx, `
SELECT `+jobColumns+`
FROM jobs
WHERE (status = ? AND run_at <= ?)
   OR (status = ? AND expires_at IS NOT NULL AND expires_at < ?)
ORDER BY run_at ASC
LIMIT 1
`, models.JobStatusPending, now, models.JobStatusActive, now))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		expiresAt := now.Add(lease)
		if _, err := tx.ExecContext(ctx, `
UPDATE jobs
SET status = ?, claimed_at = ?, expires_at = ?, updated_at = ?
WHERE id = ?
`, models.JobStatusActive, now, expiresAt, now, job.ID); err != nil {
			return err
		}

		job.Status = models.JobStatusActive
		job.ClaimedAt = &now
		job.ExpiresAt = &expiresAt
		claimed = job
		return nil
	})
	if err != nil {
		log.Error("failed to claim job: %v", err)
		return nil, err
	}
	if claimed != nil {
		log.Debug("claimed job: id=%s, type=%s, retry=%d", claimed.ID, claimed.Type, claimed.RetryCount)
	}
	return claimed, nil
}

func (r *jobRepository) Complete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("job_repo")
	log.Debug("completing job: id=%s", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE jobs
SET status = ?, expires_at = NULL, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, models.JobStatusCompleted, id)
	if err != nil {
		log.Error("failed to complete job: %v", err)
	}
	return err
}

// Fail records a failure. A fatal error or an exhausted retry budget moves
// the job to failed; otherwise it goes back to pending with exponential
// backoff (retryDelay doubled per attempt already made).
func (r *jobRepository) Fail(ctx context.Context, id string, reason string, fatal bool, retryDelay time.Duration) error {
	log := logger.FromContext(ctx).WithPrefix("job_repo")

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		job, err := scanJob(tx.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
		if err != nil {
			return err
		}

		retries := job.RetryCount + 1
		if fatal || retries > job.MaxRetries {
			log.Info("job failed permanently: id=%s, fatal=%t, retries=%d", id, fatal, job.RetryCount)
			_, err := tx.ExecContext(ctx, `
UPDATE jobs
SET status = ?, retry_count = ?, last_error = ?, expires_at = NULL, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, models.JobStatusFailed, retries, reason, id)
			return err
		}

		backoff := retryDelay << (retries - 1)
		runAt := time.Now().UTC().Add(backoff)
		log.Info("job retry scheduled: id=%s, attempt=%d, backoff=%v", id, retries, backoff)
		_, err = tx.ExecContext(ctx, `
UPDATE jobs
SET status = ?, retry_count = ?, last_error = ?, run_at = ?, claimed_at = NULL, expires_at = NULL, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, models.JobStatusPending, retries, reason, runAt, id)
		return err
	})
}

func (r *jobRepository) Get(ctx context.Context, id string) (*models.Job, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")

	job, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get job: %v", err)
		}
		return nil, err
	}
	return job, nil
}

func (r *jobRepository) DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("job_repo")

	res, err := r.db.ExecContext(ctx, `
DELETE FROM jobs
WHERE status IN (?, ?) AND updated_at < ?
`, models.JobStatusCompleted, models.JobStatusFailed, cutoff)
	if err != nil {
		log.Error("failed to delete finished jobs: %v", err)
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Info("deleted %d finished jobs", n)
	}
	return n, nil
}
