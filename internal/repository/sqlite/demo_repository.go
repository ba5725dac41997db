package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

const demoColumns = `id, user_id, file_path, status, status_message, map_name, duration_seconds,
       score_team1, score_team2, player_team, match_result, match_date, archived,
       uploaded_at, processing_started_at, processing_completed_at`

type demoRepository struct {
	db *sql.DB
}

// NewDemoRepository creates a new DemoRepository implementation
func NewDemoRepository(db *sql.DB) repository.DemoRepository {
	return &demoRepository{db: db}
}

func scanDemo(row interface{ Scan(...any) error }) (*models.Demo, error) {
	var d models.Demo
	err := row.Scan(&d.ID, &d.UserID, &d.FilePath, &d.Status, &d.StatusMessage, &d.MapName,
		&d.DurationSeconds, &d.ScoreTeam1, &d.ScoreTeam2, &d.PlayerTeam, &d.MatchResult,
		&d.MatchDate, &d.Archived, &d.UploadedAt, &d.ProcessingStartedAt, &d.ProcessingCompletedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *demoRepository) Get(ctx context.Context, id string) (*models.Demo, error) {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("getting demo: id=%s", id)

	d, err := scanDemo(r.db.QueryRowContext(ctx, `
SELECT `+demoColumns+`
FROM demos
WHERE id = ?
`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("demo not found: id=%s", id)
		} else {
			log.Error("failed to get demo: %v", err)
		}
		return nil, err
	}
	log.Debug("demo found: status=%s, map=%s", d.Status, d.MapName)
	return d, nil
}

func (r *demoRepository) Insert(ctx context.Context, demo models.Demo) error {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("inserting demo: id=%s, user_id=%s", demo.ID, demo.UserID)

	status := demo.Status
	if status == "" {
		status = models.DemoStatusPending
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO demos (id, user_id, file_path, status, status_message)
VALUES (?, ?, ?, ?, ?)
`, demo.ID, demo.UserID, demo.FilePath, status, demo.StatusMessage)
	if err != nil {
		log.Error("failed to insert demo: %v", err)
	}
	return err
}

func (r *demoRepository) UpdateStatus(ctx context.Context, id string, status models.DemoStatus, message string) error {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("updating demo status: id=%s, status=%s", id, status)

	_, err := r.db.ExecContext(ctx, `
UPDATE demos SET status = ?, status_message = ? WHERE id = ?
`, status, message, id)
	if err != nil {
		log.Error("failed to update demo status: %v", err)
	}
	return err
}

func (r *demoRepository) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("marking demo processing: id=%s", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE demos
SET status = ?, status_message = '', processing_started_at = ?
WHERE id = ?
`, models.DemoStatusProcessing, startedAt, id)
	if err != nil {
		log.Error("failed to mark demo processing: %v", err)
	}
	return err
}

func (r *demoRepository) MarkFailed(ctx context.Context, id string, message string) error {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("marking demo failed: id=%s", id)

	_, err := r.db.ExecContext(ctx, `
UPDATE demos
SET status = ?, status_message = ?, processing_completed_at = CURRENT_TIMESTAMP
WHERE id = ?
`, models.DemoStatusFailed, message, id)
	if err != nil {
		log.Error("failed to mark demo failed: %v", err)
	}
	return err
}

func (r *demoRepository) ListArchivable(ctx context.Context, completedBefore time.Time) ([]models.Demo, error) {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("listing archivable demos completed before %s", completedBefore.Format(time.RFC3339))

	query := sqlBuilder.
		Select("id", "user_id", "file_path", "status", "status_message", "map_name",
			"duration_seconds", "score_team1", "score_team2", "player_team", "match_result",
			"match_date", "archived", "uploaded_at", "processing_started_at", "processing_completed_at").
		From("demos").
		Where(squirrel.Eq{"status": models.DemoStatusCompleted, "archived": false}).
		Where(squirrel.Lt{"processing_completed_at": completedBefore}).
		OrderBy("processing_completed_at ASC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to list archivable demos: %v", err)
		return nil, err
	}
	defer rows.Close()

	var demos []models.Demo
	for rows.Next() {
		d, err := scanDemo(rows)
		if err != nil {
			log.Error("failed to scan demo row: %v", err)
			return nil, err
		}
		demos = append(demos, *d)
	}
	log.Debug("found %d archivable demos", len(demos))
	return demos, rows.Err()
}

func (r *demoRepository) Archive(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("demo_repo")
	log.Debug("archiving demo: id=%s", id)

	_, err := r.db.ExecContext(ctx, `UPDATE demos SET archived = 1 WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to archive demo: %v", err)
	}
	return err
}
