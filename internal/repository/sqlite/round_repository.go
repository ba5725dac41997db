package sqlite

import (
	"context"
	"database/sql"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

type roundRepository struct {
	db *sql.DB
}

// NewRoundRepository creates a new RoundRepository implementation
func NewRoundRepository(db *sql.DB) repository.RoundRepository {
	return &roundRepository{db: db}
}

func (r *roundRepository) ForDemo(ctx context.Context, demoID string) ([]models.Round, error) {
	log := logger.FromContext(ctx).WithPrefix("round_repo")
	log.Debug("listing rounds: demo_id=%s", demoID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, demo_id, round_number, winner_team, win_reason, events, created_at
FROM rounds
WHERE demo_id = ?
ORDER BY round_number ASC
`, demoID)
	if err != nil {
		log.Error("failed to list rounds: %v", err)
		return nil, err
	}
	defer rows.Close()

	var rounds []models.Round
	for rows.Next() {
		var rd models.Round
		var events string
		if err := rows.Scan(&rd.ID, &rd.DemoID, &rd.RoundNumber, &rd.WinnerTeam, &rd.WinReason, &events, &rd.CreatedAt); err != nil {
			log.Error("failed to scan round row: %v", err)
			return nil, err
		}
		rd.Events = []byte(events)
		rounds = append(rounds, rd)
	}
	log.Debug("found %d rounds", len(rounds))
	return rounds, rows.Err()
}

func (r *roundRepository) CountForDemo(ctx context.Context, demoID string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("round_repo")

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE demo_id = ?`, demoID).Scan(&count)
	if err != nil {
		log.Error("failed to count rounds: %v", err)
		return 0, err
	}
	return count, nil
}
