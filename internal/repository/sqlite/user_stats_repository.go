package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

type userStatsRepository struct {
	db *sql.DB
}

// NewUserStatsRepository creates a new UserStatsRepository implementation
func NewUserStatsRepository(db *sql.DB) repository.UserStatsRepository {
	return &userStatsRepository{db: db}
}

func (r *userStatsRepository) Get(ctx context.Context, userID string) (*models.UserStatsCache, error) {
	log := logger.FromContext(ctx).WithPrefix("user_stats_repo")
	log.Debug("getting cached stats: user_id=%s", userID)

	var s models.UserStatsCache
	err := r.db.QueryRowContext(ctx, `
SELECT user_id, total_demos, avg_rating, avg_adr, avg_headshot_pct, win_rate, refreshed_at
FROM user_stats_cache
WHERE user_id = ?
`, userID).Scan(&s.UserID, &s.TotalDemos, &s.AvgRating, &s.AvgADR, &s.AvgHeadshotPct, &s.WinRate, &s.RefreshedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no cached stats: user_id=%s", userID)
		} else {
			log.Error("failed to get cached stats: %v", err)
		}
		return nil, err
	}
	return &s, nil
}

// Refresh recomputes the aggregate row from completed demos. Delete plus
// insert-select inside one transaction keeps readers from ever seeing a
// partially updated row.
func (r *userStatsRepository) Refresh(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx).WithPrefix("user_stats_repo")
	log.Debug("refreshing cached stats: user_id=%s", userID)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM user_stats_cache WHERE user_id = ?`, userID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO user_stats_cache (user_id, total_demos, avg_rating, avg_adr, avg_headshot_pct, win_rate)
SELECT d.user_id,
       COUNT(*) AS total_demos,
       AVG(p.rating) AS avg_rating,
       AVG(p.adr) AS avg_adr,
       AVG(p.headshot_pct) AS avg_headshot_pct,
       100.0 * SUM(CASE WHEN d.match_result = 'WIN' THEN 1 ELSE 0 END) / COUNT(*) AS win_rate
FROM demos d
JOIN demo_player_stats p ON p.demo_id = d.id AND p.is_main_player = 1
WHERE d.user_id = ? AND d.status = 'COMPLETED'
GROUP BY d.user_id
`, userID)
		return err
	})
}
