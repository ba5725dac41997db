package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

const playerStatsColumns = `id, demo_id, steam_id, name, team, is_main_player, kills, deaths, assists,
       headshots, headshot_pct, adr, kast, rating, entry_kills, entry_deaths,
       trades_given, trades_received, avg_blind_duration, created_at`

type playerStatsRepository struct {
	db *sql.DB
}

// NewPlayerStatsRepository creates a new PlayerStatsRepository implementation
func NewPlayerStatsRepository(db *sql.DB) repository.PlayerStatsRepository {
	return &playerStatsRepository{db: db}
}

func scanPlayerStats(row interface{ Scan(...any) error }) (*models.PlayerMatchStats, error) {
	var p models.PlayerMatchStats
	err := row.Scan(&p.ID, &p.DemoID, &p.SteamID, &p.Name, &p.Team, &p.IsMainPlayer,
		&p.Kills, &p.Deaths, &p.Assists, &p.Headshots, &p.HeadshotPct, &p.ADR, &p.KAST,
		&p.Rating, &p.EntryKills, &p.EntryDeaths, &p.TradesGiven, &p.TradesReceived,
		&p.AvgBlindDuration, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *playerStatsRepository) ForDemo(ctx context.Context, demoID string) ([]models.PlayerMatchStats, error) {
	log := logger.FromContext(ctx).WithPrefix("player_stats_repo")
	log.Debug("listing player stats: demo_id=%s", demoID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+playerStatsColumns+`
FROM demo_player_stats
WHERE demo_id = ?
ORDER BY is_main_player DESC, rating DESC
`, demoID)
	if err != nil {
		log.Error("failed to list player stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var players []models.PlayerMatchStats
	for rows.Next() {
		p, err := scanPlayerStats(rows)
		if err != nil {
			log.Error("failed to scan player stats row: %v", err)
			return nil, err
		}
		players = append(players, *p)
	}
	log.Debug("found %d player rows", len(players))
	return players, rows.Err()
}

func (r *playerStatsRepository) MainPlayer(ctx context.Context, demoID string) (*models.PlayerMatchStats, error) {
	log := logger.FromContext(ctx).WithPrefix("player_stats_repo")
	log.Debug("getting main player: demo_id=%s", demoID)

	p, err := scanPlayerStats(r.db.QueryRowContext(ctx, `
SELECT `+playerStatsColumns+`
FROM demo_player_stats
WHERE demo_id = ? AND is_main_player = 1
`, demoID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("no main player row: demo_id=%s", demoID)
		} else {
			log.Error("failed to get main player: %v", err)
		}
		return nil, err
	}
	return p, nil
}
