package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
	"github.com/demoscope/demoscope/internal/scoring"
)

type demoStore struct {
	db *sql.DB
}

// NewDemoStore creates the transactional writer for processed demos.
func NewDemoStore(db *sql.DB) repository.DemoStore {
	return &demoStore{db: db}
}

// SaveProcessedDemo writes everything derived from one replay in a single
// transaction: the demo's match fields, all player rows, all round rows,
// the analysis row, the main player refinement, and finally the COMPLETED
// status. A failure at any step rolls the demo back to its pre-save state.
func (s *demoStore) SaveProcessedDemo(ctx context.Context, p repository.ProcessedDemo) error {
	log := logger.FromContext(ctx).WithPrefix("demo_store")
	log.Info("saving processed demo: id=%s, players=%d, rounds=%d", p.DemoID, len(p.Players), len(p.Rounds))

	return tx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.updateMatchFields(ctx, tx, p); err != nil {
			return fmt.Errorf("update match fields: %w", err)
		}
		if err := s.insertPlayers(ctx, tx, p); err != nil {
			return fmt.Errorf("insert players: %w", err)
		}
		if err := s.insertRounds(ctx, tx, p); err != nil {
			return fmt.Errorf("insert rounds: %w", err)
		}
		if err := s.insertAnalysis(ctx, tx, p); err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
		if err := s.refineMainPlayer(ctx, tx, p); err != nil {
			return fmt.Errorf("refine main player: %w", err)
		}
		if err := s.complete(ctx, tx, p.DemoID); err != nil {
			return fmt.Errorf("complete demo: %w", err)
		}
		return nil
	})
}

func (s *demoStore) updateMatchFields(ctx context.Context, tx *sql.Tx, p repository.ProcessedDemo) error {
	res, err := tx.ExecContext(ctx, `
UPDATE demos
SET status = ?, map_name = ?, duration_seconds = ?, score_team1 = ?, score_team2 = ?,
    player_team = ?, match_result = ?, match_date = ?
WHERE id = ?
`, models.DemoStatusAnalyzing, p.Match.MapName, p.Match.DurationSeconds,
		p.Match.ScoreTeam1, p.Match.ScoreTeam2, p.Match.PlayerTeam, p.Match.MatchResult,
		p.Match.MatchDate, p.DemoID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *demoStore) insertPlayers(ctx context.Context, tx *sql.Tx, p repository.ProcessedDemo) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO demo_player_stats (demo_id, steam_id, name, team, is_main_player, kills, deaths,
    assists, headshots, headshot_pct, adr, kast, rating, entry_kills, entry_deaths,
    trades_given, trades_received, avg_blind_duration)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, pl := range p.Players {
		rating := scoring.CalculateSimpleRating(pl.Stats.Kills, pl.Stats.Deaths, pl.Stats.Assists, p.TotalRounds)
		_, err := stmt.ExecContext(ctx, p.DemoID, pl.SteamID, pl.Name, pl.Team,
			pl.SteamID == p.MainSteamID, pl.Stats.Kills, pl.Stats.Deaths, pl.Stats.Assists,
			pl.Stats.Headshots, pl.Stats.HeadshotPct, pl.Stats.ADR, nil, rating,
			pl.Stats.EntryKills, pl.Stats.EntryDeaths, pl.Stats.TradesGiven,
			pl.Stats.TradesReceived, pl.Stats.AvgBlindDuration)
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *demoStore) insertRounds(ctx context.Context, tx *sql.Tx, p repository.ProcessedDemo) error {
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO rounds (demo_id, round_number, winner_team, win_reason, events)
VALUES (?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rd := range p.Rounds {
		events := rd.Events
		if len(events) == 0 {
			events = []byte("[]")
		}
		if _, err := stmt.ExecContext(ctx, p.DemoID, rd.RoundNumber, rd.WinnerTeam, rd.WinReason, string(events)); err != nil {
			return err
		}
	}
	return nil
}

func (s *demoStore) insertAnalysis(ctx context.Context, tx *sql.Tx, p repository.ProcessedDemo) error {
	res := p.Result

	marshal := func(v any) (any, error) {
		if v == nil {
			return nil, nil
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}
	detail := func(v any, isNil bool) (any, error) {
		if isNil {
			return nil, nil
		}
		return marshal(v)
	}

	aim, err := detail(res.Details.Aim, res.Details.Aim == nil)
	if err != nil {
		return err
	}
	positioning, err := detail(res.Details.Positioning, res.Details.Positioning == nil)
	if err != nil {
		return err
	}
	utility, err := detail(res.Details.Utility, res.Details.Utility == nil)
	if err != nil {
		return err
	}
	economy, err := detail(res.Details.Economy, res.Details.Economy == nil)
	if err != nil {
		return err
	}
	timing, err := detail(res.Details.Timing, res.Details.Timing == nil)
	if err != nil {
		return err
	}
	decision, err := detail(res.Details.Decision, res.Details.Decision == nil)
	if err != nil {
		return err
	}
	movement, err := detail(res.Details.Movement, res.Details.Movement == nil)
	if err != nil {
		return err
	}
	awareness, err := detail(res.Details.Awareness, res.Details.Awareness == nil)
	if err != nil {
		return err
	}
	teamplay, err := detail(res.Details.Teamplay, res.Details.Teamplay == nil)
	if err != nil {
		return err
	}
	strengths, err := marshal(res.Strengths)
	if err != nil {
		return err
	}
	weaknesses, err := marshal(res.Weaknesses)
	if err != nil {
		return err
	}
	recommendations, err := marshal(res.Recommendations)
	if err != nil {
		return err
	}

	report := p.Report
	if len(report) == 0 {
		report = []byte("{}")
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO analyses (demo_id, version, overall_score,
    aim_score, positioning_score, utility_score, economy_score, timing_score, decision_score,
    movement_score, awareness_score, teamplay_score,
    aim_detail, positioning_detail, utility_detail, economy_detail, timing_detail,
    decision_detail, movement_detail, awareness_detail, teamplay_detail,
    strengths, weaknesses, recommendations, coaching_report)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, p.DemoID, res.Version, res.Scores.Overall,
		res.Scores.Aim, res.Scores.Positioning, res.Scores.Utility, res.Scores.Economy,
		res.Scores.Timing, res.Scores.Decision,
		res.Scores.Movement, res.Scores.Awareness, res.Scores.Teamplay,
		aim, positioning, utility, economy, timing, decision, movement, awareness, teamplay,
		strengths, weaknesses, recommendations, string(report))
	return err
}

// refineMainPlayer overwrites the main player's naive box-score rating with
// the engine-refined rating, KAST and trade counts.
func (s *demoStore) refineMainPlayer(ctx context.Context, tx *sql.Tx, p repository.ProcessedDemo) error {
	res, err := tx.ExecContext(ctx, `
UPDATE demo_player_stats
SET rating = ?, kast = ?, trades_given = ?, trades_received = ?
WHERE demo_id = ? AND is_main_player = 1
`, p.Result.PlayerStats.Rating, p.Result.PlayerStats.KAST,
		p.Result.PlayerStats.TradesGiven, p.Result.PlayerStats.TradesReceived, p.DemoID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("expected one main player row, updated %d", n)
	}
	return nil
}

func (s *demoStore) complete(ctx context.Context, tx *sql.Tx, demoID string) error {
	_, err := tx.ExecContext(ctx, `
UPDATE demos
SET status = ?, status_message = '', processing_completed_at = CURRENT_TIMESTAMP
WHERE id = ?
`, models.DemoStatusCompleted, demoID)
	return err
}
