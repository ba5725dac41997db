package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/demoscope/demoscope/internal/logger"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
)

type analysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new AnalysisRepository implementation
func NewAnalysisRepository(db *sql.DB) repository.AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) ForDemo(ctx context.Context, demoID string) (*models.Analysis, error) {
	log := logger.FromContext(ctx).WithPrefix("analysis_repo")
	log.Debug("getting analysis: demo_id=%s", demoID)

	var a models.Analysis
	var details [9]sql.NullString
	var strengths, weaknesses, recommendations, report string
	err := r.db.QueryRowContext(ctx, `
SELECT id, demo_id, version, overall_score,
       aim_score, positioning_score, utility_score, economy_score, timing_score, decision_score,
       movement_score, awareness_score, teamplay_score,
       aim_detail, positioning_detail, utility_detail, economy_detail, timing_detail,
       decision_detail, movement_detail, awareness_detail, teamplay_detail,
       strengths, weaknesses, recommendations, coaching_report, created_at
FROM analyses
WHERE demo_id = ?
`, demoID).Scan(&a.ID, &a.DemoID, &a.Version, &a.OverallScore,
		&a.AimScore, &a.PositioningScore, &a.UtilityScore, &a.EconomyScore, &a.TimingScore, &a.DecisionScore,
		&a.MovementScore, &a.AwarenessScore, &a.TeamplayScore,
		&details[0], &details[1], &details[2], &details[3], &details[4],
		&details[5], &details[6], &details[7], &details[8],
		&strengths, &weaknesses, &recommendations, &report, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("analysis not found: demo_id=%s", demoID)
		} else {
			log.Error("failed to get analysis: %v", err)
		}
		return nil, err
	}

	raw := func(ns sql.NullString) []byte {
		if !ns.Valid {
			return nil
		}
		return []byte(ns.String)
	}
	a.AimDetail = raw(details[0])
	a.PositioningDetail = raw(details[1])
	a.UtilityDetail = raw(details[2])
	a.EconomyDetail = raw(details[3])
	a.TimingDetail = raw(details[4])
	a.DecisionDetail = raw(details[5])
	a.MovementDetail = raw(details[6])
	a.AwarenessDetail = raw(details[7])
	a.TeamplayDetail = raw(details[8])
	a.Strengths = []byte(strengths)
	a.Weaknesses = []byte(weaknesses)
	a.Recommendations = []byte(recommendations)
	a.CoachingReport = []byte(report)

	log.Debug("analysis found: version=%s, overall=%d", a.Version, a.OverallScore)
	return &a, nil
}
