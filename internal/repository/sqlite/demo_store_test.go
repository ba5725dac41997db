package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/demoscope/demoscope/internal/db"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/replay"
	"github.com/demoscope/demoscope/internal/repository"
	"github.com/demoscope/demoscope/internal/repository/sqlite"
	"github.com/demoscope/demoscope/internal/scoring"
	"github.com/demoscope/demoscope/internal/stats"
	"github.com/demoscope/demoscope/internal/testutil"
)

type DemoStoreSuite struct {
	suite.Suite
	db       *db.DB
	store    repository.DemoStore
	demos    repository.DemoRepository
	players  repository.PlayerStatsRepository
	rounds   repository.RoundRepository
	analyses repository.AnalysisRepository

	userID string
	demoID string
}

func (s *DemoStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewDemoStore(s.db.DB)
	s.demos = sqlite.NewDemoRepository(s.db.DB)
	s.players = sqlite.NewPlayerStatsRepository(s.db.DB)
	s.rounds = sqlite.NewRoundRepository(s.db.DB)
	s.analyses = sqlite.NewAnalysisRepository(s.db.DB)

	ctx := context.Background()
	s.userID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, steam_id) VALUES (?, ?)`, s.userID, "76561198000000001")
	s.Require().NoError(err)

	s.demoID = uuid.NewString()
	s.Require().NoError(s.demos.Insert(ctx, models.Demo{
		ID:       s.demoID,
		UserID:   s.userID,
		FilePath: "/data/demos/match.dem",
	}))
	s.Require().NoError(s.demos.MarkProcessing(ctx, s.demoID, time.Now().UTC()))
}

func (s *DemoStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func intp(v int) *int { return &v }

func (s *DemoStoreSuite) processedDemo() repository.ProcessedDemo {
	matchDate := time.Date(2026, 5, 12, 19, 30, 0, 0, time.UTC)
	return repository.ProcessedDemo{
		DemoID:      s.demoID,
		OwnerUserID: s.userID,
		Match: models.MatchFields{
			MapName:         "de_mirage",
			DurationSeconds: 2460,
			ScoreTeam1:      13,
			ScoreTeam2:      9,
			PlayerTeam:      2,
			MatchResult:     models.MatchResultWin,
			MatchDate:       &matchDate,
		},
		Players: []repository.PlayerRecord{
			{
				SteamID: "76561198000000001", Name: "owner", Team: 2,
				Stats: stats.PlayerStats{
					Kills: 20, Deaths: 14, Assists: 5, Headshots: 9,
					HeadshotPct: 45, ADR: 82.5, EntryKills: 3, EntryDeaths: 2,
					TradesGiven: 4, TradesReceived: 3,
				},
			},
			{
				SteamID: "76561198000000002", Name: "teammate", Team: 2,
				Stats: stats.PlayerStats{
					Kills: 15, Deaths: 16, Assists: 7, Headshots: 4,
					HeadshotPct: 26.7, ADR: 68.1,
				},
			},
			{
				SteamID: "76561198000000003", Name: "opponent", Team: 3,
				Stats: stats.PlayerStats{
					Kills: 18, Deaths: 17, Assists: 2, Headshots: 8,
					HeadshotPct: 44.4, ADR: 75.0,
				},
			},
		},
		MainSteamID: "76561198000000001",
		TotalRounds: 22,
		Rounds: []models.Round{
			{RoundNumber: 1, WinnerTeam: 2, WinReason: "t_win", Events: []byte(`[{"type":"kill"}]`)},
			{RoundNumber: 2, WinnerTeam: 3, WinReason: "bomb_defused"},
		},
		Result: &scoring.Result{
			Version: replay.VersionCanonical,
			PlayerStats: scoring.PlayerPerformance{
				Kills: 20, Deaths: 14, Assists: 5, Headshots: 9,
				HeadshotPct: 45, ADR: 82.5, KAST: 71.4, Rating: 1.18,
				TradesGiven: 6, TradesReceived: 4,
			},
			Scores: scoring.Scores{
				Overall: 72, Aim: 78, Positioning: 65, Utility: 70, Economy: 74,
				Timing: 68, Decision: 71, Movement: intp(62), Awareness: intp(66), Teamplay: intp(80),
			},
			Details: scoring.Details{
				Aim:         &scoring.AimDetail{HeadshotPct: 45, KillsPerRound: 0.91},
				Positioning: &scoring.PositioningDetail{},
			},
			Strengths:  []string{"Strong aim fundamentals"},
			Weaknesses: []string{"Positioning needs work"},
			Recommendations: []scoring.Recommendation{
				{Category: "positioning", Priority: "high", Title: "Play closer to teammates"},
			},
			TotalRounds: 22,
			Map:         "de_mirage",
			Duration:    2460,
		},
		Report: []byte(`{"summary":"Overall performance score: 72/100."}`),
	}
}

func (s *DemoStoreSuite) TestSaveProcessedDemo() {
	ctx := context.Background()
	p := s.processedDemo()
	s.Require().NoError(s.store.SaveProcessedDemo(ctx, p))

	demo, err := s.demos.Get(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusCompleted, demo.Status)
	s.Assert().Equal("de_mirage", demo.MapName)
	s.Assert().Equal(13, demo.ScoreTeam1)
	s.Assert().Equal(9, demo.ScoreTeam2)
	s.Assert().Equal(models.MatchResultWin, demo.MatchResult)
	s.Assert().NotNil(demo.ProcessingCompletedAt)

	players, err := s.players.ForDemo(ctx, s.demoID)
	s.Require().NoError(err)
	s.Require().Len(players, 3)

	// Exactly one main player, listed first.
	mainCount := 0
	for _, pl := range players {
		if pl.IsMainPlayer {
			mainCount++
		}
	}
	s.Assert().Equal(1, mainCount)
	s.Assert().True(players[0].IsMainPlayer)

	// The main row carries the engine-refined rating, KAST and trades.
	main, err := s.players.MainPlayer(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Equal("76561198000000001", main.SteamID)
	s.Assert().InDelta(1.18, main.Rating, 0.001)
	s.Require().NotNil(main.KAST)
	s.Assert().InDelta(71.4, *main.KAST, 0.001)
	s.Assert().Equal(6, main.TradesGiven)
	s.Assert().Equal(4, main.TradesReceived)

	// Other rows carry the naive box-score rating and no KAST.
	s.Assert().Nil(players[1].KAST)
	s.Assert().InDelta(scoring.CalculateSimpleRating(15, 16, 7, 22), players[1].Rating, 0.001)

	rounds, err := s.rounds.ForDemo(ctx, s.demoID)
	s.Require().NoError(err)
	s.Require().Len(rounds, 2)
	s.Assert().Equal(1, rounds[0].RoundNumber)
	s.Assert().JSONEq(`[{"type":"kill"}]`, string(rounds[0].Events))
	s.Assert().JSONEq(`[]`, string(rounds[1].Events))

	analysis, err := s.analyses.ForDemo(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Equal(replay.VersionCanonical, analysis.Version)
	s.Assert().Equal(72, analysis.OverallScore)
	s.Assert().Equal(78, analysis.AimScore)
	s.Require().NotNil(analysis.MovementScore)
	s.Assert().Equal(62, *analysis.MovementScore)
	s.Assert().NotEmpty(analysis.AimDetail)
	s.Assert().Empty(analysis.UtilityDetail)
	s.Assert().JSONEq(`{"summary":"Overall performance score: 72/100."}`, string(analysis.CoachingReport))
}

func (s *DemoStoreSuite) TestSave_UnknownDemo() {
	p := s.processedDemo()
	p.DemoID = uuid.NewString()
	err := s.store.SaveProcessedDemo(context.Background(), p)
	s.Assert().Error(err)
}

// assertPristine verifies the demo is still in its pre-save PROCESSING state
// with no dependent rows, which is what a rolled-back save must leave behind.
func (s *DemoStoreSuite) assertPristine(ctx context.Context) {
	demo, err := s.demos.Get(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusProcessing, demo.Status)
	s.Assert().Empty(demo.MapName)

	players, err := s.players.ForDemo(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Empty(players)

	n, err := s.rounds.CountForDemo(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Zero(n)

	_, err = s.analyses.ForDemo(ctx, s.demoID)
	s.Assert().Error(err)
}

func (s *DemoStoreSuite) TestSave_RollsBackOnDuplicateRound() {
	ctx := context.Background()
	p := s.processedDemo()
	p.Rounds = append(p.Rounds, models.Round{RoundNumber: 2, WinnerTeam: 2, WinReason: "ct_win"})

	err := s.store.SaveProcessedDemo(ctx, p)
	s.Require().Error(err)
	s.assertPristine(ctx)
}

func (s *DemoStoreSuite) TestSave_RollsBackOnDuplicatePlayer() {
	ctx := context.Background()
	p := s.processedDemo()
	p.Players = append(p.Players, p.Players[1])

	err := s.store.SaveProcessedDemo(ctx, p)
	s.Require().Error(err)
	s.assertPristine(ctx)
}

func (s *DemoStoreSuite) TestSave_RollsBackOnExistingAnalysis() {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO analyses (demo_id, version, overall_score, aim_score, positioning_score,
    utility_score, economy_score, timing_score, decision_score)
VALUES (?, 'v2', 50, 50, 50, 50, 50, 50, 50)
`, s.demoID)
	s.Require().NoError(err)

	p := s.processedDemo()
	err = s.store.SaveProcessedDemo(ctx, p)
	s.Require().Error(err)

	// Demo is still PROCESSING and no player or round rows leaked.
	demo, err := s.demos.Get(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusProcessing, demo.Status)
	players, err := s.players.ForDemo(ctx, s.demoID)
	s.Require().NoError(err)
	s.Assert().Empty(players)
}

func (s *DemoStoreSuite) TestSave_RollsBackWhenMainPlayerMissing() {
	ctx := context.Background()
	p := s.processedDemo()
	p.MainSteamID = "76561198999999999"

	err := s.store.SaveProcessedDemo(ctx, p)
	s.Require().Error(err)
	s.assertPristine(ctx)
}

func TestDemoStoreSuite(t *testing.T) {
	suite.Run(t, new(DemoStoreSuite))
}
