package pipeline_test

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/demoscope/demoscope/internal/db"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/pipeline"
	"github.com/demoscope/demoscope/internal/replay"
	"github.com/demoscope/demoscope/internal/repository"
	"github.com/demoscope/demoscope/internal/repository/sqlite"
	"github.com/demoscope/demoscope/internal/testutil"
	"github.com/demoscope/demoscope/internal/testutil/mocks"
)

type ProcessorSuite struct {
	suite.Suite
	db        *db.DB
	demos     repository.DemoRepository
	users     repository.UserRepository
	players   repository.PlayerStatsRepository
	rounds    repository.RoundRepository
	analyses  repository.AnalysisRepository
	queue     *mocks.MockJobQueue
	processor *pipeline.Processor

	userID string
}

func (s *ProcessorSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.demos = sqlite.NewDemoRepository(s.db.DB)
	s.users = sqlite.NewUserRepository(s.db.DB)
	s.players = sqlite.NewPlayerStatsRepository(s.db.DB)
	s.rounds = sqlite.NewRoundRepository(s.db.DB)
	s.analyses = sqlite.NewAnalysisRepository(s.db.DB)
	s.queue = new(mocks.MockJobQueue)
	s.processor = pipeline.NewProcessor(s.demos, s.users,
		sqlite.NewDemoStore(s.db.DB), s.queue, nil)

	user, err := s.users.Upsert(context.Background(), "76561198000000001")
	s.Require().NoError(err)
	s.userID = user.ID
}

func (s *ProcessorSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

// writeCanonicalDemo builds a canonical demo container in a temp dir.
func (s *ProcessorSuite) writeCanonicalDemo(r *replay.Replay) string {
	payload, err := json.Marshal(r)
	s.Require().NoError(err)

	buf := make([]byte, 8)
	copy(buf, replay.MagicCanonical)
	buf = binary.LittleEndian.AppendUint32(buf, 1)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)

	path := filepath.Join(s.T().TempDir(), "match.dem")
	s.Require().NoError(os.WriteFile(path, buf, 0o644))
	return path
}

func (s *ProcessorSuite) insertDemo(filePath string) string {
	id := uuid.NewString()
	s.Require().NoError(s.demos.Insert(context.Background(), models.Demo{
		ID:       id,
		UserID:   s.userID,
		FilePath: filePath,
	}))
	return id
}

func (s *ProcessorSuite) sampleReplay() *replay.Replay {
	return &replay.Replay{
		Metadata: replay.Metadata{Map: "de_nuke", Duration: 1980, Tickrate: 64, MatchDate: "2026-04-01"},
		Players: []replay.Player{
			{SteamID: "76561198000000001", Name: "owner", Team: replay.TeamCT},
			{SteamID: "76561198000000002", Name: "rival", Team: replay.TeamT},
		},
		Rounds: []replay.RoundInfo{
			{RoundNumber: 1, Winner: replay.TeamCT, Reason: replay.ReasonCTWin, Tick: 5000},
			{RoundNumber: 2, Winner: replay.TeamCT, Reason: replay.ReasonBombDefused, Tick: 15000},
			{RoundNumber: 3, Winner: replay.TeamT, Reason: replay.ReasonTargetBombed, Tick: 25000},
		},
		Kills: []replay.KillEvent{
			{Tick: 1200, Round: 1, AttackerSteamID: "76561198000000001",
				VictimSteamID: "76561198000000002", Weapon: "m4a1", Headshot: true},
			{Tick: 16000, Round: 3, AttackerSteamID: "76561198000000002",
				VictimSteamID: "76561198000000001", Weapon: "ak47"},
		},
		Damages: []replay.DamageEvent{
			{Round: 1, AttackerSteamID: "76561198000000001",
				VictimSteamID: "76561198000000002", Damage: 100},
		},
	}
}

func (s *ProcessorSuite) TestProcessDemo_EndToEnd() {
	ctx := context.Background()
	path := s.writeCanonicalDemo(s.sampleReplay())
	demoID := s.insertDemo(path)

	s.queue.On("EnqueueUserStatsRefresh", mock.Anything, s.userID).Return("job-1", nil)

	s.Require().NoError(s.processor.ProcessDemo(ctx, demoID))

	demo, err := s.demos.Get(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusCompleted, demo.Status)
	s.Assert().Equal("de_nuke", demo.MapName)
	s.Assert().Equal(models.MatchResultWin, demo.MatchResult)
	s.Assert().Equal(2, demo.ScoreTeam1)
	s.Assert().Equal(1, demo.ScoreTeam2)
	s.Require().NotNil(demo.MatchDate)
	s.Assert().Equal(2026, demo.MatchDate.Year())

	// The owner played, so they are the main player.
	main, err := s.players.MainPlayer(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal("76561198000000001", main.SteamID)
	s.Assert().Equal(1, main.Kills)
	s.Assert().Equal(1, main.Deaths)

	rounds, err := s.rounds.ForDemo(ctx, demoID)
	s.Require().NoError(err)
	s.Require().Len(rounds, 3)
	s.Assert().Equal("ct_win", rounds[0].WinReason)
	s.Assert().Equal("bomb_defused", rounds[1].WinReason)
	s.Assert().Equal("target_bombed", rounds[2].WinReason)

	analysis, err := s.analyses.ForDemo(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal(replay.VersionCanonical, analysis.Version)
	s.Assert().NotEmpty(analysis.CoachingReport)

	s.queue.AssertExpectations(s.T())
}

func (s *ProcessorSuite) TestProcessDemo_MissingDemoIsNoOp() {
	err := s.processor.ProcessDemo(context.Background(), uuid.NewString())
	s.Assert().NoError(err)
}

func (s *ProcessorSuite) TestProcessDemo_CompletedDemoIsNoOp() {
	ctx := context.Background()
	demoID := s.insertDemo("/nonexistent/file.dem")
	s.Require().NoError(s.demos.UpdateStatus(ctx, demoID, models.DemoStatusCompleted, ""))

	// The file does not exist, so reprocessing would fail; skipping proves
	// the guard fired before validation.
	s.Assert().NoError(s.processor.ProcessDemo(ctx, demoID))
	s.queue.AssertNotCalled(s.T(), "EnqueueUserStatsRefresh", mock.Anything, mock.Anything)
}

func (s *ProcessorSuite) TestProcessDemo_InvalidFileFailsFatally() {
	ctx := context.Background()
	path := filepath.Join(s.T().TempDir(), "bogus.dem")
	s.Require().NoError(os.WriteFile(path, []byte("NOTADEMOFILE"), 0o644))
	demoID := s.insertDemo(path)

	err := s.processor.ProcessDemo(ctx, demoID)
	s.Require().Error(err)

	demo, getErr := s.demos.Get(ctx, demoID)
	s.Require().NoError(getErr)
	s.Assert().Equal(models.DemoStatusFailed, demo.Status)
	s.Assert().NotEmpty(demo.StatusMessage)

	// No partial derived rows survive a failed run.
	players, listErr := s.players.ForDemo(ctx, demoID)
	s.Require().NoError(listErr)
	s.Assert().Empty(players)
}

func (s *ProcessorSuite) TestProcessDemo_NoPlayersFailsFatally() {
	ctx := context.Background()
	r := s.sampleReplay()
	r.Players = nil
	r.Kills = nil
	r.Damages = nil
	path := s.writeCanonicalDemo(r)
	demoID := s.insertDemo(path)

	err := s.processor.ProcessDemo(ctx, demoID)
	s.Require().Error(err)

	demo, getErr := s.demos.Get(ctx, demoID)
	s.Require().NoError(getErr)
	s.Assert().Equal(models.DemoStatusFailed, demo.Status)
}

func (s *ProcessorSuite) TestProcessDemo_OwnerAbsentFallsBackToFirstPlayer() {
	ctx := context.Background()
	r := s.sampleReplay()
	r.Players[0].SteamID = "76561198000000777"
	for i := range r.Kills {
		if r.Kills[i].AttackerSteamID == "76561198000000001" {
			r.Kills[i].AttackerSteamID = "76561198000000777"
		}
		if r.Kills[i].VictimSteamID == "76561198000000001" {
			r.Kills[i].VictimSteamID = "76561198000000777"
		}
	}
	path := s.writeCanonicalDemo(r)
	demoID := s.insertDemo(path)

	s.queue.On("EnqueueUserStatsRefresh", mock.Anything, s.userID).Return("job-1", nil)
	s.Require().NoError(s.processor.ProcessDemo(ctx, demoID))

	main, err := s.players.MainPlayer(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal("76561198000000777", main.SteamID)
}

func (s *ProcessorSuite) TestProcessDemo_StatsRefreshFailureDoesNotFailDemo() {
	ctx := context.Background()
	path := s.writeCanonicalDemo(s.sampleReplay())
	demoID := s.insertDemo(path)

	s.queue.On("EnqueueUserStatsRefresh", mock.Anything, s.userID).
		Return("", context.DeadlineExceeded)

	s.Require().NoError(s.processor.ProcessDemo(ctx, demoID))

	demo, err := s.demos.Get(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusCompleted, demo.Status)
}

func (s *ProcessorSuite) TestProcessDemo_RetryAfterTransientFailureSucceeds() {
	ctx := context.Background()
	r := s.sampleReplay()
	path := s.writeCanonicalDemo(r)

	// First attempt fails mid-save because an analysis row already exists.
	demoID := s.insertDemo(path)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO analyses (demo_id, version, overall_score, aim_score, positioning_score,
    utility_score, economy_score, timing_score, decision_score)
VALUES (?, 'v2', 1, 1, 1, 1, 1, 1, 1)`, demoID)
	s.Require().NoError(err)

	s.Require().Error(s.processor.ProcessDemo(ctx, demoID))
	demo, err := s.demos.Get(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusFailed, demo.Status)

	// Clearing the conflict lets the retry complete.
	_, err = s.db.ExecContext(ctx, `DELETE FROM analyses WHERE demo_id = ?`, demoID)
	s.Require().NoError(err)

	s.queue.On("EnqueueUserStatsRefresh", mock.Anything, s.userID).Return("job-2", nil)
	s.Require().NoError(s.processor.ProcessDemo(ctx, demoID))

	demo, err = s.demos.Get(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusCompleted, demo.Status)
}

func (s *ProcessorSuite) TestProcessDemo_LegacyDemo() {
	ctx := context.Background()

	legacy := &replay.LegacyReplay{
		Metadata: replay.Metadata{Map: "de_train", Duration: 1500},
		Players: []replay.Player{
			{SteamID: "76561198000000001", Name: "owner", Team: replay.TeamCT},
		},
		Rounds: []replay.RoundInfo{
			{RoundNumber: 1, Winner: replay.TeamCT, Reason: replay.ReasonCTWin},
		},
		Kills: []replay.LegacyKill{
			{Round: 1, AttackerSteamID: "76561198000000001", VictimSteamID: "x", Weapon: "awp"},
		},
	}
	payload, err := json.Marshal(legacy)
	s.Require().NoError(err)

	buf := make([]byte, 8)
	copy(buf, replay.MagicLegacy)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	path := filepath.Join(s.T().TempDir(), "legacy.dem")
	s.Require().NoError(os.WriteFile(path, buf, 0o644))

	demoID := s.insertDemo(path)
	s.queue.On("EnqueueUserStatsRefresh", mock.Anything, s.userID).Return("job-3", nil)
	s.Require().NoError(s.processor.ProcessDemo(ctx, demoID))

	analysis, err := s.analyses.ForDemo(ctx, demoID)
	s.Require().NoError(err)
	s.Assert().Equal(replay.VersionLegacyCompat, analysis.Version)
	// Legacy conversions never produce the newer category details.
	s.Assert().Empty(analysis.MovementDetail)
	s.Assert().Empty(analysis.AwarenessDetail)
	s.Assert().Empty(analysis.TeamplayDetail)
}

func (s *ProcessorSuite) TestProcessDemo_SetsProcessingTimestamps() {
	ctx := context.Background()
	path := s.writeCanonicalDemo(s.sampleReplay())
	demoID := s.insertDemo(path)

	before := time.Now().UTC().Add(-time.Minute)
	s.queue.On("EnqueueUserStatsRefresh", mock.Anything, s.userID).Return("job-4", nil)
	s.Require().NoError(s.processor.ProcessDemo(ctx, demoID))

	demo, err := s.demos.Get(ctx, demoID)
	s.Require().NoError(err)
	s.Require().NotNil(demo.ProcessingStartedAt)
	s.Require().NotNil(demo.ProcessingCompletedAt)
	s.Assert().True(demo.ProcessingStartedAt.After(before))
	// Completion is stamped at second resolution, so allow slack.
	s.Assert().WithinDuration(*demo.ProcessingStartedAt, *demo.ProcessingCompletedAt, 5*time.Second)
}

func TestProcessorSuite(t *testing.T) {
	suite.Run(t, new(ProcessorSuite))
}
