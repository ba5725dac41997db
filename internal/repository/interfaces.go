package repository

import (
	"context"
	"time"

	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/scoring"
	"github.com/demoscope/demoscope/internal/stats"
)

// DemoRepository handles demo record access
type DemoRepository interface {
	Get(ctx context.Context, id string) (*models.Demo, error)
	Insert(ctx context.Context, demo models.Demo) error
	UpdateStatus(ctx context.Context, id string, status models.DemoStatus, message string) error
	MarkProcessing(ctx context.Context, id string, startedAt time.Time) error
	MarkFailed(ctx context.Context, id string, message string) error
	ListArchivable(ctx context.Context, completedBefore time.Time) ([]models.Demo, error)
	Archive(ctx context.Context, id string) error
}

// PlayerStatsRepository handles per-demo player rows
type PlayerStatsRepository interface {
	ForDemo(ctx context.Context, demoID string) ([]models.PlayerMatchStats, error)
	MainPlayer(ctx context.Context, demoID string) (*models.PlayerMatchStats, error)
}

// RoundRepository handles per-demo round rows
type RoundRepository interface {
	ForDemo(ctx context.Context, demoID string) ([]models.Round, error)
	CountForDemo(ctx context.Context, demoID string) (int, error)
}

// AnalysisRepository handles the 1:1 analysis row
type AnalysisRepository interface {
	ForDemo(ctx context.Context, demoID string) (*models.Analysis, error)
}

// UserRepository handles user records
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, steamID string) (*models.User, error)
}

// UserStatsRepository maintains the per-user aggregate cache
type UserStatsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserStatsCache, error)
	Refresh(ctx context.Context, userID string) error
}

// PlayerRecord pairs one player's identity with their box score.
type PlayerRecord struct {
	SteamID string
	Name    string
	Team    int
	Stats   stats.PlayerStats
}

// ProcessedDemo bundles everything the pipeline derived from one replay.
type ProcessedDemo struct {
	DemoID      string
	OwnerUserID string
	Match       models.MatchFields
	Players     []PlayerRecord
	MainSteamID string
	TotalRounds int
	Rounds      []models.Round
	Result      *scoring.Result
	Report      []byte
}

// JobRepository is the durable queue's storage. Claiming is atomic: a
// claimed job is invisible to other claimers until its lease expires.
type JobRepository interface {
	Enqueue(ctx context.Context, job models.Job) error
	ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*models.Job, error)
	Complete(ctx context.Context, id string) error
	Fail(ctx context.Context, id string, reason string, fatal bool, retryDelay time.Duration) error
	Get(ctx context.Context, id string) (*models.Job, error)
	DeleteFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// DemoStore owns the atomic persistence of a processed demo. All writes
// happen in a single transaction so a failure anywhere leaves the demo in
// its pre-save state.
type DemoStore interface {
	SaveProcessedDemo(ctx context.Context, p ProcessedDemo) error
}
