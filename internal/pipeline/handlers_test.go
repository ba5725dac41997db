package pipeline_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/pipeline"
	"github.com/demoscope/demoscope/internal/repository/sqlite"
	"github.com/demoscope/demoscope/internal/testutil"
)

func cleanupJob(t *testing.T, olderThanDays int) *models.Job {
	t.Helper()
	payload, err := json.Marshal(models.CleanupPayload{OlderThanDays: olderThanDays})
	require.NoError(t, err)
	return &models.Job{ID: uuid.NewString(), Type: models.JobTypeCleanup, Payload: payload}
}

func TestCleanupHandler(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	ctx := context.Background()

	demos := sqlite.NewDemoRepository(database.DB)
	jobRepo := sqlite.NewJobRepository(database.DB)
	users := sqlite.NewUserRepository(database.DB)

	user, err := users.Upsert(ctx, "76561198000000050")
	require.NoError(t, err)

	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.dem")
	freshFile := filepath.Join(dir, "fresh.dem")
	require.NoError(t, os.WriteFile(oldFile, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(freshFile, []byte("x"), 0o644))

	oldDemo := models.Demo{ID: uuid.NewString(), UserID: user.ID, FilePath: oldFile}
	freshDemo := models.Demo{ID: uuid.NewString(), UserID: user.ID, FilePath: freshFile}
	goneDemo := models.Demo{ID: uuid.NewString(), UserID: user.ID, FilePath: filepath.Join(dir, "gone.dem")}
	require.NoError(t, demos.Insert(ctx, oldDemo))
	require.NoError(t, demos.Insert(ctx, freshDemo))
	require.NoError(t, demos.Insert(ctx, goneDemo))

	stale := time.Now().UTC().AddDate(0, 0, -45)
	for _, id := range []string{oldDemo.ID, goneDemo.ID} {
		_, err := database.ExecContext(ctx, `
UPDATE demos SET status = 'COMPLETED', processing_completed_at = ? WHERE id = ?`, stale, id)
		require.NoError(t, err)
	}
	_, err = database.ExecContext(ctx, `
UPDATE demos SET status = 'COMPLETED', processing_completed_at = ? WHERE id = ?`,
		time.Now().UTC(), freshDemo.ID)
	require.NoError(t, err)

	handler := pipeline.CleanupHandler(demos, jobRepo)
	require.NoError(t, handler(ctx, cleanupJob(t, 30)))

	// The stale demo's file is gone and the row flagged archived.
	_, statErr := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(statErr))
	got, err := demos.Get(ctx, oldDemo.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	// An already-missing file is not an error.
	got, err = demos.Get(ctx, goneDemo.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	// Fresh demos keep their files.
	_, statErr = os.Stat(freshFile)
	assert.NoError(t, statErr)
	got, err = demos.Get(ctx, freshDemo.ID)
	require.NoError(t, err)
	assert.False(t, got.Archived)
}

func TestCleanupHandler_DefaultRetention(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)

	demos := sqlite.NewDemoRepository(database.DB)
	handler := pipeline.CleanupHandler(demos, nil)

	// A zero retention falls back to the default instead of archiving
	// everything.
	require.NoError(t, handler(context.Background(), cleanupJob(t, 0)))
}

func TestUserStatsRefreshHandler(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	ctx := context.Background()

	users := sqlite.NewUserRepository(database.DB)
	userStats := sqlite.NewUserStatsRepository(database.DB)
	user, err := users.Upsert(ctx, "76561198000000051")
	require.NoError(t, err)

	demoID := uuid.NewString()
	_, err = database.ExecContext(ctx, `
INSERT INTO demos (id, user_id, file_path, status, match_result)
VALUES (?, ?, '/tmp/x.dem', 'COMPLETED', 'WIN')`, demoID, user.ID)
	require.NoError(t, err)
	_, err = database.ExecContext(ctx, `
INSERT INTO demo_player_stats (demo_id, steam_id, name, team, is_main_player, kills, deaths,
    assists, headshots, headshot_pct, adr, rating, entry_kills, entry_deaths, trades_given, trades_received)
VALUES (?, ?, 'owner', 2, 1, 20, 10, 5, 8, 40, 85, 1.1, 0, 0, 0, 0)`, demoID, user.SteamID)
	require.NoError(t, err)

	payload, err := json.Marshal(models.UserStatsRefreshPayload{UserID: user.ID})
	require.NoError(t, err)
	job := &models.Job{ID: uuid.NewString(), Type: models.JobTypeUserStatsRefresh, Payload: payload}

	handler := pipeline.UserStatsRefreshHandler(userStats)
	require.NoError(t, handler(ctx, job))

	cached, err := userStats.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalDemos)
	assert.InDelta(t, 1.1, cached.AvgRating, 0.001)
	assert.InDelta(t, 100, cached.WinRate, 0.001)
}

func TestProcessDemoHandler_BadPayload(t *testing.T) {
	handler := pipeline.ProcessDemoHandler(nil)
	err := handler(context.Background(), &models.Job{Payload: []byte("{not json")})
	assert.Error(t, err)
}
