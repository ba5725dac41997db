package jobs_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demoscope/demoscope/internal/jobs"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository/sqlite"
	"github.com/demoscope/demoscope/internal/testutil"
)

func TestDurableQueueEnqueueProcessDemo(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	repo := sqlite.NewJobRepository(database.DB)
	queue := jobs.NewDurableQueue(repo, 3)

	ctx := context.Background()
	id, err := queue.EnqueueProcessDemo(ctx, "demo-1", "user-1", "/tmp/demo.dem")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	job, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeProcessDemo, job.Type)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, 3, job.MaxRetries)

	var payload models.ProcessDemoPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "demo-1", payload.DemoID)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "/tmp/demo.dem", payload.FilePath)
}

func TestDurableQueueEnqueueUserStatsRefresh(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	repo := sqlite.NewJobRepository(database.DB)
	queue := jobs.NewDurableQueue(repo, 3)

	ctx := context.Background()
	id, err := queue.EnqueueUserStatsRefresh(ctx, "user-9")
	require.NoError(t, err)

	job, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeUserStatsRefresh, job.Type)

	var payload models.UserStatsRefreshPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, "user-9", payload.UserID)
}

func TestDurableQueueEnqueueCleanup(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	repo := sqlite.NewJobRepository(database.DB)
	queue := jobs.NewDurableQueue(repo, 3)

	ctx := context.Background()
	id, err := queue.EnqueueCleanup(ctx, 30)
	require.NoError(t, err)

	job, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.JobTypeCleanup, job.Type)
	assert.True(t, job.RunAt.Before(time.Now().UTC().Add(time.Second)))

	var payload models.CleanupPayload
	require.NoError(t, json.Unmarshal(job.Payload, &payload))
	assert.Equal(t, 30, payload.OlderThanDays)
}
