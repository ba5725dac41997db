package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/demoscope/demoscope/internal/db"
	"github.com/demoscope/demoscope/internal/models"
	"github.com/demoscope/demoscope/internal/repository"
	"github.com/demoscope/demoscope/internal/repository/sqlite"
	"github.com/demoscope/demoscope/internal/testutil"
)

type DemoRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.DemoRepository
}

func (s *DemoRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDemoRepository(s.db.DB)
}

func (s *DemoRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DemoRepositorySuite) insertUser(ctx context.Context) string {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO users (id, steam_id) VALUES (?, ?)`, id, "7656"+id[:8])
	s.Require().NoError(err)
	return id
}

func (s *DemoRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	userID := s.insertUser(ctx)

	demo := models.Demo{
		ID:       uuid.NewString(),
		UserID:   userID,
		FilePath: "/data/demos/match1.dem",
	}
	s.Require().NoError(s.repo.Insert(ctx, demo))

	got, err := s.repo.Get(ctx, demo.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusPending, got.Status)
	s.Assert().Equal("/data/demos/match1.dem", got.FilePath)
	s.Assert().False(got.Archived)
	s.Assert().Nil(got.ProcessingStartedAt)
}

func (s *DemoRepositorySuite) TestGet_NotFound() {
	got, err := s.repo.Get(context.Background(), "missing")
	s.Assert().Error(err)
	s.Assert().Nil(got)
}

func (s *DemoRepositorySuite) TestStatusTransitions() {
	ctx := context.Background()
	userID := s.insertUser(ctx)

	demo := models.Demo{ID: uuid.NewString(), UserID: userID, FilePath: "/tmp/a.dem"}
	s.Require().NoError(s.repo.Insert(ctx, demo))

	started := time.Now().UTC()
	s.Require().NoError(s.repo.MarkProcessing(ctx, demo.ID, started))

	got, err := s.repo.Get(ctx, demo.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusProcessing, got.Status)
	s.Require().NotNil(got.ProcessingStartedAt)

	s.Require().NoError(s.repo.MarkFailed(ctx, demo.ID, "demo file is corrupt"))
	got, err = s.repo.Get(ctx, demo.ID)
	s.Require().NoError(err)
	s.Assert().Equal(models.DemoStatusFailed, got.Status)
	s.Assert().Equal("demo file is corrupt", got.StatusMessage)
	s.Assert().NotNil(got.ProcessingCompletedAt)
	s.Assert().True(got.Status.Terminal())
}

func (s *DemoRepositorySuite) TestListArchivable() {
	ctx := context.Background()
	userID := s.insertUser(ctx)

	old := models.Demo{ID: uuid.NewString(), UserID: userID, FilePath: "/tmp/old.dem"}
	fresh := models.Demo{ID: uuid.NewString(), UserID: userID, FilePath: "/tmp/fresh.dem"}
	failed := models.Demo{ID: uuid.NewString(), UserID: userID, FilePath: "/tmp/failed.dem"}
	s.Require().NoError(s.repo.Insert(ctx, old))
	s.Require().NoError(s.repo.Insert(ctx, fresh))
	s.Require().NoError(s.repo.Insert(ctx, failed))

	_, err := s.db.ExecContext(ctx, `
UPDATE demos SET status = 'COMPLETED', processing_completed_at = ? WHERE id = ?`,
		time.Now().UTC().AddDate(0, 0, -60), old.ID)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(ctx, `
UPDATE demos SET status = 'COMPLETED', processing_completed_at = ? WHERE id = ?`,
		time.Now().UTC(), fresh.ID)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(ctx, `
UPDATE demos SET status = 'FAILED', processing_completed_at = ? WHERE id = ?`,
		time.Now().UTC().AddDate(0, 0, -60), failed.ID)
	s.Require().NoError(err)

	cutoff := time.Now().UTC().AddDate(0, 0, -30)
	archivable, err := s.repo.ListArchivable(ctx, cutoff)
	s.Require().NoError(err)
	s.Require().Len(archivable, 1)
	s.Assert().Equal(old.ID, archivable[0].ID)

	s.Require().NoError(s.repo.Archive(ctx, old.ID))
	archivable, err = s.repo.ListArchivable(ctx, cutoff)
	s.Require().NoError(err)
	s.Assert().Empty(archivable)
}

func TestDemoRepositorySuite(t *testing.T) {
	suite.Run(t, new(DemoRepositorySuite))
}
