package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/demoscope/demoscope/internal/models"
)

// MockDemoRepository is a mock implementation of repository.DemoRepository
type MockDemoRepository struct {
	mock.Mock
}

func (m *MockDemoRepository) Get(ctx context.Context, id string) (*models.Demo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Demo), args.Error(1)
}

func (m *MockDemoRepository) Insert(ctx context.Context, demo models.Demo) error {
	args := m.Called(ctx, demo)
	return args.Error(0)
}

func (m *MockDemoRepository) UpdateStatus(ctx context.Context, id string, status models.DemoStatus, message string) error {
	args := m.Called(ctx, id, status, message)
	return args.Error(0)
}

func (m *MockDemoRepository) MarkProcessing(ctx context.Context, id string, startedAt time.Time) error {
	args := m.Called(ctx, id, startedAt)
	return args.Error(0)
}

func (m *MockDemoRepository) MarkFailed(ctx context.Context, id string, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockDemoRepository) ListArchivable(ctx context.Context, completedBefore time.Time) ([]models.Demo, error) {
	args := m.Called(ctx, completedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Demo), args.Error(1)
}

func (m *MockDemoRepository) Archive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
