package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.Queue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueProcessDemo(ctx context.Context, demoID, userID, filePath string) (string, error) {
	args := m.Called(ctx, demoID, userID, filePath)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) EnqueueUserStatsRefresh(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockJobQueue) EnqueueCleanup(ctx context.Context, olderThanDays int) (string, error) {
	args := m.Called(ctx, olderThanDays)
	return args.String(0), args.Error(1)
}
