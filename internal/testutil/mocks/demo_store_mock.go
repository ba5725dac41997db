package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/demoscope/demoscope/internal/repository"
)

// MockDemoStore is a mock implementation of repository.DemoStore
type MockDemoStore struct {
	mock.Mock
}

func (m *MockDemoStore) SaveProcessedDemo(ctx context.Context, p repository.ProcessedDemo) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
