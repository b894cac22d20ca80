package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/learnflow/internal/models"
)

// MockStreakRepository is a mock implementation of repository.StreakRepository
type MockStreakRepository struct {
	mock.Mock
}

func (m *MockStreakRepository) GetStreak(ctx context.Context, profileID string) (*models.StreakState, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StreakState), args.Error(1)
}

func (m *MockStreakRepository) UpsertStreak(ctx context.Context, state models.StreakState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}
