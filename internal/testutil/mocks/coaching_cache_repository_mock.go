package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/learnflow/internal/models"
)

// MockCoachingCacheRepository is a mock implementation of repository.CoachingCacheRepository
type MockCoachingCacheRepository struct {
	mock.Mock
}

func (m *MockCoachingCacheRepository) GetCache(ctx context.Context, profileID string) (*models.CoachingCardCacheEntry, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CoachingCardCacheEntry), args.Error(1)
}

func (m *MockCoachingCacheRepository) UpsertCache(ctx context.Context, profileID string, card models.CoachingCard, expiresAt time.Time) error {
	args := m.Called(ctx, profileID, card, expiresAt)
	return args.Error(0)
}

func (m *MockCoachingCacheRepository) DeleteCache(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}
