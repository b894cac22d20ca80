package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/learnflow/internal/models"
)

// MockRetentionRepository is a mock implementation of repository.RetentionRepository
type MockRetentionRepository struct {
	mock.Mock
}

func (m *MockRetentionRepository) GetCard(ctx context.Context, profileID, topicID string) (*models.RetentionCard, error) {
	args := m.Called(ctx, profileID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RetentionCard), args.Error(1)
}

func (m *MockRetentionRepository) UpsertCard(ctx context.Context, card models.RetentionCard) error {
	args := m.Called(ctx, card)
	return args.Error(0)
}

func (m *MockRetentionRepository) ListCards(ctx context.Context, profileID string) ([]models.RetentionCard, error) {
	args := m.Called(ctx, profileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RetentionCard), args.Error(1)
}

func (m *MockRetentionRepository) ListDue(ctx context.Context, profileID string, now time.Time, limit int) ([]models.RetentionCard, error) {
	args := m.Called(ctx, profileID, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RetentionCard), args.Error(1)
}
