package repository

import (
	"context"

	"github.com/vytor/learnflow/internal/models"
)

// StreakRepository handles streak data access
type StreakRepository interface {
	GetStreak(ctx context.Context, profileID string) (*models.StreakState, error)
	UpsertStreak(ctx context.Context, state models.StreakState) error
}
