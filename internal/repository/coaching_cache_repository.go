package repository

import (
	"context"
	"time"

	"github.com/vytor/learnflow/internal/models"
)

// CoachingCacheRepository stores at most one coaching card per profile.
// UpsertCache replaces any existing entry.
type CoachingCacheRepository interface {
	GetCache(ctx context.Context, profileID string) (*models.CoachingCardCacheEntry, error)
	UpsertCache(ctx context.Context, profileID string, card models.CoachingCard, expiresAt time.Time) error
	DeleteCache(ctx context.Context, profileID string) error
}
