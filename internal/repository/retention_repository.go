package repository

import (
	"context"
	"time"

	"github.com/vytor/learnflow/internal/models"
)

// RetentionRepository handles retention card data access
type RetentionRepository interface {
	// GetCard returns nil, nil when the profile has never studied the topic.
	GetCard(ctx context.Context, profileID, topicID string) (*models.RetentionCard, error)
	UpsertCard(ctx context.Context, card models.RetentionCard) error
	ListCards(ctx context.Context, profileID string) ([]models.RetentionCard, error)
	ListDue(ctx context.Context, profileID string, now time.Time, limit int) ([]models.RetentionCard, error)
}
