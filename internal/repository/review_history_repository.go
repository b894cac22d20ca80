package repository

import (
	"context"

	"github.com/vytor/learnflow/internal/models"
)

// ReviewHistoryRepository records scheduling decisions
type ReviewHistoryRepository interface {
	Insert(ctx context.Context, h models.ReviewHistory) error
}
