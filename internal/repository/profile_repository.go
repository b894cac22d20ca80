package repository

import (
	"context"

	"github.com/vytor/learnflow/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context) ([]models.Profile, error)
	Create(ctx context.Context, p models.Profile) error
	Delete(ctx context.Context, id string) error
}
