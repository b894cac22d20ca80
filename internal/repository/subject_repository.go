package repository

import (
	"context"
	"time"

	"github.com/vytor/learnflow/internal/models"
)

// SubjectRepository aggregates per-subject activity
type SubjectRepository interface {
	ActivityByProfile(ctx context.Context, profileID string, now time.Time) ([]models.SubjectActivity, error)
}
