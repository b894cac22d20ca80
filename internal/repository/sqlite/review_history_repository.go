package sqlite

import (
	"context"
	"database/sql"

	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

type reviewHistoryRepository struct {
	db *sql.DB
}

// NewReviewHistoryRepository creates a new ReviewHistoryRepository implementation
func NewReviewHistoryRepository(db *sql.DB) repository.ReviewHistoryRepository {
	return &reviewHistoryRepository{db: db}
}

func (r *reviewHistoryRepository) Insert(ctx context.Context, h models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("review_history_repo")
	log.Debug("inserting review history: profile_id=%s, topic_id=%s, quality=%.1f", h.ProfileID, h.TopicID, h.Quality)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_history (profile_id, topic_id, session_id, mode, quality, successful, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, h.ProfileID, h.TopicID, h.SessionID, string(h.Mode), h.Quality, h.Successful, utc(h.ReviewedAt))
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}
