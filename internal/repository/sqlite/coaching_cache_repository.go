package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

type coachingCacheRepository struct {
	db *sql.DB
}

// NewCoachingCacheRepository creates a sqlite-backed CoachingCacheRepository
func NewCoachingCacheRepository(db *sql.DB) repository.CoachingCacheRepository {
	return &coachingCacheRepository{db: db}
}

func (r *coachingCacheRepository) GetCache(ctx context.Context, profileID string) (*models.CoachingCardCacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("coaching_cache_repo")
	log.Debug("getting cached card: profile_id=%s", profileID)

	var data string
	e := models.CoachingCardCacheEntry{ProfileID: profileID}
	err := r.db.QueryRowContext(ctx, `
SELECT card_data, expires_at
FROM coaching_card_cache
WHERE profile_id = ?
`, profileID).Scan(&data, &e.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get cached card: %v", err)
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &e.CardData); err != nil {
		log.Error("failed to decode cached card: %v", err)
		return nil, err
	}
	e.ExpiresAt = e.ExpiresAt.UTC()
	return &e, nil
}

func (r *coachingCacheRepository) UpsertCache(ctx context.Context, profileID string, card models.CoachingCard, expiresAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("coaching_cache_repo")
	log.Debug("caching %s card: profile_id=%s", card.Type, profileID)

	data, err := json.Marshal(card)
	if err != nil {
		log.Error("failed to encode card: %v", err)
		return err
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO coaching_card_cache (profile_id, card_data, expires_at)
VALUES (?, ?, ?)
ON CONFLICT(profile_id) DO UPDATE SET
    card_data = excluded.card_data,
    expires_at = excluded.expires_at
`, profileID, string(data), utc(expiresAt))
	if err != nil {
		log.Error("failed to upsert cached card: %v", err)
	}
	return err
}

func (r *coachingCacheRepository) DeleteCache(ctx context.Context, profileID string) error {
	log := logger.FromContext(ctx).WithPrefix("coaching_cache_repo")
	log.Debug("deleting cached card: profile_id=%s", profileID)

	_, err := r.db.ExecContext(ctx, `DELETE FROM coaching_card_cache WHERE profile_id = ?`, profileID)
	if err != nil {
		log.Error("failed to delete cached card: %v", err)
	}
	return err
}
