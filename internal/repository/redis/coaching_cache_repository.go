// Package redis stores coaching cards in Redis, letting key expiry enforce
// the card TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

const keyPrefix = "coaching_card:"

type coachingCacheRepository struct {
	client goredis.Cmdable
	now    func() time.Time
}

// NewCoachingCacheRepository creates a Redis-backed CoachingCacheRepository
func NewCoachingCacheRepository(client goredis.Cmdable) repository.CoachingCacheRepository {
	return &coachingCacheRepository{client: client, now: time.Now}
}

// NewClient builds a client and checks the server is reachable.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func key(profileID string) string {
	return keyPrefix + profileID
}

func (r *coachingCacheRepository) GetCache(ctx context.Context, profileID string) (*models.CoachingCardCacheEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("coaching_cache_redis")

	data, err := r.client.Get(ctx, key(profileID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get cached card: %v", err)
		return nil, err
	}

	var e models.CoachingCardCacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		log.Error("failed to decode cached card: %v", err)
		return nil, err
	}
	return &e, nil
}

func (r *coachingCacheRepository) UpsertCache(ctx context.Context, profileID string, card models.CoachingCard, expiresAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("coaching_cache_redis")

	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		log.Debug("card already expired, dropping: profile_id=%s", profileID)
		return r.DeleteCache(ctx, profileID)
	}

	data, err := json.Marshal(models.CoachingCardCacheEntry{
		ProfileID: profileID,
		CardData:  card,
		ExpiresAt: expiresAt.UTC(),
	})
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, key(profileID), data, ttl).Err(); err != nil {
		log.Error("failed to cache card: %v", err)
		return err
	}
	log.Debug("cached %s card: profile_id=%s, ttl=%s", card.Type, profileID, ttl)
	return nil
}

func (r *coachingCacheRepository) DeleteCache(ctx context.Context, profileID string) error {
	return r.client.Del(ctx, key(profileID)).Err()
}
