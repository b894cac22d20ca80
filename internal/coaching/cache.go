package coaching

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/metrics"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

// DefaultColdStartSessions is the number of completed sessions a profile
// needs before it gets computed cards.
const DefaultColdStartSessions = 5

// FallbackAction is a fixed suggestion shown to profiles that are still
// cold.
type FallbackAction struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var fallbackActions = []FallbackAction{
	{ID: "start_lesson", Label: "Start a new lesson"},
	{ID: "explore_subjects", Label: "Explore your subjects"},
	{ID: "quick_review", Label: "Do a quick review"},
}

// Result is what the home screen receives. Card is nil exactly when
// ColdStart is true.
type Result struct {
	ColdStart bool                 `json:"cold_start"`
	Card      *models.CoachingCard `json:"card"`
	Fallback  []FallbackAction     `json:"fallback,omitempty"`
}

// Cache serves coaching cards from a per-profile store and recomputes them
// on miss. Concurrent misses for the same profile may both compute; the
// store's upsert keeps the last write.
type Cache struct {
	sessions  repository.SessionRepository
	retention repository.RetentionRepository
	streaks   repository.StreakRepository
	store     repository.CoachingCacheRepository

	ttl               time.Duration
	coldStartSessions int
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long a computed card is served before recomputing.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithColdStartSessions sets the completed-session threshold for warm profiles.
func WithColdStartSessions(n int) Option {
	return func(c *Cache) {
		if n >= 0 {
			c.coldStartSessions = n
		}
	}
}

// NewCache creates a coaching card cache.
func NewCache(
	sessions repository.SessionRepository,
	retention repository.RetentionRepository,
	streaks repository.StreakRepository,
	store repository.CoachingCacheRepository,
	opts ...Option,
) *Cache {
	c := &Cache{
		sessions:          sessions,
		retention:         retention,
		streaks:           streaks,
		store:             store,
		ttl:               CardTTL,
		coldStartSessions: DefaultColdStartSessions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the coaching card for profileID at now.
func (c *Cache) Get(ctx context.Context, profileID string, now time.Time) (Result, error) {
	log := logger.FromContext(ctx).WithPrefix("coaching_cache")

	completed, err := c.sessions.CountCompletedSessions(ctx, profileID)
	if err != nil {
		return Result{}, fmt.Errorf("count completed sessions: %w", err)
	}
	if completed < c.coldStartSessions {
		log.Debug("cold start: profile_id=%s, completed=%d", profileID, completed)
		metrics.CoachingColdStarts.Inc()
		return ColdStart(), nil
	}

	entry, err := c.store.GetCache(ctx, profileID)
	if err != nil {
		log.Warn("cache read failed, recomputing: profile_id=%s, err=%v", profileID, err)
		entry = nil
	}
	if entry != nil && entry.ExpiresAt.After(now) {
		log.Debug("cache hit: profile_id=%s", profileID)
		metrics.CoachingCacheHits.Inc()
		card := entry.CardData
		return Result{Card: &card}, nil
	}
	metrics.CoachingCacheMisses.Inc()

	cards, err := c.retention.ListCards(ctx, profileID)
	if err != nil {
		return Result{}, fmt.Errorf("list retention cards: %w", err)
	}
	st, err := c.streaks.GetStreak(ctx, profileID)
	if err != nil {
		return Result{}, fmt.Errorf("get streak: %w", err)
	}

	card := Select(profileID, cards, st, now)
	expiresAt := now.Add(c.ttl)
	card.ExpiresAt = &expiresAt

	if err := c.store.UpsertCache(ctx, profileID, card, expiresAt); err != nil {
		log.Warn("cache write failed: profile_id=%s, err=%v", profileID, err)
	}
	log.Debug("cache miss, selected %s card: profile_id=%s, priority=%d", card.Type, profileID, card.Priority)
	return Result{Card: &card}, nil
}

// Invalidate drops the cached card so the next Get recomputes it.
func (c *Cache) Invalidate(ctx context.Context, profileID string) error {
	return c.store.DeleteCache(ctx, profileID)
}

// ColdStart returns the fixed result for profiles without enough history.
func ColdStart() Result {
	fallback := make([]FallbackAction, len(fallbackActions))
	copy(fallback, fallbackActions)
	return Result{ColdStart: true, Fallback: fallback}
}
