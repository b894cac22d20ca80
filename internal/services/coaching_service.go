package services

import (
	"context"
	"time"

	"github.com/vytor/learnflow/internal/coaching"
	"github.com/vytor/learnflow/internal/errors"
	"github.com/vytor/learnflow/internal/logger"
)

// CoachingService serves the home-screen coaching card
type CoachingService interface {
	CoachingCard(ctx context.Context, profileID string) (*coaching.Result, error)
}

// CardSource is satisfied by *coaching.Cache.
type CardSource interface {
	Get(ctx context.Context, profileID string, now time.Time) (coaching.Result, error)
}

type coachingService struct {
	cards CardSource
	now   func() time.Time
}

// NewCoachingService creates a new CoachingService
func NewCoachingService(cards CardSource, now func() time.Time) CoachingService {
	if now == nil {
		now = time.Now
	}
	return &coachingService{cards: cards, now: now}
}

func (s *coachingService) CoachingCard(ctx context.Context, profileID string) (*coaching.Result, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting coaching card: profile_id=%s", profileID)

	res, err := s.cards.Get(ctx, profileID, s.now().UTC())
	if err != nil {
		log.Error("failed to get coaching card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &res, nil
}
