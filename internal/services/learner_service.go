package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/learnflow/internal/errors"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
	"github.com/vytor/learnflow/internal/streak"
	"github.com/vytor/learnflow/internal/urgency"
	"github.com/vytor/learnflow/internal/verification"
)

const (
	DefaultDueLimit = 20
	MaxDueLimit     = 100
)

// LearnerService answers read-only questions about a learner's progress
type LearnerService interface {
	Streak(ctx context.Context, profileID string) (*streak.View, error)
	SubjectUrgency(ctx context.Context, profileID string) ([]urgency.Ranked, error)
	DueCards(ctx context.Context, profileID string, limit int) ([]models.RetentionCard, error)
	Verification(ctx context.Context, profileID, topicID string) (*verification.Eligibility, error)
}

type learnerService struct {
	retention repository.RetentionRepository
	streaks   repository.StreakRepository
	subjects  repository.SubjectRepository
	now       func() time.Time
}

// NewLearnerService creates a new LearnerService
func NewLearnerService(
	retentionRepo repository.RetentionRepository,
	streaks repository.StreakRepository,
	subjects repository.SubjectRepository,
	now func() time.Time,
) LearnerService {
	if now == nil {
		now = time.Now
	}
	return &learnerService{retention: retentionRepo, streaks: streaks, subjects: subjects, now: now}
}

func (s *learnerService) Streak(ctx context.Context, profileID string) (*streak.View, error) {
	log := logger.FromContext(ctx)

	st, err := s.streaks.GetStreak(ctx, profileID)
	if err != nil {
		log.Error("failed to get streak: %v", err)
		return nil, errors.NewInternalError(err)
	}
	v := streak.Display(st, streak.Today(s.now()))
	return &v, nil
}

func (s *learnerService) SubjectUrgency(ctx context.Context, profileID string) ([]urgency.Ranked, error) {
	log := logger.FromContext(ctx)

	activity, err := s.subjects.ActivityByProfile(ctx, profileID, s.now().UTC())
	if err != nil {
		log.Error("failed to aggregate subject activity: %v", err)
		return nil, errors.NewInternalError(err)
	}
	ranked := urgency.Rank(activity)
	log.Debug("ranked %d subjects for profile %s", len(ranked), profileID)
	return ranked, nil
}

func (s *learnerService) DueCards(ctx context.Context, profileID string, limit int) ([]models.RetentionCard, error) {
	log := logger.FromContext(ctx)

	switch {
	case limit < 0:
		return nil, errors.NewValidationError("limit", "must not be negative")
	case limit == 0:
		limit = DefaultDueLimit
	case limit > MaxDueLimit:
		limit = MaxDueLimit
	}

	cards, err := s.retention.ListDue(ctx, profileID, s.now().UTC(), limit)
	if err != nil {
		log.Error("failed to list due cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if cards == nil {
		cards = []models.RetentionCard{}
	}
	return cards, nil
}

func (s *learnerService) Verification(ctx context.Context, profileID, topicID string) (*verification.Eligibility, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(topicID) == "" {
		return nil, errors.NewValidationError("topicId", "cannot be empty")
	}
	card, err := s.retention.GetCard(ctx, profileID, topicID)
	if err != nil {
		log.Error("failed to load retention card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	e := verification.Check(topicID, card)
	return &e, nil
}
