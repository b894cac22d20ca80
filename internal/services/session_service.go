package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/learnflow/internal/errors"
	"github.com/vytor/learnflow/internal/llm"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/metrics"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
	"github.com/vytor/learnflow/internal/retention"
	"github.com/vytor/learnflow/internal/streak"
	"github.com/vytor/learnflow/internal/verification"
)

// Outcome of a completed session.
type Outcome string

const (
	OutcomeReviewed     Outcome = "reviewed"
	OutcomePassed       Outcome = "passed"
	OutcomeFailed       Outcome = "failed"
	OutcomeNoAssessment Outcome = "no_assessment"
)

// VerifiedRepetitions is the repetition count a topic needs before a passed
// evaluate or teach-back session verifies its XP.
const VerifiedRepetitions = 3

// DefaultAssessmentEventLimit is how many recent model responses are
// searched for an assessment.
const DefaultAssessmentEventLimit = 5

// CardInvalidator drops a profile's cached coaching card.
type CardInvalidator interface {
	Invalidate(ctx context.Context, profileID string) error
}

// CompletionResult describes what completing a session changed.
type CompletionResult struct {
	Session       models.Session           `json:"session"`
	EffectiveMode models.SessionMode       `json:"effective_mode"`
	Outcome       Outcome                  `json:"outcome"`
	Quality       *float64                 `json:"quality,omitempty"`
	WasSuccessful bool                     `json:"was_successful"`
	Card          models.RetentionCard     `json:"card"`
	Escalation    *verification.Escalation `json:"escalation,omitempty"`
	Streak        streak.View              `json:"streak"`
	StreakBroken  bool                     `json:"streak_broken"`
	Message       string                   `json:"message,omitempty"`
}

// SessionService handles learning sessions
type SessionService interface {
	StartSession(ctx context.Context, profileID, topicID string, mode models.SessionMode) (*models.Session, error)
	AppendEvent(ctx context.Context, profileID, sessionID string, kind models.EventKind, content string) (*models.Event, error)
	Exchange(ctx context.Context, profileID, sessionID string, messages []llm.Message) (*models.Event, error)
	CompleteSession(ctx context.Context, profileID, sessionID string, quality *float64) (*CompletionResult, error)
}

// SessionConfig tunes a SessionService.
type SessionConfig struct {
	AssessmentEventLimit int
	Now                  func() time.Time
}

type sessionService struct {
	sessions  repository.SessionRepository
	events    repository.EventRepository
	retention repository.RetentionRepository
	history   repository.ReviewHistoryRepository
	streaks   repository.StreakRepository
	cache     CardInvalidator
	chatter   llm.Chatter

	eventLimit int
	now        func() time.Time
}

// NewSessionService creates a new SessionService. chatter may be nil, in
// which case Exchange reports the model as unavailable.
func NewSessionService(
	sessions repository.SessionRepository,
	events repository.EventRepository,
	retentionRepo repository.RetentionRepository,
	history repository.ReviewHistoryRepository,
	streaks repository.StreakRepository,
	cache CardInvalidator,
	chatter llm.Chatter,
	cfg SessionConfig,
) SessionService {
	s := &sessionService{
		sessions:   sessions,
		events:     events,
		retention:  retentionRepo,
		history:    history,
		streaks:    streaks,
		cache:      cache,
		chatter:    chatter,
		eventLimit: cfg.AssessmentEventLimit,
		now:        cfg.Now,
	}
	if s.eventLimit <= 0 {
		s.eventLimit = DefaultAssessmentEventLimit
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *sessionService) StartSession(ctx context.Context, profileID, topicID string, mode models.SessionMode) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_service")
	log.Debug("starting session: profile_id=%s, topic_id=%s, mode=%s", profileID, topicID, mode)

	if strings.TrimSpace(topicID) == "" {
		return nil, errors.NewValidationError("topicId", "cannot be empty")
	}
	if _, err := models.ParseSessionMode(string(mode)); err != nil {
		return nil, errors.NewValidationError("mode", err.Error())
	}

	if mode != models.ModeReview {
		card, err := s.retention.GetCard(ctx, profileID, topicID)
		if err != nil {
			log.Error("failed to load retention card: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if !eligible(mode, card) {
			log.Info("topic %s not eligible for %s, starting a review instead", topicID, mode)
			mode = models.ModeReview
		}
	}

	sess := models.Session{
		ID:        uuid.NewString(),
		ProfileID: profileID,
		TopicID:   topicID,
		Mode:      mode,
		Status:    models.SessionActive,
		StartedAt: s.now().UTC(),
	}
	if err := s.sessions.Start(ctx, sess); err != nil {
		log.Error("failed to start session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &sess, nil
}

func eligible(mode models.SessionMode, card *models.RetentionCard) bool {
	if card == nil {
		return false
	}
	switch mode {
	case models.ModeEvaluate:
		return verification.CanEvaluate(*card)
	case models.ModeTeachBack:
		return verification.CanTeachBack(*card)
	}
	return true
}

// activeSession loads a session owned by profileID that can still take events.
func (s *sessionService) activeSession(ctx context.Context, profileID, sessionID string) (*models.Session, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if sess == nil || sess.ProfileID != profileID {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	if sess.Status == models.SessionCompleted {
		return nil, errors.NewConflictError(fmt.Sprintf("session %s is already completed", sessionID))
	}
	return sess, nil
}

func (s *sessionService) AppendEvent(ctx context.Context, profileID, sessionID string, kind models.EventKind, content string) (*models.Event, error) {
	log := logger.FromContext(ctx).WithPrefix("session_service")

	if kind != models.EventUserMessage && kind != models.EventAIResponse {
		return nil, errors.NewValidationError("kind", fmt.Sprintf("unknown event kind %q", kind))
	}
	if _, err := s.activeSession(ctx, profileID, sessionID); err != nil {
		return nil, err
	}

	ev := models.Event{
		SessionID: sessionID,
		ProfileID: profileID,
		Kind:      kind,
		Content:   content,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.events.Insert(ctx, ev)
	if err != nil {
		log.Error("failed to insert event: %v", err)
		return nil, errors.NewInternalError(err)
	}
	ev.ID = id
	return &ev, nil
}

// Exchange relays a conversation to the model and logs the last user
// message and the reply as session events.
func (s *sessionService) Exchange(ctx context.Context, profileID, sessionID string, messages []llm.Message) (*models.Event, error) {
	log := logger.FromContext(ctx).WithPrefix("session_service")

	if len(messages) == 0 {
		return nil, errors.NewValidationError("messages", "cannot be empty")
	}
	if _, err := s.activeSession(ctx, profileID, sessionID); err != nil {
		return nil, err
	}
	if s.chatter == nil {
		return nil, errors.NewUpstreamError("language model", fmt.Errorf("not configured"))
	}

	if last := messages[len(messages)-1]; last.Role == llm.RoleUser {
		if _, err := s.AppendEvent(ctx, profileID, sessionID, models.EventUserMessage, last.Content); err != nil {
			return nil, err
		}
	}

	reply, err := s.chatter.Chat(ctx, messages)
	if err != nil {
		log.Warn("chat failed: session_id=%s, err=%v", sessionID, err)
		return nil, errors.NewUpstreamError("language model", err)
	}
	return s.AppendEvent(ctx, profileID, sessionID, models.EventAIResponse, reply)
}

func (s *sessionService) CompleteSession(ctx context.Context, profileID, sessionID string, quality *float64) (*CompletionResult, error) {
	log := logger.FromContext(ctx).WithPrefix("session_service")
	log.Debug("completing session: profile_id=%s, session_id=%s", profileID, sessionID)

	sess, err := s.activeSession(ctx, profileID, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	stored, err := s.retention.GetCard(ctx, profileID, sess.TopicID)
	if err != nil {
		log.Error("failed to load retention card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	card := retention.NewCard(profileID, sess.TopicID)
	if stored != nil {
		card = *stored
	}

	res := &CompletionResult{Session: *sess, EffectiveMode: sess.Mode}

	var q float64
	challengePassed := false
	switch sess.Mode {
	case models.ModeReview:
		if quality == nil {
			return nil, errors.NewValidationError("quality", "required for review sessions")
		}
		q = *quality
		res.Outcome = OutcomeReviewed

	case models.ModeEvaluate:
		if !verification.CanEvaluate(card) {
			if quality == nil {
				return nil, errors.NewValidationError("quality", "topic is not eligible for evaluate, a review quality is required")
			}
			res.EffectiveMode, res.Outcome, q = models.ModeReview, OutcomeReviewed, *quality
			break
		}
		a := verification.LatestEvaluateAssessment(s.recentResponses(ctx, sess))
		if a == nil {
			res.Outcome = OutcomeNoAssessment
			break
		}
		q = float64(verification.EvaluateQuality(a.ChallengePassed, a.Quality))
		if a.ChallengePassed {
			challengePassed = true
			res.Outcome = OutcomePassed
			rung := verification.AdvanceRung(card.EvaluateDifficultyRung)
			card.EvaluateDifficultyRung = &rung
			card.FailureCount = 0
		} else {
			res.Outcome = OutcomeFailed
			card.FailureCount++
			esc := verification.Escalate(card.FailureCount, card.Rung())
			rung := esc.NewRung
			card.EvaluateDifficultyRung = &rung
			if esc.Action == verification.ActionExitToStandard {
				card.FailureCount = 0
			}
			res.Escalation = &esc
			metrics.Escalations.WithLabelValues(string(esc.Action)).Inc()
		}

	case models.ModeTeachBack:
		if !verification.CanTeachBack(card) {
			if quality == nil {
				return nil, errors.NewValidationError("quality", "topic is not eligible for teach-back, a review quality is required")
			}
			res.EffectiveMode, res.Outcome, q = models.ModeReview, OutcomeReviewed, *quality
			break
		}
		a := verification.LatestTeachBackAssessment(s.recentResponses(ctx, sess))
		if a == nil {
			res.Outcome = OutcomeNoAssessment
			break
		}
		q = float64(verification.TeachBackQuality(*a))
		if q >= retention.PassingQuality {
			challengePassed = true
			res.Outcome = OutcomePassed
		} else {
			res.Outcome = OutcomeFailed
		}

	default:
		return nil, errors.NewContractError(fmt.Errorf("unknown session mode %q", sess.Mode))
	}

	// Only the caller that moves the session out of active may reschedule.
	if err := s.sessions.Complete(ctx, sess.ID, now); err != nil {
		if stderrors.Is(err, repository.ErrSessionNotActive) {
			return nil, errors.NewConflictError(fmt.Sprintf("session %s is already completed", sess.ID))
		}
		log.Error("failed to mark session completed: %v", err)
		return nil, errors.NewInternalError(err)
	}
	res.Session.Status = models.SessionCompleted
	res.Session.CompletedAt = &now

	if res.Outcome != OutcomeNoAssessment {
		card = s.schedule(card, res.EffectiveMode, q, challengePassed, now, res)
		if err := s.retention.UpsertCard(ctx, card); err != nil {
			log.Error("failed to persist retention card: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if err := s.history.Insert(ctx, models.ReviewHistory{
			ProfileID:  profileID,
			TopicID:    sess.TopicID,
			SessionID:  sess.ID,
			Mode:       res.EffectiveMode,
			Quality:    q,
			Successful: res.WasSuccessful,
			ReviewedAt: now,
		}); err != nil {
			log.Warn("failed to store review history: %v", err)
		}
		qq := q
		res.Quality = &qq
	}
	res.Card = card

	if err := s.recordStreak(ctx, profileID, now, res); err != nil {
		return nil, err
	}

	if err := s.cache.Invalidate(ctx, profileID); err != nil {
		log.Warn("failed to invalidate coaching card: %v", err)
	}

	metrics.SessionsCompleted.WithLabelValues(string(res.EffectiveMode), string(res.Outcome)).Inc()
	log.Info("session completed: session_id=%s, mode=%s, outcome=%s", sess.ID, res.EffectiveMode, res.Outcome)
	return res, nil
}

// schedule applies the review to card and updates its success counters and
// XP status.
func (s *sessionService) schedule(card models.RetentionCard, mode models.SessionMode, q float64, challengePassed bool, now time.Time, res *CompletionResult) models.RetentionCard {
	updated, ok := retention.ApplyToCard(card, q, now)
	res.WasSuccessful = ok

	if ok {
		updated.ConsecutiveSuccesses++
	} else {
		updated.ConsecutiveSuccesses = 0
	}
	// Evaluate sessions track challenge failures themselves.
	if mode != models.ModeEvaluate {
		if ok {
			updated.FailureCount = 0
		} else {
			updated.FailureCount++
		}
	}

	switch {
	case ok && challengePassed && updated.Repetitions >= VerifiedRepetitions:
		updated.XPStatus = models.XPVerified
	case !ok && card.XPStatus == models.XPVerified:
		updated.XPStatus = models.XPDecayed
	}
	return updated
}

// recentResponses returns the session's latest model responses, newest
// first. A read failure yields none.
func (s *sessionService) recentResponses(ctx context.Context, sess *models.Session) []models.Event {
	events, err := s.events.ListRecentAIResponses(ctx, sess.ID, sess.ProfileID, s.eventLimit)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("session_service").Warn("failed to read session events: %v", err)
		return nil
	}
	return events
}

func (s *sessionService) recordStreak(ctx context.Context, profileID string, now time.Time, res *CompletionResult) error {
	log := logger.FromContext(ctx).WithPrefix("session_service")
	today := streak.Today(now)

	prior, err := s.streaks.GetStreak(ctx, profileID)
	if err != nil {
		log.Error("failed to load streak: %v", err)
		return errors.NewInternalError(err)
	}

	upd := streak.Record(profileID, prior, today)
	if upd.Changed {
		upd.State.UpdatedAt = now
		if err := s.streaks.UpsertStreak(ctx, upd.State); err != nil {
			log.Error("failed to persist streak: %v", err)
			return errors.NewInternalError(err)
		}
	}
	res.Streak = streak.Display(&upd.State, today)
	res.StreakBroken = upd.StreakBroken
	res.Message = upd.Message
	return nil
}
