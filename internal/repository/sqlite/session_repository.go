package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

type sessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository implementation
func NewSessionRepository(db *sql.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("getting session: id=%s", id)

	var s models.Session
	var mode, status string
	var completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
SELECT id, profile_id, topic_id, mode, status, started_at, completed_at
FROM sessions
WHERE id = ?
`, id).Scan(&s.ID, &s.ProfileID, &s.TopicID, &mode, &status, &s.StartedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.Mode = models.SessionMode(mode)
	s.Status = models.SessionStatus(status)
	s.StartedAt = s.StartedAt.UTC()
	s.CompletedAt = timePtr(completedAt)
	return &s, nil
}

func (r *sessionRepository) Start(ctx context.Context, s models.Session) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("starting session: id=%s, profile_id=%s, topic_id=%s, mode=%s", s.ID, s.ProfileID, s.TopicID, s.Mode)

	status := s.Status
	if status == "" {
		status = models.SessionActive
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, profile_id, topic_id, mode, status, started_at)
VALUES (?, ?, ?, ?, ?, ?)
`, s.ID, s.ProfileID, s.TopicID, string(s.Mode), string(status), utc(s.StartedAt))
	if err != nil {
		log.Error("failed to start session: %v", err)
	}
	return err
}

func (r *sessionRepository) Complete(ctx context.Context, id string, completedAt time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("session_repo")
	log.Debug("completing session: id=%s", id)

	res, err := r.db.ExecContext(ctx, `
UPDATE sessions SET status = ?, completed_at = ?
WHERE id = ? AND status = ?
`, string(models.SessionCompleted), utc(completedAt), id, string(models.SessionActive))
	if err != nil {
		log.Error("failed to complete session: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read affected rows: %v", err)
		return err
	}
	if n == 0 {
		log.Debug("session not active: id=%s", id)
		return repository.ErrSessionNotActive
	}
	return nil
}

func (r *sessionRepository) CountCompletedSessions(ctx context.Context, profileID string) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("session_repo")

	query, args, err := sqlBuilder.Select("COUNT(*)").
		From("sessions").
		Where(squirrel.Eq{"profile_id": profileID, "status": string(models.SessionCompleted)}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Error("failed to count completed sessions: %v", err)
		return 0, err
	}
	log.Debug("profile %s has %d completed sessions", profileID, count)
	return count, nil
}

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new EventRepository implementation
func NewEventRepository(db *sql.DB) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Insert(ctx context.Context, e models.Event) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("event_repo")
	log.Debug("inserting %s event: session_id=%s", e.Kind, e.SessionID)

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `
INSERT INTO session_events (session_id, profile_id, kind, content, created_at)
VALUES (?, ?, ?, ?, ?)
`, e.SessionID, e.ProfileID, string(e.Kind), e.Content, utc(createdAt))
	if err != nil {
		log.Error("failed to insert event: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get event id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *eventRepository) ListRecentAIResponses(ctx context.Context, sessionID, profileID string, limit int) ([]models.Event, error) {
	log := logger.FromContext(ctx).WithPrefix("event_repo")
	log.Debug("listing recent ai responses: session_id=%s, limit=%d", sessionID, limit)

	query := sqlBuilder.Select("id", "session_id", "profile_id", "kind", "content", "created_at").
		From("session_events").
		Where(squirrel.Eq{
			"session_id": sessionID,
			"profile_id": profileID,
			"kind":       string(models.EventAIResponse),
		}).
		OrderBy("id DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query events: %v", err)
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.ProfileID, &kind, &e.Content, &e.CreatedAt); err != nil {
			log.Error("failed to scan event row: %v", err)
			return nil, err
		}
		e.Kind = models.EventKind(kind)
		e.CreatedAt = e.CreatedAt.UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
