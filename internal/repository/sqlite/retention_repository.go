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

type retentionRepository struct {
	db *sql.DB
}

// NewRetentionRepository creates a new RetentionRepository implementation
func NewRetentionRepository(db *sql.DB) repository.RetentionRepository {
	return &retentionRepository{db: db}
}

var retentionColumns = []string{
	"rc.profile_id", "rc.topic_id", "COALESCE(t.subject_id, '')",
	"rc.ease_factor", "rc.interval_days", "rc.repetitions",
	"rc.last_reviewed_at", "rc.next_review_at",
	"rc.failure_count", "rc.consecutive_successes", "rc.xp_status",
	"rc.evaluate_difficulty_rung", "rc.updated_at",
}

func selectCards() squirrel.SelectBuilder {
	return sqlBuilder.Select(retentionColumns...).
		From("retention_cards rc").
		LeftJoin("topics t ON t.id = rc.topic_id")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (models.RetentionCard, error) {
	var c models.RetentionCard
	var lastReviewed, nextReview sql.NullTime
	var rung sql.NullInt64
	var xp string
	err := row.Scan(&c.ProfileID, &c.TopicID, &c.SubjectID,
		&c.EaseFactor, &c.IntervalDays, &c.Repetitions,
		&lastReviewed, &nextReview,
		&c.FailureCount, &c.ConsecutiveSuccesses, &xp,
		&rung, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	c.LastReviewedAt = timePtr(lastReviewed)
	c.NextReviewAt = timePtr(nextReview)
	c.XPStatus = models.XPStatus(xp)
	if !c.XPStatus.IsValid() {
		c.XPStatus = models.XPPending
	}
	if rung.Valid {
		r := int(rung.Int64)
		c.EvaluateDifficultyRung = &r
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

func (r *retentionRepository) GetCard(ctx context.Context, profileID, topicID string) (*models.RetentionCard, error) {
	log := logger.FromContext(ctx).WithPrefix("retention_repo")
	log.Debug("getting retention card: profile_id=%s, topic_id=%s", profileID, topicID)

	query, args, err := selectCards().
		Where(squirrel.Eq{"rc.profile_id": profileID, "rc.topic_id": topicID}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("retention card not found: profile_id=%s, topic_id=%s", profileID, topicID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get retention card: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *retentionRepository) UpsertCard(ctx context.Context, c models.RetentionCard) error {
	log := logger.FromContext(ctx).WithPrefix("retention_repo")
	log.Debug("upserting retention card: profile_id=%s, topic_id=%s, interval=%d, ease=%.2f",
		c.ProfileID, c.TopicID, c.IntervalDays, c.EaseFactor)

	var rung any
	if c.EvaluateDifficultyRung != nil {
		rung = *c.EvaluateDifficultyRung
	}
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO retention_cards (
    profile_id, topic_id, ease_factor, interval_days, repetitions, last_reviewed_at, next_review_at,
    failure_count, consecutive_successes, xp_status, evaluate_difficulty_rung, updated_at
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(profile_id, topic_id) DO UPDATE SET
    ease_factor = excluded.ease_factor,
    interval_days = excluded.interval_days,
    repetitions = excluded.repetitions,
    last_reviewed_at = excluded.last_reviewed_at,
    next_review_at = excluded.next_review_at,
    failure_count = excluded.failure_count,
    consecutive_successes = excluded.consecutive_successes,
    xp_status = excluded.xp_status,
    evaluate_difficulty_rung = excluded.evaluate_difficulty_rung,
    updated_at = excluded.updated_at
`, c.ProfileID, c.TopicID, c.EaseFactor, c.IntervalDays, c.Repetitions,
		nullableTime(c.LastReviewedAt), nullableTime(c.NextReviewAt),
		c.FailureCount, c.ConsecutiveSuccesses, string(c.XPStatus), rung, utc(updatedAt))
	if err != nil {
		log.Error("failed to upsert retention card: %v", err)
	}
	return err
}

func (r *retentionRepository) ListCards(ctx context.Context, profileID string) ([]models.RetentionCard, error) {
	log := logger.FromContext(ctx).WithPrefix("retention_repo")
	log.Debug("listing retention cards: profile_id=%s", profileID)

	query := selectCards().
		Where(squirrel.Eq{"rc.profile_id": profileID}).
		OrderBy("rc.updated_at ASC", "rc.topic_id ASC")
	return r.query(ctx, query)
}

func (r *retentionRepository) ListDue(ctx context.Context, profileID string, now time.Time, limit int) ([]models.RetentionCard, error) {
	log := logger.FromContext(ctx).WithPrefix("retention_repo")
	log.Debug("listing due retention cards: profile_id=%s, limit=%d", profileID, limit)

	query := selectCards().
		Where(squirrel.Eq{"rc.profile_id": profileID}).
		Where(squirrel.NotEq{"rc.next_review_at": nil}).
		Where(squirrel.LtOrEq{"rc.next_review_at": utc(now)}).
		OrderBy("rc.next_review_at ASC", "rc.topic_id ASC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	return r.query(ctx, query)
}

func (r *retentionRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.RetentionCard, error) {
	log := logger.FromContext(ctx).WithPrefix("retention_repo")

	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query retention cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.RetentionCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan retention card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d retention cards", len(cards))
	return cards, rows.Err()
}
