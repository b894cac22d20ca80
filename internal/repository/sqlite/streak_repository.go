package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

type streakRepository struct {
	db *sql.DB
}

// NewStreakRepository creates a new StreakRepository implementation
func NewStreakRepository(db *sql.DB) repository.StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) GetStreak(ctx context.Context, profileID string) (*models.StreakState, error) {
	log := logger.FromContext(ctx).WithPrefix("streak_repo")
	log.Debug("getting streak: profile_id=%s", profileID)

	var s models.StreakState
	var lastActivity, graceStart sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT profile_id, current_streak, longest_streak, last_activity_date, grace_period_start_date, updated_at
FROM streaks
WHERE profile_id = ?
`, profileID).Scan(&s.ProfileID, &s.CurrentStreak, &s.LongestStreak, &lastActivity, &graceStart, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("streak not found: profile_id=%s", profileID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get streak: %v", err)
		return nil, err
	}
	s.LastActivity = stringPtr(lastActivity)
	s.GracePeriodStart = stringPtr(graceStart)
	s.UpdatedAt = s.UpdatedAt.UTC()
	return &s, nil
}

func (r *streakRepository) UpsertStreak(ctx context.Context, s models.StreakState) error {
	log := logger.FromContext(ctx).WithPrefix("streak_repo")
	log.Debug("upserting streak: profile_id=%s, current=%d, longest=%d", s.ProfileID, s.CurrentStreak, s.LongestStreak)

	updatedAt := s.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO streaks (profile_id, current_streak, longest_streak, last_activity_date, grace_period_start_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(profile_id) DO UPDATE SET
    current_streak = excluded.current_streak,
    longest_streak = excluded.longest_streak,
    last_activity_date = excluded.last_activity_date,
    grace_period_start_date = excluded.grace_period_start_date,
    updated_at = excluded.updated_at
`, s.ProfileID, s.CurrentStreak, s.LongestStreak, nullableString(s.LastActivity), nullableString(s.GracePeriodStart), utc(updatedAt))
	if err != nil {
		log.Error("failed to upsert streak: %v", err)
	}
	return err
}
