package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"
	"github.com/vytor/learnflow/internal/logger"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/repository"
)

// WeakEaseFactor is the ease below which a topic counts as weak.
const WeakEaseFactor = 2.0

type subjectRepository struct {
	db *sql.DB
}

// NewSubjectRepository creates a new SubjectRepository implementation
func NewSubjectRepository(db *sql.DB) repository.SubjectRepository {
	return &subjectRepository{db: db}
}

// ActivityByProfile aggregates, per subject the profile has studied, the
// number of overdue and weak topics and the days since its last completed
// session. Subjects without any retention card are omitted.
func (r *subjectRepository) ActivityByProfile(ctx context.Context, profileID string, now time.Time) ([]models.SubjectActivity, error) {
	log := logger.FromContext(ctx).WithPrefix("subject_repo")
	log.Debug("aggregating subject activity: profile_id=%s", profileID)

	query, args, err := sqlBuilder.Select("s.id", "s.name").
		Column(squirrel.Expr("COALESCE(SUM(CASE WHEN rc.next_review_at IS NOT NULL AND rc.next_review_at <= ? THEN 1 ELSE 0 END), 0)", utc(now))).
		Column(squirrel.Expr("COALESCE(SUM(CASE WHEN rc.xp_status = ? OR rc.ease_factor < ? THEN 1 ELSE 0 END), 0)", string(models.XPDecayed), WeakEaseFactor)).
		Column("COUNT(DISTINCT t.id)").
		Column(squirrel.Expr(`(
    SELECT MAX(se.completed_at) FROM sessions se
    JOIN topics st ON st.id = se.topic_id
    WHERE st.subject_id = s.id AND se.profile_id = ? AND se.status = ?
)`, profileID, string(models.SessionCompleted))).
		From("subjects s").
		Join("topics t ON t.subject_id = s.id").
		LeftJoin("retention_cards rc ON rc.topic_id = t.id AND rc.profile_id = ?", profileID).
		GroupBy("s.id", "s.name").
		Having("COUNT(rc.topic_id) > 0").
		OrderBy("s.name ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query subject activity: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.SubjectActivity
	for rows.Next() {
		var a models.SubjectActivity
		var lastSession sql.NullString
		if err := rows.Scan(&a.SubjectID, &a.Name, &a.OverdueRecallCount, &a.WeakForgottenCount, &a.TotalTopics, &lastSession); err != nil {
			log.Error("failed to scan subject activity row: %v", err)
			return nil, err
		}
		if lastSession.Valid {
			t, err := parseTimestamp(lastSession.String)
			if err != nil {
				log.Warn("ignoring unparseable session timestamp for subject %s: %v", a.SubjectID, err)
			} else {
				a.DaysSinceLastSession = math.Max(0, now.Sub(t).Hours()/24)
			}
		}
		out = append(out, a)
	}
	log.Debug("found activity for %d subjects", len(out))
	return out, rows.Err()
}

// parseTimestamp reads a DATETIME value that lost its column type through
// aggregation.
func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSuffix(s, "Z")
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
