package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/db"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// The database is configured with foreign keys enabled.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	_, err = db.Migrate(context.Background(), sqlDB)
	require.NoError(t, err, "failed to apply migrations")

	return sqlDB
}

// InsertProfile adds a profile row so rows referencing it satisfy foreign keys.
func InsertProfile(t *testing.T, sqlDB *sql.DB, id string) {
	t.Helper()
	_, err := sqlDB.Exec(`INSERT INTO profiles (id, name, created_at) VALUES (?, ?, ?)`, id, "Learner "+id, time.Now().UTC())
	require.NoError(t, err)
}

// InsertTopic adds a subject (if missing) and a topic under it.
func InsertTopic(t *testing.T, sqlDB *sql.DB, subjectID, topicID string) {
	t.Helper()
	_, err := sqlDB.Exec(`INSERT OR IGNORE INTO subjects (id, name) VALUES (?, ?)`, subjectID, "Subject "+subjectID)
	require.NoError(t, err)
	_, err = sqlDB.Exec(`INSERT INTO topics (id, subject_id, name) VALUES (?, ?, ?)`, topicID, subjectID, "Topic "+topicID)
	require.NoError(t, err)
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}
