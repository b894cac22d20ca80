package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/learnflow/internal/models"
)

// ErrSessionNotActive is returned by Complete when the session does not exist
// or has already been completed.
var ErrSessionNotActive = errors.New("repository: session is not active")

// SessionRepository handles learning session data access
type SessionRepository interface {
	Get(ctx context.Context, id string) (*models.Session, error)
	Start(ctx context.Context, session models.Session) error
	// Complete moves an active session to completed. Only one caller wins.
	Complete(ctx context.Context, id string, completedAt time.Time) error
	CountCompletedSessions(ctx context.Context, profileID string) (int, error)
}

// EventRepository handles the per-session message log
type EventRepository interface {
	Insert(ctx context.Context, event models.Event) (int64, error)
	// ListRecentAIResponses returns model responses newest first.
	ListRecentAIResponses(ctx context.Context, sessionID, profileID string, limit int) ([]models.Event, error)
}
