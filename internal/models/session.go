package models

import (
	"fmt"
	"time"
)

// SessionMode selects how a learning session verifies knowledge.
type SessionMode string

const (
	ModeReview    SessionMode = "review"
	ModeEvaluate  SessionMode = "evaluate"
	ModeTeachBack SessionMode = "teach_back"
)

// ParseSessionMode converts s into a SessionMode.
func ParseSessionMode(s string) (SessionMode, error) {
	m := SessionMode(s)
	switch m {
	case ModeReview, ModeEvaluate, ModeTeachBack:
		return m, nil
	}
	return "", fmt.Errorf("unknown session mode %q", s)
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
)

type Session struct {
	ID          string        `json:"id"`
	ProfileID   string        `json:"profile_id"`
	TopicID     string        `json:"topic_id"`
	Mode        SessionMode   `json:"mode"`
	Status      SessionStatus `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at"`
}

// EventKind distinguishes learner messages from model responses in the
// session event log.
type EventKind string

const (
	EventUserMessage EventKind = "user_message"
	EventAIResponse  EventKind = "ai_response"
)

type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	ProfileID string    `json:"profile_id"`
	Kind      EventKind `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
