package models

import "time"

// XPStatus tracks whether the experience points earned on a topic still hold.
type XPStatus string

const (
	XPPending  XPStatus = "pending"
	XPVerified XPStatus = "verified"
	XPDecayed  XPStatus = "decayed"
)

// IsValid reports whether s is one of the known statuses.
func (s XPStatus) IsValid() bool {
	switch s {
	case XPPending, XPVerified, XPDecayed:
		return true
	}
	return false
}

// RetentionCard is the spaced-repetition state of one topic for one profile.
type RetentionCard struct {
	ProfileID              string     `json:"profile_id"`
	TopicID                string     `json:"topic_id"`
	SubjectID              string     `json:"subject_id,omitempty"`
	EaseFactor             float64    `json:"ease_factor"`
	IntervalDays           int        `json:"interval_days"`
	Repetitions            int        `json:"repetitions"`
	LastReviewedAt         *time.Time `json:"last_reviewed_at"`
	NextReviewAt           *time.Time `json:"next_review_at"`
	FailureCount           int        `json:"failure_count"`
	ConsecutiveSuccesses   int        `json:"consecutive_successes"`
	XPStatus               XPStatus   `json:"xp_status"`
	EvaluateDifficultyRung *int       `json:"evaluate_difficulty_rung"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// Rung returns the evaluate difficulty rung, defaulting to 1 when unset.
func (c RetentionCard) Rung() int {
	if c.EvaluateDifficultyRung == nil {
		return 1
	}
	return *c.EvaluateDifficultyRung
}

// IsDue reports whether the card is due for review at now.
func (c RetentionCard) IsDue(now time.Time) bool {
	return c.NextReviewAt != nil && !c.NextReviewAt.After(now)
}

// ReviewHistory records a single scheduling decision.
type ReviewHistory struct {
	ID         int64       `json:"id"`
	ProfileID  string      `json:"profile_id"`
	TopicID    string      `json:"topic_id"`
	SessionID  string      `json:"session_id"`
	Mode       SessionMode `json:"mode"`
	Quality    float64     `json:"quality"`
	Successful bool        `json:"successful"`
	ReviewedAt time.Time   `json:"reviewed_at"`
}
