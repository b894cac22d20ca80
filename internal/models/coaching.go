package models

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrUnknownCardType is returned when a coaching card carries a type outside
// the four known variants, or a payload that does not match its type.
var ErrUnknownCardType = errors.New("models: unknown coaching card type")

// CardType tags the variant carried by a CoachingCard.
type CardType string

const (
	CardStreak    CardType = "streak"
	CardInsight   CardType = "insight"
	CardReviewDue CardType = "review_due"
	CardChallenge CardType = "challenge"
)

var (
	_ fmt.Stringer             = CardType("")
	_ encoding.TextMarshaler   = CardType("")
	_ encoding.TextUnmarshaler = (*CardType)(nil)
)

func (t CardType) String() string { return string(t) }

// IsValid reports whether t is one of the known variants.
func (t CardType) IsValid() bool {
	switch t {
	case CardStreak, CardInsight, CardReviewDue, CardChallenge:
		return true
	}
	return false
}

// MarshalText implements encoding.TextMarshaler.
func (t CardType) MarshalText() ([]byte, error) {
	if !t.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCardType, string(t))
	}
	return []byte(t), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *CardType) UnmarshalText(b []byte) error {
	v := CardType(b)
	if !v.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCardType, string(b))
	}
	*t = v
	return nil
}

type StreakPayload struct {
	CurrentStreak  int `json:"current_streak"`
	GraceRemaining int `json:"grace_remaining"`
}

type InsightPayload struct {
	TopicID     string `json:"topic_id"`
	InsightType string `json:"insight_type"`
}

type ReviewDuePayload struct {
	TopicID    string    `json:"topic_id"`
	DueAt      time.Time `json:"due_at"`
	EaseFactor float64   `json:"ease_factor"`
}

type ChallengePayload struct {
	TopicID    string `json:"topic_id"`
	Difficulty int    `json:"difficulty"`
	XPReward   int    `json:"xp_reward"`
}

// CoachingCard is the single prompt surfaced on the home screen. Exactly one
// payload pointer is set, and it must match Type.
type CoachingCard struct {
	ID        string     `json:"id"`
	ProfileID string     `json:"profile_id"`
	Type      CardType   `json:"type"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Priority  int        `json:"priority"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`

	Streak    *StreakPayload    `json:"streak,omitempty"`
	Insight   *InsightPayload   `json:"insight,omitempty"`
	ReviewDue *ReviewDuePayload `json:"review_due,omitempty"`
	Challenge *ChallengePayload `json:"challenge,omitempty"`
}

// TopicID returns the topic the card points at, if its variant has one.
func (c CoachingCard) TopicID() string {
	switch c.Type {
	case CardInsight:
		return c.Insight.TopicID
	case CardReviewDue:
		return c.ReviewDue.TopicID
	case CardChallenge:
		return c.Challenge.TopicID
	}
	return ""
}

// Validate checks that the payload matches the declared type.
func (c CoachingCard) Validate() error {
	set := 0
	for _, p := range []bool{c.Streak != nil, c.Insight != nil, c.ReviewDue != nil, c.Challenge != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("%w: %d payloads set on %q card", ErrUnknownCardType, set, string(c.Type))
	}

	var ok bool
	switch c.Type {
	case CardStreak:
		ok = c.Streak != nil
	case CardInsight:
		ok = c.Insight != nil
	case CardReviewDue:
		ok = c.ReviewDue != nil
	case CardChallenge:
		ok = c.Challenge != nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCardType, string(c.Type))
	}
	if !ok {
		return fmt.Errorf("%w: payload does not match %q", ErrUnknownCardType, string(c.Type))
	}
	return nil
}

type cardJSON CoachingCard

// MarshalJSON refuses to encode cards whose variant is inconsistent.
func (c CoachingCard) MarshalJSON() ([]byte, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(cardJSON(c))
}

// UnmarshalJSON decodes and validates a card.
func (c *CoachingCard) UnmarshalJSON(b []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	card := CoachingCard(raw)
	if err := card.Validate(); err != nil {
		return err
	}
	*c = card
	return nil
}

// CoachingCardCacheEntry is the persisted cache row for a profile.
type CoachingCardCacheEntry struct {
	ProfileID string       `json:"profile_id"`
	CardData  CoachingCard `json:"card_data"`
	ExpiresAt time.Time    `json:"expires_at"`
}
