package retention

import (
	"math"
	"time"

	"github.com/vytor/learnflow/internal/models"
)

const (
	MinEaseFactor     = 1.3
	DefaultEaseFactor = 2.5
	PassingQuality    = 3
	MaxQuality        = 5

	// MaxIntervalDays keeps the product interval × ease representable.
	MaxIntervalDays = 36500
)

// Prior is the scheduling state before a review. A nil *Prior is a first review.
type Prior struct {
	EaseFactor  float64
	Interval    int
	Repetitions int
}

// Schedule is the scheduling state after a review.
type Schedule struct {
	EaseFactor     float64
	Interval       int
	Repetitions    int
	LastReviewedAt time.Time
	NextReviewAt   time.Time
}

type Result struct {
	Card          Schedule
	WasSuccessful bool
}

// NormalizeQuality coerces any non-finite or out-of-range rating to 0.
func NormalizeQuality(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 || q > MaxQuality {
		return 0
	}
	return q
}

// QualityFromInt converts an integer rating; out-of-range values become 0.
func QualityFromInt(q int) float64 {
	return NormalizeQuality(float64(q))
}

// Apply runs an SM-2 review. It never fails: bad ratings count as 0 and a
// corrupt prior falls back to first-review defaults field by field.
func Apply(quality float64, prior *Prior, now time.Time) Result {
	q := NormalizeQuality(quality)

	ef := DefaultEaseFactor
	interval := 1
	reps := 0
	if prior != nil {
		if !math.IsNaN(prior.EaseFactor) && !math.IsInf(prior.EaseFactor, 0) && prior.EaseFactor > 0 {
			ef = prior.EaseFactor
		}
		if prior.Interval > 0 {
			interval = prior.Interval
		}
		if prior.Repetitions > 0 {
			reps = prior.Repetitions
		}
	}

	miss := MaxQuality - q
	ef = ef + (0.1 - miss*(0.08+miss*0.02))
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	success := q >= PassingQuality
	if success {
		reps++
		switch reps {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			next := math.Round(float64(interval) * ef)
			if next > MaxIntervalDays {
				next = MaxIntervalDays
			}
			interval = int(next)
		}
	} else {
		reps = 0
		interval = 1
	}

	return Result{
		Card: Schedule{
			EaseFactor:     ef,
			Interval:       interval,
			Repetitions:    reps,
			LastReviewedAt: now,
			NextReviewAt:   now.Add(time.Duration(interval) * 24 * time.Hour),
		},
		WasSuccessful: success,
	}
}

// ApplyToCard schedules card in place of its previous state and returns the
// updated copy. A zero-valued card is treated as never reviewed.
func ApplyToCard(card models.RetentionCard, quality float64, now time.Time) (models.RetentionCard, bool) {
	var prior *Prior
	if card.LastReviewedAt != nil || card.Repetitions > 0 {
		prior = &Prior{
			EaseFactor:  card.EaseFactor,
			Interval:    card.IntervalDays,
			Repetitions: card.Repetitions,
		}
	}

	res := Apply(quality, prior, now)
	last := res.Card.LastReviewedAt
	next := res.Card.NextReviewAt

	card.EaseFactor = res.Card.EaseFactor
	card.IntervalDays = res.Card.Interval
	card.Repetitions = res.Card.Repetitions
	card.LastReviewedAt = &last
	card.NextReviewAt = &next
	card.UpdatedAt = now
	return card, res.WasSuccessful
}

// NewCard returns the default state of a topic that was never reviewed.
func NewCard(profileID, topicID string) models.RetentionCard {
	return models.RetentionCard{
		ProfileID:    profileID,
		TopicID:      topicID,
		EaseFactor:   DefaultEaseFactor,
		IntervalDays: 1,
		XPStatus:     models.XPPending,
	}
}
