// Package verification decides when a topic may be verified in an elevated
// mode, maps mode-specific outcomes back onto the SM-2 quality scale, and
// applies the three-strike escalation policy to failed challenges.
package verification

import (
	"math"

	"github.com/vytor/learnflow/internal/models"
)

const (
	// EvaluateEaseThreshold is the ease factor a topic needs before it can be
	// challenged in evaluate mode.
	EvaluateEaseThreshold = 2.5
	// TeachBackEaseThreshold is lower: explaining a topic asks for less
	// mastery than spotting a planted flaw.
	TeachBackEaseThreshold = 2.3
)

// CanEvaluate reports whether card qualifies for evaluate mode.
func CanEvaluate(card models.RetentionCard) bool {
	return card.EaseFactor >= EvaluateEaseThreshold && card.Repetitions > 0
}

// CanTeachBack reports whether card qualifies for teach-back mode.
func CanTeachBack(card models.RetentionCard) bool {
	return card.EaseFactor >= TeachBackEaseThreshold && card.Repetitions > 0
}

// Eligibility summarises both predicates for a topic.
type Eligibility struct {
	TopicID        string `json:"topic_id"`
	CanEvaluate    bool   `json:"can_evaluate"`
	CanTeachBack   bool   `json:"can_teach_back"`
	DifficultyRung int    `json:"difficulty_rung"`
}

// Check evaluates both predicates. A nil card is never eligible.
func Check(topicID string, card *models.RetentionCard) Eligibility {
	e := Eligibility{TopicID: topicID, DifficultyRung: MinRung}
	if card == nil {
		return e
	}
	e.CanEvaluate = CanEvaluate(*card)
	e.CanTeachBack = CanTeachBack(*card)
	e.DifficultyRung = NormalizeRung(card.Rung())
	return e
}

// EvaluateQuality maps a challenge outcome onto 0-5. A failed challenge is
// floored at 2 so one miss cannot wreck an established schedule.
func EvaluateQuality(passed bool, raw int) int {
	if passed {
		return clampInt(raw, 3, 5)
	}
	if raw <= 1 {
		return 2
	}
	return 3
}

// TeachBackQuality maps a teach-back assessment onto 0-5.
func TeachBackQuality(a TeachBackAssessment) int {
	weighted := a.Accuracy*0.5 + a.Completeness*0.3 + a.Clarity*0.2
	if math.IsNaN(weighted) {
		return 0
	}
	return clampInt(int(math.Round(weighted)), 0, 5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
