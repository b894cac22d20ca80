package retention_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/retention"
)

var now = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func TestApply_FirstReviewPerfect(t *testing.T) {
	res := retention.Apply(5, nil, now)

	assert.True(t, res.WasSuccessful)
	assert.Equal(t, 1, res.Card.Interval)
	assert.Equal(t, 1, res.Card.Repetitions)
	assert.GreaterOrEqual(t, res.Card.EaseFactor, 2.5)
	assert.InDelta(t, 2.6, res.Card.EaseFactor, 1e-9)
	assert.Equal(t, now, res.Card.LastReviewedAt)
	assert.Equal(t, now.Add(24*time.Hour), res.Card.NextReviewAt)
}

func TestApply_FirstReviewBlackout(t *testing.T) {
	res := retention.Apply(0, nil, now)

	assert.False(t, res.WasSuccessful)
	assert.Equal(t, 1, res.Card.Interval)
	assert.Equal(t, 0, res.Card.Repetitions)
	assert.InDelta(t, 1.7, res.Card.EaseFactor, 1e-9)
}

func TestApply_SecondSuccessUsesSixDays(t *testing.T) {
	first := retention.Apply(4, nil, now)
	second := retention.Apply(4, &retention.Prior{
		EaseFactor:  first.Card.EaseFactor,
		Interval:    first.Card.Interval,
		Repetitions: first.Card.Repetitions,
	}, now)

	assert.Equal(t, 6, second.Card.Interval)
	assert.Equal(t, 2, second.Card.Repetitions)
	assert.Equal(t, now.Add(6*24*time.Hour), second.Card.NextReviewAt)
}

func TestApply_IntervalCalculation(t *testing.T) {
	tests := []struct {
		name     string
		quality  float64
		prior    retention.Prior
		expected int
	}{
		{
			name:     "third success multiplies by ease",
			quality:  4,
			prior:    retention.Prior{EaseFactor: 2.5, Interval: 6, Repetitions: 2},
			expected: 15, // 6 * 2.5
		},
		{
			name:     "perfect answer uses the raised ease",
			quality:  5,
			prior:    retention.Prior{EaseFactor: 2.5, Interval: 10, Repetitions: 3},
			expected: 26, // 10 * 2.6
		},
		{
			name:     "hard pass rounds to nearest day",
			quality:  3,
			prior:    retention.Prior{EaseFactor: 2.5, Interval: 10, Repetitions: 3},
			expected: 24, // 10 * 2.36 = 23.6
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prior := tt.prior
			res := retention.Apply(tt.quality, &prior, now)
			assert.Equal(t, tt.expected, res.Card.Interval)
		})
	}
}

func TestApply_FailureAfterSuccessesResets(t *testing.T) {
	prior := retention.Prior{EaseFactor: 2.6, Interval: 6, Repetitions: 2}

	res := retention.Apply(2, &prior, now)

	assert.False(t, res.WasSuccessful)
	assert.Equal(t, 0, res.Card.Repetitions)
	assert.Equal(t, 1, res.Card.Interval)
	assert.Less(t, res.Card.EaseFactor, prior.EaseFactor)
}

func TestApply_EaseFloorHoldsUnderRepeatedFailure(t *testing.T) {
	for q := 0; q <= 5; q++ {
		prior := &retention.Prior{EaseFactor: retention.MinEaseFactor, Interval: 1}
		for i := 0; i < 50; i++ {
			res := retention.Apply(float64(q), prior, now)
			require.GreaterOrEqual(t, res.Card.EaseFactor, retention.MinEaseFactor, "quality %d", q)
			prior = &retention.Prior{
				EaseFactor:  res.Card.EaseFactor,
				Interval:    res.Card.Interval,
				Repetitions: res.Card.Repetitions,
			}
		}
	}
}

func TestApply_PathologicalQualityCoercedToZero(t *testing.T) {
	zero := retention.Apply(0, nil, now)

	for _, q := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, 5.5, 100} {
		res := retention.Apply(q, nil, now)
		assert.False(t, res.WasSuccessful, "quality %v", q)
		assert.Equal(t, zero.Card, res.Card, "quality %v", q)
		assert.False(t, math.IsNaN(res.Card.EaseFactor))
	}
}

func TestApply_CorruptPriorFallsBackToDefaults(t *testing.T) {
	res := retention.Apply(4, &retention.Prior{EaseFactor: math.NaN(), Interval: -3, Repetitions: -1}, now)

	assert.True(t, res.WasSuccessful)
	assert.Equal(t, 1, res.Card.Repetitions)
	assert.Equal(t, 1, res.Card.Interval)
	assert.InDelta(t, retention.DefaultEaseFactor, res.Card.EaseFactor, 1e-9)
}

func TestApply_IntervalCeiling(t *testing.T) {
	res := retention.Apply(5, &retention.Prior{EaseFactor: 50, Interval: 30000, Repetitions: 9}, now)
	assert.Equal(t, retention.MaxIntervalDays, res.Card.Interval)
}

func TestApplyToCard(t *testing.T) {
	card := retention.NewCard("p1", "t1")

	card, ok := retention.ApplyToCard(card, 4, now)
	require.True(t, ok)
	assert.Equal(t, 1, card.Repetitions)
	require.NotNil(t, card.NextReviewAt)
	assert.Equal(t, now.Add(24*time.Hour), *card.NextReviewAt)

	card, ok = retention.ApplyToCard(card, 4, now.Add(24*time.Hour))
	require.True(t, ok)
	assert.Equal(t, 6, card.IntervalDays)
	assert.Equal(t, 2, card.Repetitions)
	assert.Equal(t, models.XPPending, card.XPStatus)
	assert.Equal(t, "t1", card.TopicID)
}

func TestQualityFromInt(t *testing.T) {
	assert.Equal(t, 3.0, retention.QualityFromInt(3))
	assert.Equal(t, 0.0, retention.QualityFromInt(-2))
	assert.Equal(t, 0.0, retention.QualityFromInt(9))
}
