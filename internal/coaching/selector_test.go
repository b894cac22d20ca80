package coaching_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/learnflow/internal/coaching"
	"github.com/vytor/learnflow/internal/models"
)

var now = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func strPtr(s string) *string { return &s }

func intPtr(v int) *int { return &v }

func dueCards(n int) []models.RetentionCard {
	cards := make([]models.RetentionCard, n)
	for i := range cards {
		cards[i] = models.RetentionCard{
			ProfileID:    "p1",
			TopicID:      string(rune('a' + i)),
			EaseFactor:   2.5,
			NextReviewAt: at(-time.Duration(i+1) * time.Hour),
		}
	}
	return cards
}

func TestSelect_ReviewDuePriority(t *testing.T) {
	tests := []struct {
		k    int
		want int
	}{
		{k: 1, want: 7},
		{k: 2, want: 8},
		{k: 3, want: 9},
		{k: 4, want: 10},
		{k: 9, want: 10},
	}

	for _, tt := range tests {
		card := coaching.Select("p1", dueCards(tt.k), nil, now)
		assert.Equal(t, models.CardReviewDue, card.Type)
		assert.Equal(t, tt.want, card.Priority, "k=%d", tt.k)
	}
}

func TestSelect_ReviewDuePicksMostOverdue(t *testing.T) {
	cards := []models.RetentionCard{
		{TopicID: "recent", NextReviewAt: at(-time.Hour), EaseFactor: 2.1},
		{TopicID: "future", NextReviewAt: at(time.Hour)},
		{TopicID: "oldest", NextReviewAt: at(-72 * time.Hour), EaseFactor: 1.9},
		{TopicID: "never"},
	}

	card := coaching.Select("p1", cards, nil, now)

	require.NotNil(t, card.ReviewDue)
	assert.Equal(t, "oldest", card.ReviewDue.TopicID)
	assert.Equal(t, *at(-72 * time.Hour), card.ReviewDue.DueAt)
	assert.Equal(t, 1.9, card.ReviewDue.EaseFactor)
	assert.Equal(t, 8, card.Priority)
	assert.NoError(t, card.Validate())
}

func TestSelect_StreakInGracePeriod(t *testing.T) {
	st := &models.StreakState{ProfileID: "p1", CurrentStreak: 12, LongestStreak: 12, LastActivity: strPtr("2026-03-07")}
	cards := []models.RetentionCard{{TopicID: "t1", NextReviewAt: at(48 * time.Hour), XPStatus: models.XPVerified}}

	card := coaching.Select("p1", cards, st, now)

	assert.Equal(t, models.CardStreak, card.Type)
	assert.Equal(t, 6, card.Priority)
	require.NotNil(t, card.Streak)
	assert.Equal(t, 12, card.Streak.CurrentStreak)
	assert.Equal(t, 1, card.Streak.GraceRemaining)
}

func TestSelect_InsightForVerifiedTopic(t *testing.T) {
	st := &models.StreakState{CurrentStreak: 3, LongestStreak: 3, LastActivity: strPtr("2026-03-09")}
	cards := []models.RetentionCard{
		{TopicID: "pending", XPStatus: models.XPPending, NextReviewAt: at(time.Hour)},
		{TopicID: "mastered", XPStatus: models.XPVerified, NextReviewAt: at(time.Hour)},
	}

	card := coaching.Select("p1", cards, st, now)

	assert.Equal(t, models.CardInsight, card.Type)
	assert.Equal(t, 4, card.Priority)
	assert.Equal(t, "mastered", card.TopicID())
}

func TestSelect_ChallengeFallback(t *testing.T) {
	cards := []models.RetentionCard{{TopicID: "first", EvaluateDifficultyRung: intPtr(3), NextReviewAt: at(time.Hour)}}

	card := coaching.Select("p1", cards, nil, now)

	assert.Equal(t, models.CardChallenge, card.Type)
	assert.Equal(t, 3, card.Priority)
	require.NotNil(t, card.Challenge)
	assert.Equal(t, "first", card.Challenge.TopicID)
	assert.Equal(t, 3, card.Challenge.Difficulty)
	assert.Equal(t, 30, card.Challenge.XPReward)
}

func TestSelect_ChallengeWithoutCardsUsesProfile(t *testing.T) {
	card := coaching.Select("p1", nil, nil, now)

	assert.Equal(t, models.CardChallenge, card.Type)
	assert.Equal(t, "p1", card.TopicID())
	assert.Equal(t, 1, card.Challenge.Difficulty)
}

func TestSelect_Envelope(t *testing.T) {
	card := coaching.Select("p1", dueCards(2), nil, now)

	assert.Equal(t, "p1", card.ProfileID)
	assert.Equal(t, now, card.CreatedAt)
	require.NotNil(t, card.ExpiresAt)
	assert.Equal(t, now.Add(24*time.Hour), *card.ExpiresAt)
	assert.NotEmpty(t, card.ID)
}

func TestSelect_Deterministic(t *testing.T) {
	cards := dueCards(3)

	a := coaching.Select("p1", cards, nil, now)
	b := coaching.Select("p1", cards, nil, now)
	c := coaching.Select("p2", cards, nil, now)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a.ID, c.ID)
}
