// Package coaching picks the single coaching card shown to a learner and
// caches it per profile.
package coaching

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/learnflow/internal/models"
	"github.com/vytor/learnflow/internal/streak"
	"github.com/vytor/learnflow/internal/verification"
)

// CardTTL is how long a selected card stays valid.
const CardTTL = 24 * time.Hour

const (
	reviewDueBasePriority = 7
	maxPriority           = 10
	streakPriority        = 6
	insightPriority       = 4
	challengePriority     = 3

	challengeXPPerRung = 10
	insightVerified    = "verified_mastery"
)

// cardNamespace scopes the name-based UUIDs given to cards.
var cardNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("learnflow/coaching-card"))

// Select returns the most relevant card for a profile. The choice is a pure
// function of its inputs: due reviews first, then a streak in its grace
// period, then a verified topic worth celebrating, and a challenge otherwise.
func Select(profileID string, cards []models.RetentionCard, st *models.StreakState, now time.Time) models.CoachingCard {
	var card models.CoachingCard

	if due, k := mostOverdue(cards, now); due != nil {
		card = reviewDueCard(*due, k)
	} else if v := streak.Display(st, streak.Today(now)); v.IsOnGracePeriod {
		card = streakCard(v)
	} else if verified := firstVerified(cards); verified != nil {
		card = insightCard(*verified)
	} else {
		card = challengeCard(profileID, cards)
	}

	expires := now.Add(CardTTL)
	card.ProfileID = profileID
	card.CreatedAt = now
	card.ExpiresAt = &expires
	card.ID = cardID(profileID, card.Type, card.TopicID(), now)
	return card
}

func cardID(profileID string, t models.CardType, topicID string, now time.Time) string {
	name := fmt.Sprintf("%s|%s|%s|%s", profileID, t, topicID, now.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(cardNamespace, []byte(name)).String()
}

// mostOverdue returns the due card with the earliest review time and the
// number of due cards. Ties keep input order.
func mostOverdue(cards []models.RetentionCard, now time.Time) (*models.RetentionCard, int) {
	var best *models.RetentionCard
	k := 0
	for i := range cards {
		c := &cards[i]
		if !c.IsDue(now) {
			continue
		}
		k++
		if best == nil || c.NextReviewAt.Before(*best.NextReviewAt) {
			best = c
		}
	}
	return best, k
}

func firstVerified(cards []models.RetentionCard) *models.RetentionCard {
	for i := range cards {
		if cards[i].XPStatus == models.XPVerified {
			return &cards[i]
		}
	}
	return nil
}

func reviewDueCard(c models.RetentionCard, k int) models.CoachingCard {
	body := "One topic is ready for review. A quick recall now keeps it fresh."
	if k > 1 {
		body = fmt.Sprintf("%d topics are ready for review. Start with the one you've waited longest on.", k)
	}
	return models.CoachingCard{
		Type:     models.CardReviewDue,
		Title:    "Time to review",
		Body:     body,
		Priority: min(reviewDueBasePriority+k-1, maxPriority),
		ReviewDue: &models.ReviewDuePayload{
			TopicID:    c.TopicID,
			DueAt:      *c.NextReviewAt,
			EaseFactor: c.EaseFactor,
		},
	}
}

func streakCard(v streak.View) models.CoachingCard {
	return models.CoachingCard{
		Type:     models.CardStreak,
		Title:    "Keep your streak alive",
		Body:     v.DisplayText,
		Priority: streakPriority,
		Streak: &models.StreakPayload{
			CurrentStreak:  v.CurrentStreak,
			GraceRemaining: v.GraceDaysRemaining,
		},
	}
}

func insightCard(c models.RetentionCard) models.CoachingCard {
	return models.CoachingCard{
		Type:     models.CardInsight,
		Title:    "You've mastered this",
		Body:     "You proved you really know this topic. Nice work.",
		Priority: insightPriority,
		Insight: &models.InsightPayload{
			TopicID:     c.TopicID,
			InsightType: insightVerified,
		},
	}
}

func challengeCard(profileID string, cards []models.RetentionCard) models.CoachingCard {
	topicID, rung := profileID, 1
	if len(cards) > 0 {
		topicID, rung = cards[0].TopicID, verification.NormalizeRung(cards[0].Rung())
	}
	return models.CoachingCard{
		Type:     models.CardChallenge,
		Title:    "Ready for a challenge?",
		Body:     "Test yourself on something you've learned.",
		Priority: challengePriority,
		Challenge: &models.ChallengePayload{
			TopicID:    topicID,
			Difficulty: rung,
			XPReward:   challengeXPPerRung * rung,
		},
	}
}
