// Package urgency orders subjects by how badly they need attention.
package urgency

import (
	"sort"

	"github.com/vytor/learnflow/internal/models"
)

const (
	overdueWeight = 3.0
	weakWeight    = 2.0
	idleWeight    = 0.5
)

// Ranked is a subject with its urgency score.
type Ranked struct {
	models.SubjectActivity
	UrgencyScore float64 `json:"urgency_score"`
}

// Score computes the urgency of a single subject.
func Score(a models.SubjectActivity) float64 {
	return float64(a.OverdueRecallCount)*overdueWeight +
		float64(a.WeakForgottenCount)*weakWeight +
		a.DaysSinceLastSession*idleWeight
}

// Rank returns the subjects by descending urgency. Equal scores put the
// subject with more topics first, and remaining ties keep input order.
// The input slice is not modified.
func Rank(subjects []models.SubjectActivity) []Ranked {
	ranked := make([]Ranked, len(subjects))
	for i, s := range subjects {
		ranked[i] = Ranked{SubjectActivity: s, UrgencyScore: Score(s)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].UrgencyScore != ranked[j].UrgencyScore {
			return ranked[i].UrgencyScore > ranked[j].UrgencyScore
		}
		return ranked[i].TotalTopics > ranked[j].TotalTopics
	})
	return ranked
}
