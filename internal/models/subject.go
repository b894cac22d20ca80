package models

// SubjectActivity aggregates the retention signals of one subject for a profile.
type SubjectActivity struct {
	SubjectID            string  `json:"subject_id"`
	Name                 string  `json:"name"`
	OverdueRecallCount   int     `json:"overdue_recall_count"`
	WeakForgottenCount   int     `json:"weak_forgotten_count"`
	DaysSinceLastSession float64 `json:"days_since_last_session"`
	TotalTopics          int     `json:"total_topics"`
}
