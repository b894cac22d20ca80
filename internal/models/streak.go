package models

import "time"

// StreakState is the daily-activity streak of a profile. Dates are calendar
// days formatted as YYYY-MM-DD.
type StreakState struct {
	ProfileID     string  `json:"profile_id"`
	CurrentStreak int     `json:"current_streak"`
	LongestStreak int     `json:"longest_streak"`
	LastActivity  *string `json:"last_activity_date"`
	// GracePeriodStart is kept for schema compatibility; activity always clears it.
	GracePeriodStart *string   `json:"grace_period_start_date"`
	UpdatedAt        time.Time `json:"updated_at"`
}
