// Package streak maintains the daily-activity streak of a profile.
//
// A streak survives up to GraceDays missed calendar days: a gap of one day
// continues it, a gap of two to four days continues it as well (the grace
// period), and anything longer starts over at one.
package streak

import (
	"fmt"
	"time"

	"github.com/vytor/learnflow/internal/models"
)

const (
	// GraceDays is how many calendar days may be missed without losing the streak.
	GraceDays = 3

	// DateLayout is the calendar-day format used for streak dates.
	DateLayout = "2006-01-02"

	maxContinuingGap = GraceDays + 1
	brokenMessage    = "Welcome back! Every day you learn counts, so let's start a fresh streak today."
)

// Update is the outcome of recording activity on a day.
type Update struct {
	State        models.StreakState
	Changed      bool
	StreakBroken bool
	Message      string
}

// View is the display form of a streak on a given day.
type View struct {
	CurrentStreak      int    `json:"current_streak"`
	LongestStreak      int    `json:"longest_streak"`
	IsOnGracePeriod    bool   `json:"is_on_grace_period"`
	GraceDaysRemaining int    `json:"grace_days_remaining"`
	DisplayText        string `json:"display_text"`
}

// Today returns the calendar day of now in UTC.
func Today(now time.Time) string {
	return now.UTC().Format(DateLayout)
}

// DaysBetween returns the number of calendar days from one date to another.
func DaysBetween(from, to string) (int, error) {
	a, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", from, err)
	}
	b, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", to, err)
	}
	return int(b.Sub(a).Hours() / 24), nil
}

// gap returns the days since the last activity, and false when there is no
// usable prior activity.
func gap(prior *models.StreakState, today string) (int, bool) {
	if prior == nil || prior.LastActivity == nil {
		return 0, false
	}
	d, err := DaysBetween(*prior.LastActivity, today)
	if err != nil {
		return 0, false
	}
	if d < 0 {
		// Activity recorded "in the future" (clock skew) counts as today.
		d = 0
	}
	return d, true
}

// Record applies activity on today to prior. Calling it twice on the same
// day is a no-op. prior is not modified.
func Record(profileID string, prior *models.StreakState, today string) Update {
	day := today
	d, ok := gap(prior, today)
	if !ok {
		return Update{
			State: models.StreakState{
				ProfileID:     profileID,
				CurrentStreak: 1,
				LongestStreak: max(1, longestOf(prior)),
				LastActivity:  &day,
			},
			Changed: true,
		}
	}

	state := *prior
	state.ProfileID = profileID
	if d == 0 {
		return Update{State: state}
	}

	state.LastActivity = &day
	state.GracePeriodStart = nil

	if d <= maxContinuingGap {
		state.CurrentStreak++
		state.LongestStreak = max(state.LongestStreak, state.CurrentStreak)
		return Update{State: state, Changed: true}
	}

	state.CurrentStreak = 1
	state.LongestStreak = max(state.LongestStreak, 1)
	return Update{
		State:        state,
		Changed:      true,
		StreakBroken: true,
		Message:      brokenMessage,
	}
}

func longestOf(s *models.StreakState) int {
	if s == nil {
		return 0
	}
	return s.LongestStreak
}

// Display renders the streak as seen on today without changing it.
func Display(state *models.StreakState, today string) View {
	if state == nil {
		return View{DisplayText: "Start learning today to begin a streak"}
	}

	v := View{
		CurrentStreak: state.CurrentStreak,
		LongestStreak: state.LongestStreak,
	}

	d, ok := gap(state, today)
	switch {
	case !ok:
		v.DisplayText = "Start learning today to begin a streak"
	case d <= 1:
		v.DisplayText = fmt.Sprintf("%d-day streak", state.CurrentStreak)
	case d <= maxContinuingGap:
		v.IsOnGracePeriod = true
		v.GraceDaysRemaining = maxContinuingGap - d
		if v.GraceDaysRemaining == 0 {
			v.DisplayText = fmt.Sprintf("%d-day streak, today is the last day to keep it going", state.CurrentStreak)
		} else {
			v.DisplayText = fmt.Sprintf("%d-day streak, %s left to keep it going", state.CurrentStreak, plural(v.GraceDaysRemaining, "day"))
		}
	default:
		v.DisplayText = "Your streak ended. Learn today to start a new one"
	}
	return v
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
