package progress

import "time"

// MaxStreakDays caps the daily streak.
const MaxStreakDays = 365

// NextStreak computes the streak value after an activity at now, given the
// previous streak and last activity time. Calendar days are compared in now's
// location so the result is stable across a midnight boundary.
func NextStreak(current int, lastActivity *time.Time, now time.Time) int {
	if lastActivity == nil {
		return 1
	}

	lastDay := startOfDay(lastActivity.In(now.Location()))
	today := startOfDay(now)

	switch {
	case lastDay.Equal(today):
		// Same-day activity never double-counts.
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		if current >= MaxStreakDays {
			return MaxStreakDays
		}
		return current + 1
	default:
		// Gap of two or more days, or clock skew put the last activity in the
		// future. Either way the streak starts over.
		return 1
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
