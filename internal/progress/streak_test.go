package progress

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

func TestNextStreak_FirstActivity(t *testing.T) {
	now := day(2026, time.March, 10, 9)
	if got := NextStreak(0, nil, now); got != 1 {
		t.Errorf("expected streak 1 on first activity, got %d", got)
	}
}

func TestNextStreak_SameDayIdempotent(t *testing.T) {
	morning := day(2026, time.March, 10, 8)
	evening := day(2026, time.March, 10, 23)
	if got := NextStreak(5, &morning, evening); got != 5 {
		t.Errorf("same-day activity changed streak: got %d, want 5", got)
	}
}

func TestNextStreak_NextDayIncrements(t *testing.T) {
	yesterday := day(2026, time.March, 10, 23)
	today := day(2026, time.March, 11, 0)
	if got := NextStreak(5, &yesterday, today); got != 6 {
		t.Errorf("expected streak 6 on consecutive day, got %d", got)
	}
}

func TestNextStreak_MidnightBoundary(t *testing.T) {
	// 23:59 to 00:01 is still a consecutive calendar day.
	late := day(2026, time.March, 10, 0).Add(23*time.Hour + 59*time.Minute)
	early := day(2026, time.March, 11, 0).Add(1 * time.Minute)
	if got := NextStreak(2, &late, early); got != 3 {
		t.Errorf("expected streak 3 across midnight, got %d", got)
	}
}

func TestNextStreak_GapResets(t *testing.T) {
	tests := []struct {
		name string
		last time.Time
		now  time.Time
	}{
		{"two day gap", day(2026, time.March, 10, 12), day(2026, time.March, 12, 12)},
		{"week gap", day(2026, time.March, 1, 12), day(2026, time.March, 8, 12)},
		{"future last activity", day(2026, time.March, 15, 12), day(2026, time.March, 10, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := tt.last
			if got := NextStreak(30, &last, tt.now); got != 1 {
				t.Errorf("expected streak reset to 1, got %d", got)
			}
		})
	}
}

func TestNextStreak_Cap(t *testing.T) {
	yesterday := day(2026, time.March, 10, 12)
	today := day(2026, time.March, 11, 12)

	if got := NextStreak(MaxStreakDays, &yesterday, today); got != MaxStreakDays {
		t.Errorf("streak exceeded cap: got %d", got)
	}
	if got := NextStreak(MaxStreakDays-1, &yesterday, today); got != MaxStreakDays {
		t.Errorf("expected streak to reach cap, got %d", got)
	}
}
