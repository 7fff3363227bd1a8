package progress

import (
	"testing"
	"time"

	"github.com/prepdeck/backend/internal/models"
)

func TestLedgerForDay_FreshWhenMissing(t *testing.T) {
	now := day(2026, time.March, 10, 9)
	l := LedgerForDay(nil, now)
	if l.Date != "2026-03-10" {
		t.Errorf("expected date 2026-03-10, got %s", l.Date)
	}
	if l.Flashcards != 0 || len(l.Challenges) != 0 {
		t.Errorf("expected empty ledger, got %+v", l)
	}
}

func TestLedgerForDay_RollsOverStaleDay(t *testing.T) {
	stale := models.NewDailyChallengeLedger("2026-03-09")
	stale.Flashcards = 4
	stale.Challenges["daily_flashcards"] = &models.ChallengeState{Progress: 4}

	l := LedgerForDay(stale, day(2026, time.March, 10, 0))
	if l.Date != "2026-03-10" {
		t.Errorf("expected rollover to 2026-03-10, got %s", l.Date)
	}
	if l.Flashcards != 0 {
		t.Errorf("expected progress reset on rollover, got %d flashcards", l.Flashcards)
	}
}

func TestLedgerForDay_KeepsSameDay(t *testing.T) {
	today := models.NewDailyChallengeLedger("2026-03-10")
	today.Questions = 7

	l := LedgerForDay(today, day(2026, time.March, 10, 23))
	if l.Questions != 7 {
		t.Errorf("same-day ledger was replaced: got %d questions", l.Questions)
	}
}

func TestApplyDailyActivity_FlashcardChallengeCompletesOnce(t *testing.T) {
	l := models.NewDailyChallengeLedger("2026-03-10")

	for i := 1; i <= 4; i++ {
		if completed := ApplyDailyActivity(l, DayActivity{Flashcards: 1}); len(completed) != 0 {
			t.Fatalf("challenge completed early at %d flashcards", i)
		}
	}

	completed := ApplyDailyActivity(l, DayActivity{Flashcards: 1})
	if len(completed) != 1 || completed[0].ID != "daily_flashcards" {
		t.Fatalf("expected daily_flashcards completion at 5, got %v", completed)
	}
	if completed[0].RewardXP != 50 {
		t.Errorf("expected reward 50, got %d", completed[0].RewardXP)
	}

	// Further flashcards never re-trigger the reward.
	if completed := ApplyDailyActivity(l, DayActivity{Flashcards: 1}); len(completed) != 0 {
		t.Errorf("completed challenge re-triggered: %v", completed)
	}
	if st := l.Challenges["daily_flashcards"]; !st.Completed || st.Progress != 6 {
		t.Errorf("unexpected state after extra flashcard: %+v", st)
	}
}

func TestApplyDailyActivity_DistinctTools(t *testing.T) {
	l := models.NewDailyChallengeLedger("2026-03-10")

	ApplyDailyActivity(l, DayActivity{Tool: "timer"})
	ApplyDailyActivity(l, DayActivity{Tool: "timer"})
	ApplyDailyActivity(l, DayActivity{Tool: "notes"})

	if st := l.Challenges["daily_tools"]; st.Progress != 2 {
		t.Fatalf("expected 2 distinct tools, got %d", st.Progress)
	}

	completed := ApplyDailyActivity(l, DayActivity{Tool: "outline"})
	if len(completed) != 1 || completed[0].ID != "daily_tools" {
		t.Errorf("expected daily_tools completion at 3 distinct tools, got %v", completed)
	}
}

func TestApplyDailyActivity_StudyTime(t *testing.T) {
	l := models.NewDailyChallengeLedger("2026-03-10")

	if completed := ApplyDailyActivity(l, DayActivity{StudyMinutes: 29}); len(completed) != 0 {
		t.Fatalf("study-time challenge completed early: %v", completed)
	}
	completed := ApplyDailyActivity(l, DayActivity{StudyMinutes: 1})
	if len(completed) != 1 || completed[0].ID != "daily_study_time" {
		t.Fatalf("expected daily_study_time at 30 minutes, got %v", completed)
	}
	if completed[0].RewardXP != 75 {
		t.Errorf("expected reward 75, got %d", completed[0].RewardXP)
	}
}

func TestApplyDailyActivity_SingleDeltaCompletesMultiple(t *testing.T) {
	l := models.NewDailyChallengeLedger("2026-03-10")
	l.Flashcards = 4
	l.StudyMinutes = 29

	completed := ApplyDailyActivity(l, DayActivity{Flashcards: 1, StudyMinutes: 1})
	if len(completed) != 2 {
		t.Fatalf("expected 2 completions, got %v", completed)
	}
}
