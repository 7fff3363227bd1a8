package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prepdeck/backend/internal/events"
	"github.com/prepdeck/backend/internal/models"
	"github.com/prepdeck/backend/internal/storage"
)

// memStore is an in-memory storage.Store for service tests.
type memStore struct {
	docs     map[string][]byte
	failSave bool
}

func newMemStore() *memStore {
	return &memStore{docs: map[string][]byte{}}
}

func (m *memStore) key(collection, deviceID string) string { return collection + "/" + deviceID }

func (m *memStore) Load(ctx context.Context, collection, deviceID string) ([]byte, error) {
	data, ok := m.docs[m.key(collection, deviceID)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Save(ctx context.Context, collection, deviceID string, data []byte) error {
	if m.failSave {
		return errors.New("disk full")
	}
	m.docs[m.key(collection, deviceID)] = data
	return nil
}

func (m *memStore) Delete(ctx context.Context, collection, deviceID string) error {
	delete(m.docs, m.key(collection, deviceID))
	return nil
}

func (m *memStore) Keys(ctx context.Context, collection string) ([]string, error) {
	var keys []string
	prefix := collection + "/"
	for k := range m.docs {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k[len(prefix):])
		}
	}
	return keys, nil
}

func (m *memStore) Close() error { return nil }

func newTestService(store storage.Store, now time.Time) *Service {
	svc := NewService(store, events.NewBus())
	svc.now = func() time.Time { return now }
	return svc
}

func TestAwardExperience_AccumulatesXP(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))
	ctx := context.Background()

	if _, err := svc.AwardExperience(ctx, "dev1", 30, "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := svc.AwardExperience(ctx, "dev1", 20, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Record.ExperiencePoints != 50 {
		t.Errorf("expected 50 XP, got %d", result.Record.ExperiencePoints)
	}
	if result.Record.TotalExperiencePoints != 50 {
		t.Errorf("expected 50 lifetime XP, got %d", result.Record.TotalExperiencePoints)
	}
}

func TestAwardExperience_RejectsNonPositive(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))

	for _, amount := range []int64{0, -5} {
		if _, err := svc.AwardExperience(context.Background(), "dev1", amount, "test"); err == nil {
			t.Errorf("expected error for amount %d", amount)
		}
	}
}

func TestFlashcardComplete_FreshDeviceFiveCards(t *testing.T) {
	// Five base awards of 5 XP, plus first_step (10) on the first card and the
	// daily flashcard challenge (50) on the fifth: 85 XP total.
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))
	ctx := context.Background()

	var last *AwardResult
	for i := 0; i < 5; i++ {
		last = svc.FlashcardComplete(ctx, "dev1", false)
	}

	if last.Record.ExperiencePoints != 85 {
		t.Errorf("expected 85 XP after 5 flashcards, got %d", last.Record.ExperiencePoints)
	}
	if !last.Record.HasAchievement("first_step") {
		t.Error("expected first_step unlocked")
	}
	if len(last.CompletedChallenges) != 1 || last.CompletedChallenges[0].ID != "daily_flashcards" {
		t.Errorf("expected daily_flashcards completion on fifth card, got %v", last.CompletedChallenges)
	}
	if last.XPAwarded != 55 {
		t.Errorf("expected fifth card to award 55 XP (5 base + 50 challenge), got %d", last.XPAwarded)
	}
	if last.Record.Counter(models.CounterFlashcardsCompleted) != 5 {
		t.Errorf("expected counter 5, got %d", last.Record.Counter(models.CounterFlashcardsCompleted))
	}
}

func TestFlashcardComplete_CorrectAwardsMore(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))

	result := svc.FlashcardComplete(context.Background(), "dev1", true)
	// 10 base + 10 first_step reward.
	if result.XPAwarded != 20 {
		t.Errorf("expected 20 XP for correct first flashcard, got %d", result.XPAwarded)
	}
}

func TestAward_LevelUpFiresOnceAtBoundary(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))
	ctx := context.Background()

	var results []*AwardResult
	for i := 0; i < 3; i++ {
		r, err := svc.AwardExperience(ctx, "dev1", 40, "test")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		results = append(results, r)
	}

	if results[0].LeveledUp || results[1].LeveledUp {
		t.Error("leveled up before crossing the boundary")
	}
	if !results[2].LeveledUp {
		t.Error("expected level-up on third award")
	}
	if results[2].Record.Level != 2 {
		t.Errorf("expected level 2 at 120 XP, got %d", results[2].Record.Level)
	}
}

func TestAward_AchievementRewardDoesNotChainUnlocks(t *testing.T) {
	// streak_30's 100 XP reward pushes lifetime XP past 1000, but xp_1000 must
	// wait for the next mutation.
	store := newMemStore()
	svc := newTestService(store, day(2026, time.March, 10, 9))
	ctx := context.Background()

	rec := models.NewProgressRecord()
	rec.ExperiencePoints = 950
	rec.TotalExperiencePoints = 950
	rec.Level = Level(rec.ExperiencePoints)
	rec.StreakDays = 29
	rec.UnlockedAchievements = []string{"streak_3", "streak_7", "level_5", "level_10"}
	yesterday := day(2026, time.March, 9, 9)
	rec.LastActivityDate = &yesterday
	svc.saveRecord(ctx, "dev1", rec)

	result, err := svc.AwardExperience(ctx, "dev1", 10, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unlockedIDs := map[string]bool{}
	for _, def := range result.Unlocked {
		unlockedIDs[def.ID] = true
	}
	if !unlockedIDs["streak_30"] {
		t.Errorf("expected streak_30 unlock, got %v", result.Unlocked)
	}
	if unlockedIDs["xp_1000"] {
		t.Error("xp_1000 unlocked in the same pass as the reward that crossed it")
	}

	// The next mutation sees the new lifetime total and unlocks it.
	next, err := svc.AwardExperience(ctx, "dev1", 1, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, def := range next.Unlocked {
		if def.ID == "xp_1000" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected xp_1000 on the following mutation, got %v", next.Unlocked)
	}
}

func TestAward_StreakAdvancesOncePerDay(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	svc := newTestService(store, day(2026, time.March, 10, 9))
	first := svc.QuestionView(ctx, "dev1")
	if first.Record.StreakDays != 1 {
		t.Fatalf("expected streak 1, got %d", first.Record.StreakDays)
	}

	second := svc.QuestionView(ctx, "dev1")
	if second.Record.StreakDays != 1 {
		t.Errorf("same-day activity advanced streak to %d", second.Record.StreakDays)
	}

	svc.now = func() time.Time { return day(2026, time.March, 11, 9) }
	third := svc.QuestionView(ctx, "dev1")
	if third.Record.StreakDays != 2 {
		t.Errorf("expected streak 2 on next day, got %d", third.Record.StreakDays)
	}
}

func TestAward_DailyLedgerRollsOverAtMidnight(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	svc := newTestService(store, day(2026, time.March, 10, 9))
	for i := 0; i < 4; i++ {
		svc.FlashcardComplete(ctx, "dev1", false)
	}

	svc.now = func() time.Time { return day(2026, time.March, 11, 9) }
	result := svc.FlashcardComplete(ctx, "dev1", false)
	if len(result.CompletedChallenges) != 0 {
		t.Errorf("yesterday's progress leaked into today: %v", result.CompletedChallenges)
	}

	challenges := svc.GetDailyChallenges(ctx, "dev1")
	if challenges.Date != "2026-03-11" {
		t.Errorf("expected today's date, got %s", challenges.Date)
	}
	for _, st := range challenges.Challenges {
		if st.ID == "daily_flashcards" && st.Progress != 1 {
			t.Errorf("expected flashcard progress 1 after rollover, got %d", st.Progress)
		}
	}
}

func TestAward_CorruptRecordResetsToDefault(t *testing.T) {
	store := newMemStore()
	store.docs["gameState/dev1"] = []byte("{not json")
	svc := newTestService(store, day(2026, time.March, 10, 9))

	rec := svc.GetProgress(context.Background(), "dev1")
	if rec.ExperiencePoints != 0 || rec.Level != 1 {
		t.Errorf("corrupt record not reset: %+v", rec)
	}
}

func TestAward_SaveFailureStillReturnsMutatedRecord(t *testing.T) {
	store := newMemStore()
	store.failSave = true
	svc := newTestService(store, day(2026, time.March, 10, 9))

	result, err := svc.AwardExperience(context.Background(), "dev1", 40, "test")
	if err != nil {
		t.Fatalf("award failed on persistence error: %v", err)
	}
	if result.Record.ExperiencePoints != 40 {
		t.Errorf("expected mutated record despite save failure, got %d XP", result.Record.ExperiencePoints)
	}
}

func TestResetProgress(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))
	ctx := context.Background()

	svc.FlashcardComplete(ctx, "dev1", true)
	rec := svc.ResetProgress(ctx, "dev1")

	if rec.ExperiencePoints != 0 || rec.StreakDays != 0 || len(rec.UnlockedAchievements) != 0 {
		t.Errorf("reset left state behind: %+v", rec)
	}
	if got := svc.GetProgress(ctx, "dev1"); got.ExperiencePoints != 0 {
		t.Errorf("reset not persisted: %d XP", got.ExperiencePoints)
	}
}

func TestSweepStaleLedgers(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	svc := newTestService(store, day(2026, time.March, 10, 9))
	svc.FlashcardComplete(ctx, "stale-dev", false)
	svc.now = func() time.Time { return day(2026, time.March, 11, 9) }
	svc.FlashcardComplete(ctx, "fresh-dev", false)

	removed, err := svc.SweepStaleLedgers(ctx)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 stale ledger removed, got %d", removed)
	}
	if _, err := store.Load(ctx, storage.CollectionDailyChallenges, "fresh-dev"); err != nil {
		t.Errorf("sweep removed today's ledger: %v", err)
	}
	if _, err := store.Load(ctx, storage.CollectionDailyChallenges, "stale-dev"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("stale ledger survived the sweep")
	}
}

func TestAddStudyMinutes_NoBaseXP(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))
	ctx := context.Background()

	result := svc.AddStudyMinutes(ctx, "dev1", 10)
	if result.XPAwarded != 0 {
		t.Errorf("study minutes awarded base XP: %d", result.XPAwarded)
	}

	result = svc.AddStudyMinutes(ctx, "dev1", 20)
	if len(result.CompletedChallenges) != 1 || result.CompletedChallenges[0].ID != "daily_study_time" {
		t.Fatalf("expected daily_study_time completion at 30 minutes, got %v", result.CompletedChallenges)
	}
	if result.XPAwarded != 75 {
		t.Errorf("expected 75 XP from the challenge alone, got %d", result.XPAwarded)
	}
}

func TestToolUsage_DuplicateToolCountsOnce(t *testing.T) {
	svc := newTestService(newMemStore(), day(2026, time.March, 10, 9))
	ctx := context.Background()

	svc.ToolUsage(ctx, "dev1", "timer")
	svc.ToolUsage(ctx, "dev1", "timer")
	result := svc.ToolUsage(ctx, "dev1", "notes")

	if result.Record.Counter(models.CounterToolsUsed) != 3 {
		t.Errorf("lifetime tool counter should count every use, got %d", result.Record.Counter(models.CounterToolsUsed))
	}

	challenges := svc.GetDailyChallenges(ctx, "dev1")
	for _, st := range challenges.Challenges {
		if st.ID == "daily_tools" && st.Progress != 2 {
			t.Errorf("expected 2 distinct tools today, got %d", st.Progress)
		}
	}
}
