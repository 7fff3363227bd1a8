package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/prepdeck/backend/internal/events"
	"github.com/prepdeck/backend/internal/models"
	"github.com/prepdeck/backend/internal/storage"
)

// Fixed XP values for the per-activity operations.
const (
	XPFlashcardComplete = 5
	XPFlashcardCorrect  = 10
	XPQuestionView      = 2
	XPStudyGuideItem    = 3
	XPLessonComplete    = 15
	XPToolUsage         = 5
	XPDailyLogin        = 25
)

// AwardResult reports the outcome of a single award operation.
type AwardResult struct {
	Record              *models.ProgressRecord
	XPAwarded           int64 // base amount plus challenge and achievement rewards
	LeveledUp           bool
	Unlocked            []AchievementDef
	CompletedChallenges []ChallengeDef
}

// Service owns every progress-record mutation. Each operation loads the
// device's record, applies the transition rules, and persists the result; the
// mutated in-memory record is authoritative even when the durable write fails.
type Service struct {
	store storage.Store
	bus   *events.Bus
	now   func() time.Time
}

func NewService(store storage.Store, bus *events.Bus) *Service {
	return &Service{store: store, bus: bus, now: time.Now}
}

// ── Award Pipeline ──────────────────────────────────────

type awardInput struct {
	amount          int64
	source          string
	counter         string      // activity counter to increment, if any
	daily           DayActivity // delta for the daily challenge ledger
	touchDaily      bool
	guidePercent    float64
	hasGuidePercent bool
}

// award is the single mutation path. The achievement evaluator runs exactly
// once per call: an achievement reward that itself crosses another
// achievement's threshold is not unlocked until the next mutation
// (singleEvaluationPerAward).
func (s *Service) award(ctx context.Context, deviceID string, in awardInput) *AwardResult {
	now := s.now()
	rec := s.loadRecord(ctx, deviceID)
	prior := rec.Clone()

	if in.counter != "" {
		rec.ActivityCounters[in.counter]++
	}
	if in.hasGuidePercent {
		rec.StudyGuidePercent = in.guidePercent
	}

	prevLevel := Level(rec.ExperiencePoints)
	awarded := in.amount
	rec.ExperiencePoints += in.amount
	rec.TotalExperiencePoints += in.amount

	rec.StreakDays = NextStreak(rec.StreakDays, rec.LastActivityDate, now)
	rec.LastActivityDate = &now

	var ledger *models.DailyChallengeLedger
	var completed []ChallengeDef
	if in.touchDaily {
		ledger = LedgerForDay(s.loadLedger(ctx, deviceID), now)
		completed = ApplyDailyActivity(ledger, in.daily)
		for _, def := range completed {
			rec.ExperiencePoints += def.RewardXP
			rec.TotalExperiencePoints += def.RewardXP
			awarded += def.RewardXP
		}
	}

	// Level must reflect the candidate XP before achievements are checked so
	// level-threshold requirements see this award.
	rec.Level = Level(rec.ExperiencePoints)

	unlocked := EvaluateAchievements(prior, rec)
	for _, def := range unlocked {
		rec.UnlockedAchievements = append(rec.UnlockedAchievements, def.ID)
		rec.ExperiencePoints += def.RewardXP
		rec.TotalExperiencePoints += def.RewardXP
		awarded += def.RewardXP
	}

	rec.Level = Level(rec.ExperiencePoints)
	rec.UpdatedAt = now
	leveledUp := rec.Level > prevLevel

	s.saveRecord(ctx, deviceID, rec)
	if ledger != nil {
		s.saveLedger(ctx, deviceID, ledger)
	}

	s.bus.Publish(events.Event{Topic: events.TopicProgressUpdated, DeviceID: deviceID, Payload: in.source})
	if leveledUp {
		s.bus.Publish(events.Event{Topic: events.TopicLevelUp, DeviceID: deviceID, Payload: rec.Level})
	}

	return &AwardResult{
		Record:              rec,
		XPAwarded:           awarded,
		LeveledUp:           leveledUp,
		Unlocked:            unlocked,
		CompletedChallenges: completed,
	}
}

// AwardExperience adds a positive amount of experience from an arbitrary
// source and returns the updated record.
func (s *Service) AwardExperience(ctx context.Context, deviceID string, amount int64, source string) (*AwardResult, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return s.award(ctx, deviceID, awardInput{amount: amount, source: source}), nil
}

// ── Per-Activity Operations ─────────────────────────────

func (s *Service) FlashcardComplete(ctx context.Context, deviceID string, correct bool) *AwardResult {
	amount := int64(XPFlashcardComplete)
	source := "flashcard_complete"
	if correct {
		amount = XPFlashcardCorrect
		source = "flashcard_correct"
	}
	return s.award(ctx, deviceID, awardInput{
		amount:     amount,
		source:     source,
		counter:    models.CounterFlashcardsCompleted,
		daily:      DayActivity{Flashcards: 1},
		touchDaily: true,
	})
}

func (s *Service) QuestionView(ctx context.Context, deviceID string) *AwardResult {
	return s.award(ctx, deviceID, awardInput{
		amount:     XPQuestionView,
		source:     "question_view",
		counter:    models.CounterQuestionsViewed,
		daily:      DayActivity{Questions: 1},
		touchDaily: true,
	})
}

// StudyGuideItem records a completed study-guide item. The completion percent
// is supplied externally and kept on the record for achievement checks.
func (s *Service) StudyGuideItem(ctx context.Context, deviceID string, percent float64) *AwardResult {
	return s.award(ctx, deviceID, awardInput{
		amount:          XPStudyGuideItem,
		source:          "study_guide_item",
		counter:         models.CounterStudyGuideItems,
		guidePercent:    percent,
		hasGuidePercent: true,
	})
}

func (s *Service) LessonComplete(ctx context.Context, deviceID string) *AwardResult {
	return s.award(ctx, deviceID, awardInput{
		amount:  XPLessonComplete,
		source:  "lesson_complete",
		counter: models.CounterLessonsCompleted,
	})
}

func (s *Service) ToolUsage(ctx context.Context, deviceID, tool string) *AwardResult {
	return s.award(ctx, deviceID, awardInput{
		amount:     XPToolUsage,
		source:     "tool_usage",
		counter:    models.CounterToolsUsed,
		daily:      DayActivity{Tool: tool},
		touchDaily: true,
	})
}

func (s *Service) DailyLogin(ctx context.Context, deviceID string) *AwardResult {
	return s.award(ctx, deviceID, awardInput{
		amount:  XPDailyLogin,
		source:  "daily_login",
		counter: models.CounterDailyLogins,
	})
}

// AddStudyMinutes feeds the study-time challenge from the external clock
// collaborator. It awards no base XP of its own; only a challenge completion
// pays out.
func (s *Service) AddStudyMinutes(ctx context.Context, deviceID string, minutes int) *AwardResult {
	if minutes < 0 {
		minutes = 0
	}
	return s.award(ctx, deviceID, awardInput{
		source:     "study_minutes",
		daily:      DayActivity{StudyMinutes: minutes},
		touchDaily: true,
	})
}

// ── Reads ───────────────────────────────────────────────

// GetProgress returns the device's record, or the all-zero default when none
// is stored.
func (s *Service) GetProgress(ctx context.Context, deviceID string) *models.ProgressRecord {
	return s.loadRecord(ctx, deviceID)
}

// GetDailyChallenges returns today's challenge states, rolling a stale ledger
// over before reading.
func (s *Service) GetDailyChallenges(ctx context.Context, deviceID string) *models.DailyChallengesResponse {
	ledger := LedgerForDay(s.loadLedger(ctx, deviceID), s.now())

	resp := &models.DailyChallengesResponse{Date: ledger.Date, Challenges: []models.ChallengeStatus{}}
	for _, def := range DailyChallenges {
		status := models.ChallengeStatus{ChallengeInfo: def.Info()}
		if st := ledger.Challenges[def.ID]; st != nil {
			status.Progress = st.Progress
			status.Completed = st.Completed
		}
		resp.Challenges = append(resp.Challenges, status)
	}
	return resp
}

// ResetProgress overwrites the record with the all-zero default.
func (s *Service) ResetProgress(ctx context.Context, deviceID string) *models.ProgressRecord {
	rec := models.NewProgressRecord()
	rec.UpdatedAt = s.now()
	s.saveRecord(ctx, deviceID, rec)
	s.bus.Publish(events.Event{Topic: events.TopicProgressUpdated, DeviceID: deviceID, Payload: "reset"})
	return rec
}

// ── Maintenance ─────────────────────────────────────────

// SweepStaleLedgers deletes challenge ledgers keyed to a day other than today.
// Rollover is lazy on read; the sweep just keeps the collection from
// accumulating dead documents.
func (s *Service) SweepStaleLedgers(ctx context.Context) (int, error) {
	keys, err := s.store.Keys(ctx, storage.CollectionDailyChallenges)
	if err != nil {
		return 0, fmt.Errorf("list ledgers: %w", err)
	}

	today := s.now().Format(ledgerDateLayout)
	removed := 0
	for _, deviceID := range keys {
		ledger := s.loadLedger(ctx, deviceID)
		if ledger == nil || ledger.Date == today {
			continue
		}
		if err := s.store.Delete(ctx, storage.CollectionDailyChallenges, deviceID); err != nil {
			log.Printf("[progress] sweep: failed to delete ledger for device %s: %v", deviceID, err)
			continue
		}
		removed++
	}
	return removed, nil
}

// ── Persistence Helpers ─────────────────────────────────

// loadRecord never fails: a missing document yields the default record and a
// corrupt one is logged and replaced.
func (s *Service) loadRecord(ctx context.Context, deviceID string) *models.ProgressRecord {
	data, err := s.store.Load(ctx, storage.CollectionGameState, deviceID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.NewProgressRecord()
	}
	if err != nil {
		log.Printf("[progress] failed to load record for device %s: %v", deviceID, err)
		return models.NewProgressRecord()
	}

	var rec models.ProgressRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.Printf("[progress] corrupt record for device %s, resetting: %v", deviceID, err)
		return models.NewProgressRecord()
	}
	if rec.ActivityCounters == nil {
		rec.ActivityCounters = map[string]int{}
	}
	if rec.UnlockedAchievements == nil {
		rec.UnlockedAchievements = []string{}
	}
	if rec.Level < 1 {
		rec.Level = 1
	}
	return &rec
}

func (s *Service) loadLedger(ctx context.Context, deviceID string) *models.DailyChallengeLedger {
	data, err := s.store.Load(ctx, storage.CollectionDailyChallenges, deviceID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("[progress] failed to load ledger for device %s: %v", deviceID, err)
		}
		return nil
	}

	var ledger models.DailyChallengeLedger
	if err := json.Unmarshal(data, &ledger); err != nil {
		log.Printf("[progress] corrupt ledger for device %s, resetting: %v", deviceID, err)
		return nil
	}
	return &ledger
}

// saveRecord logs and swallows write failures: the in-memory record stays the
// source of truth for the rest of the session.
func (s *Service) saveRecord(ctx context.Context, deviceID string, rec *models.ProgressRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		log.Printf("[progress] failed to marshal record for device %s: %v", deviceID, err)
		return
	}
	if err := s.store.Save(ctx, storage.CollectionGameState, deviceID, data); err != nil {
		log.Printf("[progress] failed to persist record for device %s: %v", deviceID, err)
	}
}

func (s *Service) saveLedger(ctx context.Context, deviceID string, ledger *models.DailyChallengeLedger) {
	data, err := json.Marshal(ledger)
	if err != nil {
		log.Printf("[progress] failed to marshal ledger for device %s: %v", deviceID, err)
		return
	}
	if err := s.store.Save(ctx, storage.CollectionDailyChallenges, deviceID, data); err != nil {
		log.Printf("[progress] failed to persist ledger for device %s: %v", deviceID, err)
	}
}
