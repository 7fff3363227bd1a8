package models

import "time"

// ── Activity Counter Names ────────────────────────────────

const (
	CounterFlashcardsCompleted = "flashcardsCompleted"
	CounterQuestionsViewed     = "questionsViewed"
	CounterStudyGuideItems     = "studyGuideItemsCompleted"
	CounterLessonsCompleted    = "lessonsCompleted"
	CounterToolsUsed           = "toolsUsed"
	CounterDailyLogins         = "dailyLogins"
)

// ── Progress Record ───────────────────────────────────────

// ProgressRecord is the authoritative gamification state for one device.
// Level is always derived from ExperiencePoints; it is stored only so the
// persisted document matches what clients render.
type ProgressRecord struct {
	ExperiencePoints      int64          `json:"experience_points"`
	TotalExperiencePoints int64          `json:"total_experience_points"`
	Level                 int            `json:"level"`
	StreakDays            int            `json:"streak_days"`
	LastActivityDate      *time.Time     `json:"last_activity_date"`
	StudyGuidePercent     float64        `json:"study_guide_percent"`
	UnlockedAchievements  []string       `json:"unlocked_achievements"`
	ActivityCounters      map[string]int `json:"activity_counters"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// NewProgressRecord returns the all-zero default record used on first read.
func NewProgressRecord() *ProgressRecord {
	return &ProgressRecord{
		Level:                1,
		UnlockedAchievements: []string{},
		ActivityCounters:     map[string]int{},
	}
}

// Counter returns the value of a named activity counter (0 if absent).
func (r *ProgressRecord) Counter(name string) int {
	return r.ActivityCounters[name]
}

// HasAchievement reports whether the achievement id is already unlocked.
func (r *ProgressRecord) HasAchievement(id string) bool {
	for _, a := range r.UnlockedAchievements {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, used to snapshot the record before a mutation.
func (r *ProgressRecord) Clone() *ProgressRecord {
	c := *r
	c.UnlockedAchievements = append([]string{}, r.UnlockedAchievements...)
	c.ActivityCounters = make(map[string]int, len(r.ActivityCounters))
	for k, v := range r.ActivityCounters {
		c.ActivityCounters[k] = v
	}
	if r.LastActivityDate != nil {
		d := *r.LastActivityDate
		c.LastActivityDate = &d
	}
	return &c
}

// ── Daily Challenge Ledger ────────────────────────────────

// ChallengeState is the per-challenge entry in the daily ledger.
// Completion is one-way within the ledger's day.
type ChallengeState struct {
	Completed bool `json:"completed"`
	Progress  int  `json:"progress"`
}

// DailyChallengeLedger tracks one calendar day of challenge progress.
// A ledger whose Date does not match today is discarded before any read.
type DailyChallengeLedger struct {
	Date         string                     `json:"date"` // local calendar day, 2006-01-02
	Flashcards   int                        `json:"flashcards"`
	Questions    int                        `json:"questions"`
	StudyMinutes int                        `json:"study_minutes"`
	ToolsUsed    []string                   `json:"tools_used"` // distinct tool names used today
	Challenges   map[string]*ChallengeState `json:"challenges"`
}

// NewDailyChallengeLedger returns an empty ledger for the given day.
func NewDailyChallengeLedger(date string) *DailyChallengeLedger {
	return &DailyChallengeLedger{
		Date:       date,
		ToolsUsed:  []string{},
		Challenges: map[string]*ChallengeState{},
	}
}

// UsedTool reports whether the tool was already counted today.
func (l *DailyChallengeLedger) UsedTool(name string) bool {
	for _, t := range l.ToolsUsed {
		if t == name {
			return true
		}
	}
	return false
}

// ── Request Types ─────────────────────────────────────────

type AwardExperienceRequest struct {
	Amount int64  `json:"amount"`
	Source string `json:"source"`
}

type FlashcardActivityRequest struct {
	Correct bool `json:"correct"`
}

type ToolActivityRequest struct {
	Name string `json:"name"`
}

type StudyGuideActivityRequest struct {
	Percent float64 `json:"percent"`
}

type StudyMinutesRequest struct {
	Minutes int `json:"minutes"`
}

// ── Response Types ────────────────────────────────────────

type LevelProgressInfo struct {
	Level            int     `json:"level"`
	XPIntoLevel      int64   `json:"xp_into_level"`
	XPNeededForLevel int64   `json:"xp_needed_for_level"`
	Percent          float64 `json:"percent"`
}

type AchievementInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	RewardXP    int64  `json:"reward_xp"`
}

type AchievementStatus struct {
	AchievementInfo
	Unlocked bool `json:"unlocked"`
}

type ChallengeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Target      int    `json:"target"`
	RewardXP    int64  `json:"reward_xp"`
}

type ChallengeStatus struct {
	ChallengeInfo
	Progress  int  `json:"progress"`
	Completed bool `json:"completed"`
}

type ProgressResponse struct {
	ExperiencePoints      int64               `json:"experience_points"`
	TotalExperiencePoints int64               `json:"total_experience_points"`
	Level                 int                 `json:"level"`
	LevelProgress         LevelProgressInfo   `json:"level_progress"`
	StreakDays            int                 `json:"streak_days"`
	LastActivityDate      *time.Time          `json:"last_activity_date"`
	StudyGuidePercent     float64             `json:"study_guide_percent"`
	ActivityCounters      map[string]int      `json:"activity_counters"`
	Achievements          []AchievementStatus `json:"achievements"`
}

type AwardResponse struct {
	XPAwarded             int64             `json:"xp_awarded"`
	ExperiencePoints      int64             `json:"experience_points"`
	TotalExperiencePoints int64             `json:"total_experience_points"`
	Level                 int               `json:"level"`
	LevelProgress         LevelProgressInfo `json:"level_progress"`
	StreakDays            int               `json:"streak_days"`
	LeveledUp             bool              `json:"leveled_up"`
	UnlockedAchievements  []AchievementInfo `json:"unlocked_achievements"`
	CompletedChallenges   []ChallengeInfo   `json:"completed_challenges"`
}

type DailyChallengesResponse struct {
	Date       string            `json:"date"`
	Challenges []ChallengeStatus `json:"challenges"`
}
