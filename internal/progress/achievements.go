package progress

import "github.com/prepdeck/backend/internal/models"

// Requirement is the condition that auto-unlocks an achievement. Every
// comparison is "value >= threshold". A definition with a nil Requirement is
// never auto-unlocked.
type Requirement interface {
	Met(rec *models.ProgressRecord) bool
}

// CounterAtLeast unlocks when a named activity counter reaches a threshold.
type CounterAtLeast struct {
	Counter   string
	Threshold int
}

func (q CounterAtLeast) Met(rec *models.ProgressRecord) bool {
	return rec.Counter(q.Counter) >= q.Threshold
}

// StreakAtLeast unlocks at a streak length.
type StreakAtLeast struct {
	Days int
}

func (q StreakAtLeast) Met(rec *models.ProgressRecord) bool {
	return rec.StreakDays >= q.Days
}

// LevelAtLeast unlocks at a level.
type LevelAtLeast struct {
	Level int
}

func (q LevelAtLeast) Met(rec *models.ProgressRecord) bool {
	return rec.Level >= q.Level
}

// TotalXPAtLeast unlocks at a lifetime experience total.
type TotalXPAtLeast struct {
	XP int64
}

func (q TotalXPAtLeast) Met(rec *models.ProgressRecord) bool {
	return rec.TotalExperiencePoints >= q.XP
}

// StudyGuideAtLeast unlocks at a study-guide completion percentage.
type StudyGuideAtLeast struct {
	Percent float64
}

func (q StudyGuideAtLeast) Met(rec *models.ProgressRecord) bool {
	return rec.StudyGuidePercent >= q.Percent
}

// AchievementDef defines a single achievement. The table is immutable at
// runtime and evaluated in definition order.
type AchievementDef struct {
	ID          string
	Name        string
	Description string
	Icon        string
	RewardXP    int64
	Requirement Requirement
}

// Achievements is the static achievement table.
var Achievements = []AchievementDef{
	{ID: "first_step", Name: "First Step", Description: "Complete your first flashcard", Icon: "🎯", RewardXP: 10, Requirement: CounterAtLeast{models.CounterFlashcardsCompleted, 1}},
	{ID: "flashcard_25", Name: "Card Shark", Description: "Complete 25 flashcards", Icon: "🃏", RewardXP: 25, Requirement: CounterAtLeast{models.CounterFlashcardsCompleted, 25}},
	{ID: "flashcard_100", Name: "Deck Master", Description: "Complete 100 flashcards", Icon: "📚", RewardXP: 50, Requirement: CounterAtLeast{models.CounterFlashcardsCompleted, 100}},
	{ID: "questions_10", Name: "Curious Mind", Description: "View 10 questions", Icon: "🔍", RewardXP: 10, Requirement: CounterAtLeast{models.CounterQuestionsViewed, 10}},
	{ID: "questions_100", Name: "Researcher", Description: "View 100 questions", Icon: "🔬", RewardXP: 50, Requirement: CounterAtLeast{models.CounterQuestionsViewed, 100}},
	{ID: "lessons_10", Name: "Dedicated Student", Description: "Complete 10 lessons", Icon: "✏️", RewardXP: 40, Requirement: CounterAtLeast{models.CounterLessonsCompleted, 10}},
	{ID: "tools_25", Name: "Power User", Description: "Use study tools 25 times", Icon: "🛠️", RewardXP: 25, Requirement: CounterAtLeast{models.CounterToolsUsed, 25}},
	{ID: "streak_3", Name: "Warming Up", Description: "3-day study streak", Icon: "🔥", RewardXP: 15, Requirement: StreakAtLeast{3}},
	{ID: "streak_7", Name: "Week Warrior", Description: "7-day study streak", Icon: "⚡", RewardXP: 30, Requirement: StreakAtLeast{7}},
	{ID: "streak_30", Name: "Monthly Master", Description: "30-day study streak", Icon: "🏆", RewardXP: 100, Requirement: StreakAtLeast{30}},
	{ID: "streak_100", Name: "Centurion", Description: "100-day study streak", Icon: "💎", RewardXP: 250, Requirement: StreakAtLeast{100}},
	{ID: "level_5", Name: "Climber", Description: "Reach level 5", Icon: "⛰️", RewardXP: 25, Requirement: LevelAtLeast{5}},
	{ID: "level_10", Name: "High Achiever", Description: "Reach level 10", Icon: "🚀", RewardXP: 50, Requirement: LevelAtLeast{10}},
	{ID: "xp_1000", Name: "Rising Star", Description: "Earn 1,000 lifetime XP", Icon: "🌟", RewardXP: 50, Requirement: TotalXPAtLeast{1000}},
	{ID: "xp_10000", Name: "Powerhouse", Description: "Earn 10,000 lifetime XP", Icon: "💪", RewardXP: 100, Requirement: TotalXPAtLeast{10000}},
	{ID: "guide_half", Name: "Halfway There", Description: "Complete 50% of the study guide", Icon: "🗺️", RewardXP: 40, Requirement: StudyGuideAtLeast{50}},
	{ID: "guide_complete", Name: "Guide Graduate", Description: "Complete the study guide", Icon: "🎓", RewardXP: 100, Requirement: StudyGuideAtLeast{100}},
}

// EvaluateAchievements returns the definitions newly satisfied by candidate
// that were not already unlocked. The candidate record carries the derived
// level, so prior is only consulted for documentation of the contract: the
// unlocked set lives on candidate and is append-only within a call.
func EvaluateAchievements(prior, candidate *models.ProgressRecord) []AchievementDef {
	var newly []AchievementDef
	for _, def := range Achievements {
		if def.Requirement == nil || candidate.HasAchievement(def.ID) {
			continue
		}
		if def.Requirement.Met(candidate) {
			newly = append(newly, def)
		}
	}
	return newly
}

// Info converts a definition to its wire representation.
func (d AchievementDef) Info() models.AchievementInfo {
	return models.AchievementInfo{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Icon:        d.Icon,
		RewardXP:    d.RewardXP,
	}
}
