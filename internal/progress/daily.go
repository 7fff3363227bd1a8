package progress

import (
	"time"

	"github.com/prepdeck/backend/internal/models"
)

// ledgerDateLayout formats the local calendar day that keys a ledger.
const ledgerDateLayout = "2006-01-02"

// ChallengeDef defines one of the fixed daily challenges. Measure reads the
// challenge's current progress out of the day's ledger.
type ChallengeDef struct {
	ID          string
	Name        string
	Description string
	Target      int
	RewardXP    int64
	Measure     func(l *models.DailyChallengeLedger) int
}

// DailyChallenges is the fixed per-day goal set.
var DailyChallenges = []ChallengeDef{
	{
		ID:          "daily_flashcards",
		Name:        "Getting Started",
		Description: "Complete 5 flashcards today",
		Target:      5,
		RewardXP:    50,
		Measure:     func(l *models.DailyChallengeLedger) int { return l.Flashcards },
	},
	{
		ID:          "daily_questions",
		Name:        "Question Hound",
		Description: "View 10 questions today",
		Target:      10,
		RewardXP:    50,
		Measure:     func(l *models.DailyChallengeLedger) int { return l.Questions },
	},
	{
		ID:          "daily_study_time",
		Name:        "Deep Focus",
		Description: "Study for 30 minutes today",
		Target:      30,
		RewardXP:    75,
		Measure:     func(l *models.DailyChallengeLedger) int { return l.StudyMinutes },
	},
	{
		ID:          "daily_tools",
		Name:        "Toolbelt",
		Description: "Use 3 different tools today",
		Target:      3,
		RewardXP:    50,
		Measure:     func(l *models.DailyChallengeLedger) int { return len(l.ToolsUsed) },
	},
}

// DayActivity is the per-call delta applied to the daily ledger.
type DayActivity struct {
	Flashcards   int
	Questions    int
	StudyMinutes int
	Tool         string // tool name; counted once per distinct name per day
}

// LedgerForDay returns the ledger valid for now's calendar day. A missing
// ledger or one keyed to any other day yields a fresh empty ledger.
func LedgerForDay(l *models.DailyChallengeLedger, now time.Time) *models.DailyChallengeLedger {
	day := now.Format(ledgerDateLayout)
	if l == nil || l.Date != day {
		return models.NewDailyChallengeLedger(day)
	}
	if l.Challenges == nil {
		l.Challenges = map[string]*models.ChallengeState{}
	}
	return l
}

// ApplyDailyActivity folds the activity delta into the ledger, refreshes every
// challenge's progress, and returns the challenges completed by this delta.
// Completion is one-way: a challenge already marked completed never re-triggers
// its reward within the same day.
func ApplyDailyActivity(l *models.DailyChallengeLedger, act DayActivity) []ChallengeDef {
	l.Flashcards += act.Flashcards
	l.Questions += act.Questions
	l.StudyMinutes += act.StudyMinutes
	if act.Tool != "" && !l.UsedTool(act.Tool) {
		l.ToolsUsed = append(l.ToolsUsed, act.Tool)
	}

	var completed []ChallengeDef
	for _, def := range DailyChallenges {
		st := l.Challenges[def.ID]
		if st == nil {
			st = &models.ChallengeState{}
			l.Challenges[def.ID] = st
		}
		st.Progress = def.Measure(l)
		if !st.Completed && st.Progress >= def.Target {
			st.Completed = true
			completed = append(completed, def)
		}
	}
	return completed
}

// Info converts a definition to its wire representation.
func (d ChallengeDef) Info() models.ChallengeInfo {
	return models.ChallengeInfo{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Target:      d.Target,
		RewardXP:    d.RewardXP,
	}
}
