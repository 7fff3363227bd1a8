package content

import (
	"fmt"
	"strings"

	"github.com/prepdeck/backend/internal/models"
	"github.com/prepdeck/backend/internal/progress"
	"github.com/xuri/excelize/v2"
)

const (
	progressSheet   = "Progress"
	flashcardsSheet = "Flashcards"
	questionsSheet  = "Questions"
)

// BuildWorkbook renders the progress record and saved content as an xlsx
// workbook for offline review. guide may be nil when no study-guide document
// is stored.
func BuildWorkbook(rec *models.ProgressRecord, guide *models.StudyGuideProgress, cards []models.SavedFlashcard, questions []models.SavedQuestion) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", progressSheet); err != nil {
		return nil, fmt.Errorf("rename progress sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Experience Points", rec.ExperiencePoints},
		{"Lifetime Experience Points", rec.TotalExperiencePoints},
		{"Level", rec.Level},
		{"Streak Days", rec.StreakDays},
		{"Study Guide Percent", rec.StudyGuidePercent},
		{"Achievements Unlocked", strings.Join(rec.UnlockedAchievements, ", ")},
	}
	if guide != nil {
		rows = append(rows, []interface{}{"Study Guide Items Done", fmt.Sprintf("%d/%d (%.0f%%)", len(guide.CompletedItems), guide.TotalItems, guide.Percent())})
	}
	if rec.LastActivityDate != nil {
		rows = append(rows, []interface{}{"Last Activity", rec.LastActivityDate.Format("2006-01-02")})
	}
	for _, name := range []string{
		models.CounterFlashcardsCompleted,
		models.CounterQuestionsViewed,
		models.CounterStudyGuideItems,
		models.CounterLessonsCompleted,
		models.CounterToolsUsed,
		models.CounterDailyLogins,
	} {
		rows = append(rows, []interface{}{name, rec.Counter(name)})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(progressSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write progress row: %w", err)
		}
	}

	if _, err := f.NewSheet(flashcardsSheet); err != nil {
		return nil, fmt.Errorf("create flashcards sheet: %w", err)
	}
	header := []interface{}{"Front", "Back", "Topic"}
	if err := f.SetSheetRow(flashcardsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write flashcards header: %w", err)
	}
	for i, card := range cards {
		row := []interface{}{card.Front, card.Back, card.Topic}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(flashcardsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write flashcard row: %w", err)
		}
	}

	if _, err := f.NewSheet(questionsSheet); err != nil {
		return nil, fmt.Errorf("create questions sheet: %w", err)
	}
	qHeader := []interface{}{"Question", "Category"}
	if err := f.SetSheetRow(questionsSheet, "A1", &qHeader); err != nil {
		return nil, fmt.Errorf("write questions header: %w", err)
	}
	for i, q := range questions {
		row := []interface{}{q.Question, q.Category}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(questionsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write question row: %w", err)
		}
	}

	return f, nil
}

// levelSummary is a convenience for the export filename.
func levelSummary(rec *models.ProgressRecord) string {
	return fmt.Sprintf("level-%d", progress.Level(rec.ExperiencePoints))
}
