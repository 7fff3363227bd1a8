package progress

import (
	"encoding/json"
	"net/http"

	"github.com/prepdeck/backend/internal/device"
	"github.com/prepdeck/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ── Progress State ──────────────────────────────────────

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	rec := h.service.GetProgress(r.Context(), deviceID)
	writeJSON(w, http.StatusOK, progressResponse(rec))
}

func (h *Handler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	rec := h.service.ResetProgress(r.Context(), deviceID)
	writeJSON(w, http.StatusOK, progressResponse(rec))
}

func (h *Handler) AwardExperience(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	var req models.AwardExperienceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.AwardExperience(r.Context(), deviceID, req.Amount, req.Source)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, awardResponse(result))
}

// ── Activity Operations ─────────────────────────────────

func (h *Handler) FlashcardComplete(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	var req models.FlashcardActivityRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req) // body is optional; defaults apply
	}

	result := h.service.FlashcardComplete(r.Context(), deviceID, req.Correct)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

func (h *Handler) QuestionView(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	result := h.service.QuestionView(r.Context(), deviceID)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

func (h *Handler) StudyGuideItem(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	var req models.StudyGuideActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Percent < 0 || req.Percent > 100 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "percent must be between 0 and 100"})
		return
	}

	result := h.service.StudyGuideItem(r.Context(), deviceID, req.Percent)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

func (h *Handler) LessonComplete(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	result := h.service.LessonComplete(r.Context(), deviceID)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

func (h *Handler) ToolUsage(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	var req models.ToolActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	result := h.service.ToolUsage(r.Context(), deviceID, req.Name)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

func (h *Handler) DailyLogin(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	result := h.service.DailyLogin(r.Context(), deviceID)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

func (h *Handler) AddStudyMinutes(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	var req models.StudyMinutesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result := h.service.AddStudyMinutes(r.Context(), deviceID, req.Minutes)
	writeJSON(w, http.StatusOK, awardResponse(result))
}

// ── Daily Challenges ────────────────────────────────────

func (h *Handler) GetDailyChallenges(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	writeJSON(w, http.StatusOK, h.service.GetDailyChallenges(r.Context(), deviceID))
}

// ── Helpers ─────────────────────────────────────────────

func progressResponse(rec *models.ProgressRecord) models.ProgressResponse {
	achievements := make([]models.AchievementStatus, 0, len(Achievements))
	for _, def := range Achievements {
		achievements = append(achievements, models.AchievementStatus{
			AchievementInfo: def.Info(),
			Unlocked:        rec.HasAchievement(def.ID),
		})
	}

	return models.ProgressResponse{
		ExperiencePoints:      rec.ExperiencePoints,
		TotalExperiencePoints: rec.TotalExperiencePoints,
		Level:                 rec.Level,
		LevelProgress:         ProgressWithinLevel(rec.ExperiencePoints),
		StreakDays:            rec.StreakDays,
		LastActivityDate:      rec.LastActivityDate,
		StudyGuidePercent:     rec.StudyGuidePercent,
		ActivityCounters:      rec.ActivityCounters,
		Achievements:          achievements,
	}
}

func awardResponse(result *AwardResult) models.AwardResponse {
	unlocked := make([]models.AchievementInfo, 0, len(result.Unlocked))
	for _, def := range result.Unlocked {
		unlocked = append(unlocked, def.Info())
	}
	completed := make([]models.ChallengeInfo, 0, len(result.CompletedChallenges))
	for _, def := range result.CompletedChallenges {
		completed = append(completed, def.Info())
	}

	rec := result.Record
	return models.AwardResponse{
		XPAwarded:             result.XPAwarded,
		ExperiencePoints:      rec.ExperiencePoints,
		TotalExperiencePoints: rec.TotalExperiencePoints,
		Level:                 rec.Level,
		LevelProgress:         ProgressWithinLevel(rec.ExperiencePoints),
		StreakDays:            rec.StreakDays,
		LeveledUp:             result.LeveledUp,
		UnlockedAchievements:  unlocked,
		CompletedChallenges:   completed,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
