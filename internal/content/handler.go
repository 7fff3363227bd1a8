package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prepdeck/backend/internal/device"
	"github.com/prepdeck/backend/internal/models"
	"github.com/prepdeck/backend/internal/progress"
	"github.com/prepdeck/backend/internal/storage"
)

// maxDocumentBytes bounds a saved-content document.
const maxDocumentBytes = 1 << 20

type Handler struct {
	service  *Service
	progress *progress.Service
}

func NewHandler(service *Service, progressService *progress.Service) *Handler {
	return &Handler{service: service, progress: progressService}
}

// ── Saved Collections ───────────────────────────────────

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	collection := mux.Vars(r)["collection"]
	doc, err := h.service.GetDocument(r.Context(), deviceID, collection)
	if errors.Is(err, ErrUnknownCollection) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Unknown collection"})
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No document stored"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load document"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *Handler) SaveDocument(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	collection := mux.Vars(r)["collection"]
	doc, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil || len(doc) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Request body required"})
		return
	}
	if len(doc) > maxDocumentBytes {
		writeJSON(w, http.StatusRequestEntityTooLarge, models.ErrorResponse{Error: "Document too large"})
		return
	}

	err = h.service.SaveDocument(r.Context(), deviceID, collection, doc)
	switch {
	case errors.Is(err, ErrUnknownCollection):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Unknown collection"})
		return
	case errors.Is(err, ErrInvalidDocument):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Document must be valid JSON"})
		return
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save document"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "collection": collection})
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	collection := mux.Vars(r)["collection"]
	err := h.service.DeleteDocument(r.Context(), deviceID, collection)
	if errors.Is(err, ErrUnknownCollection) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Unknown collection"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to delete document"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "collection": collection})
}

// ── Export ──────────────────────────────────────────────

// Export streams an xlsx workbook of the device's progress and saved
// flashcards.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := device.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Device token required"})
		return
	}

	rec := h.progress.GetProgress(r.Context(), deviceID)

	// Saved documents are optional; an unparseable or missing one just leaves
	// its sheet empty.
	var cards []models.SavedFlashcard
	if doc, err := h.service.GetDocument(r.Context(), deviceID, storage.CollectionSavedFlashcards); err == nil {
		if err := json.Unmarshal(doc, &cards); err != nil {
			log.Printf("[content] saved flashcards for device %s not exportable: %v", deviceID, err)
		}
	}
	var questions []models.SavedQuestion
	if doc, err := h.service.GetDocument(r.Context(), deviceID, storage.CollectionSavedQuestions); err == nil {
		if err := json.Unmarshal(doc, &questions); err != nil {
			log.Printf("[content] saved questions for device %s not exportable: %v", deviceID, err)
		}
	}
	var guide *models.StudyGuideProgress
	if doc, err := h.service.GetDocument(r.Context(), deviceID, storage.CollectionStudyGuideProgress); err == nil {
		guide = &models.StudyGuideProgress{}
		if err := json.Unmarshal(doc, guide); err != nil {
			log.Printf("[content] study guide for device %s not exportable: %v", deviceID, err)
			guide = nil
		}
	}

	f, err := BuildWorkbook(rec, guide, cards, questions)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to build export"})
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("prepdeck-%s.xlsx", levelSummary(rec))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		log.Printf("[content] failed to stream export for device %s: %v", deviceID, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
