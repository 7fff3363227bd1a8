package models

// Saved-content collections are owned by the persistence adapter and stored as
// raw JSON documents. The shapes below cover the fields the backend itself
// reads (export); clients may store additional fields freely.

type SavedFlashcard struct {
	ID    string `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back"`
	Topic string `json:"topic,omitempty"`
}

type SavedQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
}

// StudyGuideProgress mirrors the study-guide checklist document.
type StudyGuideProgress struct {
	TotalItems     int      `json:"total_items"`
	CompletedItems []string `json:"completed_items"`
}

// Percent returns study-guide completion as 0-100.
func (p StudyGuideProgress) Percent() float64 {
	if p.TotalItems <= 0 {
		return 0
	}
	pct := float64(len(p.CompletedItems)) / float64(p.TotalItems) * 100
	if pct > 100 {
		return 100
	}
	return pct
}

type DeviceRegisterResponse struct {
	DeviceID string `json:"device_id"`
	Token    string `json:"token"`
}
