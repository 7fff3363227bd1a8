package device

import (
	"encoding/json"
	"net/http"

	"github.com/prepdeck/backend/internal/models"
)

type Handler struct {
	secret []byte
}

func NewHandler(secret []byte) *Handler {
	return &Handler{secret: secret}
}

// Register issues a new device identifier and its token. Clients call this
// once and cache the result.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	deviceID := NewID()

	token, err := IssueToken(h.secret, deviceID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to issue device token"})
		return
	}

	writeJSON(w, http.StatusCreated, models.DeviceRegisterResponse{DeviceID: deviceID, Token: token})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
