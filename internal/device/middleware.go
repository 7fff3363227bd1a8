package device

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prepdeck/backend/internal/models"
)

type contextKey struct{}

var deviceIDKey contextKey

// FromContext returns the device ID placed by Middleware.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(deviceIDKey).(string)
	return id, ok
}

// WithDeviceID returns a context carrying the device ID. Exposed for handler
// tests.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDKey, deviceID)
}

// Middleware extracts and verifies the bearer device token.
func Middleware(secret []byte) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "Device token required")
				return
			}

			deviceID, err := ParseToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid device token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithDeviceID(r.Context(), deviceID)))
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
