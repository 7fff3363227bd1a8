// Package device implements the per-device identity layer. A device registers
// once, receives an opaque uuid identifier wrapped in a signed token, and
// presents that token on every request. There is no other authentication.
package device

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// NewID generates a fresh device identifier.
func NewID() string {
	return uuid.NewString()
}

// IssueToken wraps a device ID in a signed token. Device tokens do not expire:
// the identifier is the device's only credential and is cached client-side for
// the lifetime of the installation.
func IssueToken(secret []byte, deviceID string) (string, error) {
	claims := jwt.MapClaims{
		"device_id": deviceID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies a token and returns the device ID it carries.
func ParseToken(secret []byte, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse device token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid device token")
	}

	deviceID, ok := claims["device_id"].(string)
	if !ok || deviceID == "" {
		return "", fmt.Errorf("device token missing device_id")
	}
	return deviceID, nil
}
