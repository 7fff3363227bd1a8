package storage

import (
	"context"
	"errors"
)

// Collection names. These match the document keys the web client used for its
// local fallback, so a client can sync either way without translation.
const (
	CollectionGameState           = "gameState"
	CollectionDailyChallenges     = "dailyChallenges"
	CollectionStudyGuideProgress  = "studyGuideProgress"
	CollectionSavedQuestions      = "savedQuestions"
	CollectionSavedTopics         = "savedTopics"
	CollectionSavedFlashcards     = "savedFlashcards"
	CollectionSavedGameFlashcards = "savedGameFlashcards"
)

// ErrNotFound is returned when no document exists for a collection/device pair.
var ErrNotFound = errors.New("document not found")

// Store persists one JSON document per named collection per device.
// Writes are upsert-by-key; there is no conflict detection (last write wins).
type Store interface {
	Load(ctx context.Context, collection, deviceID string) ([]byte, error)
	Save(ctx context.Context, collection, deviceID string, data []byte) error
	Delete(ctx context.Context, collection, deviceID string) error
	// Keys lists every device ID holding a document in the collection.
	Keys(ctx context.Context, collection string) ([]string, error)
	Close() error
}

var knownCollections = map[string]bool{
	CollectionGameState:           true,
	CollectionDailyChallenges:     true,
	CollectionStudyGuideProgress:  true,
	CollectionSavedQuestions:      true,
	CollectionSavedTopics:         true,
	CollectionSavedFlashcards:     true,
	CollectionSavedGameFlashcards: true,
}

// ValidCollection reports whether the name is a known collection.
func ValidCollection(name string) bool {
	return knownCollections[name]
}
