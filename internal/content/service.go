// Package content owns the saved-content collections: raw JSON documents the
// client stores and reads back verbatim. The backend never interprets them
// beyond validity checks, except for the spreadsheet export.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prepdeck/backend/internal/events"
	"github.com/prepdeck/backend/internal/storage"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidDocument   = errors.New("document is not valid JSON")
)

// savedCollections are the collections clients may read and write directly.
// gameState and dailyChallenges are owned by the progress service and are not
// writable here.
var savedCollections = map[string]bool{
	storage.CollectionStudyGuideProgress:  true,
	storage.CollectionSavedQuestions:      true,
	storage.CollectionSavedTopics:         true,
	storage.CollectionSavedFlashcards:     true,
	storage.CollectionSavedGameFlashcards: true,
}

type Service struct {
	store storage.Store
	bus   *events.Bus
}

func NewService(store storage.Store, bus *events.Bus) *Service {
	return &Service{store: store, bus: bus}
}

func (s *Service) GetDocument(ctx context.Context, deviceID, collection string) (json.RawMessage, error) {
	if !savedCollections[collection] {
		return nil, ErrUnknownCollection
	}
	data, err := s.store.Load(ctx, collection, deviceID)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (s *Service) SaveDocument(ctx context.Context, deviceID, collection string, doc json.RawMessage) error {
	if !savedCollections[collection] {
		return ErrUnknownCollection
	}
	if !json.Valid(doc) {
		return ErrInvalidDocument
	}

	if err := s.store.Save(ctx, collection, deviceID, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}

	s.bus.Publish(events.Event{Topic: events.TopicContentSaved, DeviceID: deviceID, Payload: collection})
	return nil
}

func (s *Service) DeleteDocument(ctx context.Context, deviceID, collection string) error {
	if !savedCollections[collection] {
		return ErrUnknownCollection
	}
	return s.store.Delete(ctx, collection, deviceID)
}
