// Package events provides the in-process publish/subscribe channel used to
// notify observers of state changes (progress updates, level-ups, saved
// content). Subscribers are decoupled from publishers; a slow subscriber never
// blocks a mutation.
package events

import (
	"sync"
	"time"
)

// Topics published by the application.
const (
	TopicProgressUpdated = "progress.updated"
	TopicLevelUp         = "progress.levelup"
	TopicContentSaved    = "content.saved"
)

// Event is a broadcast notification.
type Event struct {
	Topic    string
	DeviceID string
	Payload  any
	At       time.Time
}

type subscriber struct {
	id int
	ch chan Event
}

// Bus fans events out to topic subscribers. Publishing never blocks: events
// are dropped for subscribers whose buffer is full.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string][]subscriber
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]subscriber{}}
}

// Subscribe registers a buffered channel for a topic. The returned cancel
// function removes the subscription and closes the channel.
func (b *Bus) Subscribe(topic string, buffer int) (<-chan Event, func()) {
	if buffer < 1 {
		buffer = 1
	}

	b.mu.Lock()
	b.nextID++
	sub := subscriber{id: b.nextID, ch: make(chan Event, buffer)}
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		list := b.subs[topic]
		for i, s := range list {
			if s.id == sub.id {
				b.subs[topic] = append(list[:i], list[i+1:]...)
				close(s.ch)
				return
			}
		}
	}
	return sub.ch, cancel
}

// Publish delivers the event to every subscriber of its topic.
func (b *Bus) Publish(evt Event) {
	if evt.At.IsZero() {
		evt.At = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs[evt.Topic] {
		select {
		case s.ch <- evt:
		default:
			// Subscriber buffer full — drop rather than block the mutation path.
		}
	}
}
