package events

import (
	"testing"
	"time"
)

func TestBus_PublishReachesSubscriber(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicProgressUpdated, 4)
	defer cancel()

	bus.Publish(Event{Topic: TopicProgressUpdated, DeviceID: "dev1", Payload: "flashcard"})

	select {
	case ev := <-ch:
		if ev.DeviceID != "dev1" {
			t.Errorf("expected device dev1, got %s", ev.DeviceID)
		}
		if ev.At.IsZero() {
			t.Error("expected publish timestamp to be set")
		}
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestBus_TopicIsolation(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicLevelUp, 1)
	defer cancel()

	bus.Publish(Event{Topic: TopicProgressUpdated, DeviceID: "dev1"})

	select {
	case ev := <-ch:
		t.Errorf("received event for wrong topic: %+v", ev)
	default:
	}
}

func TestBus_FullBufferDropsWithoutBlocking(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicProgressUpdated, 1)
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Event{Topic: TopicProgressUpdated, DeviceID: "dev1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	if len(ch) != 1 {
		t.Errorf("expected exactly the buffered event to survive, got %d", len(ch))
	}
}

func TestBus_CancelClosesChannel(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe(TopicContentSaved, 1)

	cancel()

	if _, open := <-ch; open {
		t.Error("expected channel closed after cancel")
	}

	// Publishing after cancel must not panic.
	bus.Publish(Event{Topic: TopicContentSaved, DeviceID: "dev1"})
}

func TestBus_MultipleSubscribers(t *testing.T) {
	bus := NewBus()
	a, cancelA := bus.Subscribe(TopicLevelUp, 1)
	defer cancelA()
	b, cancelB := bus.Subscribe(TopicLevelUp, 1)
	defer cancelB()

	bus.Publish(Event{Topic: TopicLevelUp, DeviceID: "dev1", Payload: 2})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			if ev.Payload != 2 {
				t.Errorf("expected payload 2, got %v", ev.Payload)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed broadcast")
		}
	}
}
