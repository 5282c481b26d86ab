package event

import (
	"sync"
	"testing"

	"github.com/coldhawk/coldhawk/internal/board"
)

func TestBusSubscribe(t *testing.T) {
	bus := NewBus()

	called := false
	id := bus.Subscribe("session.log", func(e Event) {
		called = true
	})

	if id == "" {
		t.Error("Subscribe should return a non-empty ID")
	}
	if bus.SubscriptionCount() != 1 {
		t.Errorf("expected 1 subscription, got %d", bus.SubscriptionCount())
	}
	if called {
		t.Error("handler should not be called until an event is published")
	}
}

func TestBusPublish(t *testing.T) {
	bus := NewBus()

	var received Event
	bus.Subscribe("session.state_changed", func(e Event) {
		received = e
	})

	bus.Publish(NewStateChangedEvent(1, StateRunning))

	if received == nil {
		t.Fatal("handler should have received the event")
	}
	sc, ok := received.(StateChangedEvent)
	if !ok {
		t.Fatalf("received %T, want StateChangedEvent", received)
	}
	if sc.SessionID != 1 || sc.State != StateRunning {
		t.Errorf("unexpected event contents: %+v", sc)
	}
}

func TestBusPublishNoMatchingHandlers(t *testing.T) {
	bus := NewBus()

	bus.Subscribe("session.progress", func(e Event) {
		t.Error("handler should not be called for non-matching event type")
	})

	bus.Publish(NewLogEvent(1, "tab-1", "hello", LevelInfo))
}

func TestBusSubscribeAll(t *testing.T) {
	bus := NewBus()

	var got []string
	bus.SubscribeAll(func(e Event) {
		got = append(got, e.EventType())
	})

	bus.Publish(NewLogEvent(1, "tab-1", "login ok", LevelSuccess))
	bus.Publish(NewProgressEvent(1, 1, 1, 1))
	bus.Publish(NewPostCreatedEvent(1, board.PostRef{PostID: "9"}))

	want := []string{"session.log", "session.progress", "session.post_created"}
	if len(got) != len(want) {
		t.Fatalf("wildcard handler saw %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBusOrderingSpecificBeforeWildcard(t *testing.T) {
	bus := NewBus()

	var order []string
	bus.SubscribeAll(func(e Event) {
		order = append(order, "wildcard")
	})
	bus.Subscribe("session.log", func(e Event) {
		order = append(order, "specific")
	})

	bus.Publish(NewLogEvent(1, "tab-1", "x", LevelInfo))

	if len(order) != 2 || order[0] != "specific" || order[1] != "wildcard" {
		t.Errorf("dispatch order = %v, want [specific wildcard]", order)
	}
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus()

	calls := 0
	id := bus.Subscribe("session.log", func(e Event) {
		calls++
	})

	bus.Publish(NewLogEvent(1, "tab-1", "first", LevelInfo))

	if !bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return true for a live subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("Unsubscribe should return false the second time")
	}

	bus.Publish(NewLogEvent(1, "tab-1", "second", LevelInfo))

	if calls != 1 {
		t.Errorf("handler called %d times, want 1", calls)
	}
}

func TestBusPanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe("session.log", func(e Event) {
		panic("handler bug")
	})
	bus.Subscribe("session.log", func(e Event) {
		called = true
	})

	bus.Publish(NewLogEvent(1, "tab-1", "x", LevelInfo))

	if !called {
		t.Error("second handler should run despite the first panicking")
	}
}

func TestBusConcurrentPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	count := 0
	bus.SubscribeAll(func(e Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				bus.Publish(NewProgressEvent(id, j, 100, j))
			}
		}(i)
	}
	wg.Wait()

	if count != 1000 {
		t.Errorf("handler called %d times, want 1000", count)
	}
}

func TestBusClear(t *testing.T) {
	bus := NewBus()
	bus.Subscribe("a", func(Event) {})
	bus.Subscribe("b", func(Event) {})

	bus.Clear()

	if bus.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after Clear", bus.SubscriptionCount())
	}
}
