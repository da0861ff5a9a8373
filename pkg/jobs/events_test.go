package jobs

import "testing"

// TestEventBusSince verifies incremental reads by sequence number.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(10)
	for _, msg := range []string{"a", "b", "c"} {
		bus.Publish(Event{Type: EventTypeStatus, Message: msg})
	}

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Message != "c" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("timestamp should be set")
	}
	if got := bus.Since(3); len(got) != 0 {
		t.Fatalf("Since(last) = %+v, want none", got)
	}
}

// TestEventBusDropsOldest verifies the buffer keeps only the newest events.
func TestEventBusDropsOldest(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Message: "1"})
	bus.Publish(Event{Message: "2"})
	bus.Publish(Event{Message: "3"})

	events := bus.Since(0)
	if len(events) != 2 || events[0].Message != "2" || events[1].Seq != 3 {
		t.Fatalf("unexpected events: %+v", events)
	}
}
