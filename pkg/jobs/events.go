package jobs

import (
	"sync"
	"time"

	"doc-narrator/pkg/domain"
)

// EventType classifies messages emitted while a job runs
type EventType string

const (
	EventTypeStatus   EventType = "status"
	EventTypeSentence EventType = "sentence"
	EventTypeResult   EventType = "result"
	EventTypeError    EventType = "error"
)

// Event is a sequenced notification about the current job
type Event struct {
	Seq       int64            `json:"seq"`
	Timestamp time.Time        `json:"timestamp"`
	JobID     string           `json:"job_id"`
	Type      EventType        `json:"type"`
	Status    domain.JobStatus `json:"status,omitempty"`
	Message   string           `json:"message,omitempty"`
	Sentence  int              `json:"sentence,omitempty"`
	Total     int              `json:"total,omitempty"`
	Spoken    bool             `json:"spoken,omitempty"`
}

// EventBus keeps the most recent events in memory for polling clients
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// DefaultMaxEvents bounds the bus when no size is configured
const DefaultMaxEvents = 500

// NewEventBus creates a bounded in-memory event buffer
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish assigns the next sequence number and a timestamp, then stores the event
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		b.events = append([]Event(nil), b.events[len(b.events)-b.maxEvents:]...)
	}
	return event
}

// Since returns the stored events with a sequence greater than seq, oldest first
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Event
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
