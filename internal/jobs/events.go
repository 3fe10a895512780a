package jobs

import (
	"sync"
	"time"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// EventType classifies messages emitted during an upload run.
type EventType string

const (
	EventTypeStatus EventType = "status"
	EventTypeLog    EventType = "log"
	EventTypeResult EventType = "result"
	EventTypeError  EventType = "error"
)

// defaultEventCap bounds the feed when callers pass no explicit limit.
const defaultEventCap = 500

// Event is a sequenced payload consumed by UI subscribers. Command
// fields are set on log events, VideoID on result events.
type Event struct {
	Seq       int64               `json:"seq"`
	Timestamp time.Time           `json:"timestamp"`
	UploadID  string              `json:"uploadId"`
	Type      EventType           `json:"type"`
	Status    domain.UploadStatus `json:"status,omitempty"`
	Message   string              `json:"message,omitempty"`
	Command   string              `json:"command,omitempty"`
	Args      []string            `json:"args,omitempty"`
	ExitCode  int                 `json:"exitCode,omitempty"`
	Stdout    string              `json:"stdout,omitempty"`
	Stderr    string              `json:"stderr,omitempty"`
	VideoID   string              `json:"videoId,omitempty"`
}

// EventBus stores recent events and provides incremental reads. The
// feed is bounded: once full, the oldest events fall off.
type EventBus struct {
	mu      sync.RWMutex
	nextSeq int64
	cap     int
	events  []Event
}

// NewEventBus creates a bounded in-memory event feed.
func NewEventBus(cap int) *EventBus {
	if cap <= 0 {
		cap = defaultEventCap
	}

	return &EventBus{
		cap:    cap,
		events: make([]Event, 0, cap),
	}
}

// Publish appends one event, assigning its sequence number and a UTC
// timestamp when the caller left it zero.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.cap {
		trimmed := make([]Event, b.cap)
		copy(trimmed, b.events[len(b.events)-b.cap:])
		b.events = trimmed
	}

	return event
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
