package jobs

import (
	"testing"
	"time"

	"github.com/guiibarros/nlw-ai/internal/domain"
)

// TestEventBusSince verifies incremental event reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(5)
	bus.Publish(Event{Type: EventTypeStatus, Status: domain.UploadStatusConverting})
	bus.Publish(Event{Type: EventTypeStatus, Status: domain.UploadStatusUploading})
	bus.Publish(Event{Type: EventTypeResult, VideoID: "vid-1"})

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
	if events[1].VideoID != "vid-1" {
		t.Fatalf("result video id = %q, want vid-1", events[1].VideoID)
	}

	if got := bus.Since(3); len(got) != 0 {
		t.Fatalf("Since(3) = %v, want empty", got)
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Message: "1"})
	bus.Publish(Event{Message: "2"})
	bus.Publish(Event{Message: "3"})

	events := bus.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Message != "2" || events[1].Message != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestEventBusStampsPublishedEvents verifies sequence and timestamp fill-in.
func TestEventBusStampsPublishedEvents(t *testing.T) {
	bus := NewEventBus(5)

	first := bus.Publish(Event{Type: EventTypeStatus})
	second := bus.Publish(Event{Type: EventTypeLog})

	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("seqs = %d, %d, want 1, 2", first.Seq, second.Seq)
	}
	if first.Timestamp.IsZero() || second.Timestamp.IsZero() {
		t.Fatal("published events should carry timestamps")
	}
	if first.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp location = %v, want UTC", first.Timestamp.Location())
	}
}
