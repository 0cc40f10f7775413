package logging

import (
	"context"
	"sync"
	"time"
)

// LogEvent is one structured log record retained by a StreamHub.
type LogEvent struct {
	Sequence  uint64            `json:"seq"`
	Timestamp time.Time         `json:"ts"`
	Level     string            `json:"level"`
	Message   string            `json:"msg"`
	Component string            `json:"component,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// StreamHub keeps the most recent log events in memory and wakes readers
// blocked in Fetch when new events are published.
type StreamHub struct {
	mu       sync.Mutex
	capacity int
	events   []LogEvent
	nextSeq  uint64
	// notify is closed and replaced on every Publish.
	notify chan struct{}
}

// NewStreamHub returns a hub retaining at most capacity events.
func NewStreamHub(capacity int) *StreamHub {
	if capacity <= 0 {
		capacity = 512
	}
	return &StreamHub{capacity: capacity, notify: make(chan struct{})}
}

// Publish assigns the next sequence number to evt and stores it.
func (h *StreamHub) Publish(evt LogEvent) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.events) == h.capacity {
		h.events = append(h.events[:0], h.events[1:]...)
	}
	h.events = append(h.events, evt)

	close(h.notify)
	h.notify = make(chan struct{})
}

// Fetch returns up to limit events newer than since along with the sequence
// to pass as since on the next call. With wait set it blocks until an event
// arrives or ctx ends; a cancelled wait returns no events and no error.
func (h *StreamHub) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]LogEvent, uint64) {
	if h == nil {
		return nil, since
	}
	for {
		h.mu.Lock()
		events, next := h.afterLocked(since, limit)
		notify := h.notify
		h.mu.Unlock()

		if len(events) > 0 || !wait {
			return events, next
		}
		select {
		case <-ctx.Done():
			return nil, next
		case <-notify:
		}
	}
}

// Tail returns the newest limit events without blocking.
func (h *StreamHub) Tail(limit int) ([]LogEvent, uint64) {
	if h == nil {
		return nil, 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if limit <= 0 || limit > len(h.events) {
		limit = len(h.events)
	}
	out := make([]LogEvent, limit)
	copy(out, h.events[len(h.events)-limit:])
	return out, h.nextSeq
}

func (h *StreamHub) afterLocked(since uint64, limit int) ([]LogEvent, uint64) {
	if limit <= 0 || limit > h.capacity {
		limit = h.capacity
	}
	if since > h.nextSeq {
		// The hub was recreated since the reader last polled.
		since = 0
	}
	var out []LogEvent
	for _, evt := range h.events {
		if evt.Sequence <= since {
			continue
		}
		out = append(out, evt)
		if len(out) == limit {
			return out, evt.Sequence
		}
	}
	return out, h.nextSeq
}
