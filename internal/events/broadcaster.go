// Package events provides a change event broadcaster for the WebSocket stream.
package events

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"

	"github.com/GriffinCanCode/DriveDeck/backend/internal/monitoring"
)

const (
	EventRenamed       = "renamed"
	EventDeleted       = "deleted"
	EventMoved         = "moved"
	EventFolderCreated = "folder_created"
)

// Event represents a mutation inside a sandbox root. Path carries the target
// for single-path events; From/To carry both ends of renames and moves.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Root      string `json:"root"`
	Path      string `json:"path,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Broadcaster manages stream subscribers and publishes events.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
	metrics     *monitoring.Metrics
}

// NewBroadcaster creates a new event broadcaster. Metrics may be nil.
func NewBroadcaster(metrics *monitoring.Metrics) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[chan Event]struct{}),
		metrics:     metrics,
	}
}

// Subscribe adds a new subscriber and returns its event channel.
// The caller must call Unsubscribe when done.
func (b *Broadcaster) Subscribe() chan Event {
	ch := make(chan Event, 64)
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers. Non-blocking: drops events
// for slow consumers.
func (b *Broadcaster) Publish(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	b.mu.RLock()
	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// Drop event for slow consumer
		}
	}
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.RecordEvent(event.Type)
	}
}

// Count returns the current number of subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// MarshalEvent serializes an event to JSON.
func MarshalEvent(e Event) ([]byte, error) {
	return sonic.Marshal(e)
}
