// Package bus provides the fire-and-forget change notification channel the
// engine emits on after each successful mutation. Subscribers re-read the
// store; delivery is best effort and a slow subscriber drops events rather
// than blocking a posting operation.
package bus

import (
	"sync"
	"time"
)

// Event describes one completed mutation.
type Event struct {
	Op string    `json:"op"`
	At time.Time `json:"at"`
}

type Broadcaster struct {
	mu   sync.Mutex
	subs []chan Event
}

func New() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe returns a buffered channel receiving future events.
func (b *Broadcaster) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish fans the event out without blocking: a full subscriber misses it.
func (b *Broadcaster) Publish(op string) {
	ev := Event{Op: op, At: time.Now()}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
