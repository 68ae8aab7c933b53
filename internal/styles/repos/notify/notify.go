// Package notify broadcasts structural change events to interested
// consumers. Delivery is fire-and-forget: the engine never depends on a
// subscriber acknowledging, or even receiving, an event.
package notify

import (
	"sync"

	"github.com/calliso/stylecache/internal/styles/domain"
	"github.com/calliso/stylecache/internal/styles/services/engine"
)

// Broadcaster fans events out to channel subscribers. A slow subscriber
// loses events rather than blocking the write path.
type Broadcaster struct {
	mu   sync.RWMutex
	subs []chan domain.Event
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Subscribe registers a new subscriber and returns its event channel.
// buffer sets the channel capacity; events beyond it are dropped.
func (b *Broadcaster) Subscribe(buffer int) <-chan domain.Event {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan domain.Event, buffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Broadcast delivers the event to every subscriber without blocking.
func (b *Broadcaster) Broadcast(ev domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Nop is a Broadcaster that discards all events; useful when no consumer
// is wired up, and in tests.
type Nop struct{}

// Broadcast discards the event.
func (Nop) Broadcast(domain.Event) {}

var _ engine.Notifier = (*Broadcaster)(nil)
var _ engine.Notifier = Nop{}
