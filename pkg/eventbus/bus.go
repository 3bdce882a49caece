package eventbus

import (
	"sync"
	"sync/atomic"
)

// DefaultBroadcastSize is the default bounded depth of the process-global
// broadcast channel.
const DefaultBroadcastSize = 1024

// DefaultSubscriberSize is the default bounded depth of each per-client
// channel.
const DefaultSubscriberSize = 256

// subscriber is one registered per-client channel plus its filter and
// overflow counter.
type subscriber struct {
	id       string
	ch       chan Event
	filter   Filter
	overflow atomic.Uint64
}

// Bus is the process-global event bus: one broadcast channel every consumer
// may drain, plus a set of per-client filtered channels.
type Bus struct {
	broadcast chan Event
	broadcastOverflow atomic.Uint64

	mu          sync.RWMutex
	subscribers map[string]*subscriber
}

// New builds a Bus with the default bounded sizes.
func New() *Bus {
	return &Bus{
		broadcast:   make(chan Event, DefaultBroadcastSize),
		subscribers: make(map[string]*subscriber),
	}
}

// Broadcast returns the unfiltered, process-global event channel.
func (b *Bus) Broadcast() <-chan Event {
	return b.broadcast
}

// Register inserts a new per-client subscriber and returns its receive end.
// Unregister must be called when the client's stream closes.
func (b *Bus) Register(sessionID string, filter Filter) <-chan Event {
	if filter == nil {
		filter = MatchAll
	}
	sub := &subscriber{id: sessionID, ch: make(chan Event, DefaultSubscriberSize), filter: filter}

	b.mu.Lock()
	b.subscribers[sessionID] = sub
	b.mu.Unlock()

	return sub.ch
}

// Unregister removes and closes a session's channel.
func (b *Bus) Unregister(sessionID string) {
	b.mu.Lock()
	sub, ok := b.subscribers[sessionID]
	if ok {
		delete(b.subscribers, sessionID)
	}
	b.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// PublishEvent sends ev on the broadcast channel and on every matching
// per-client channel. A slow consumer never blocks publish: on overflow the
// send is dropped and the relevant overflow counter is incremented.
func (b *Bus) PublishEvent(ev Event) {
	select {
	case b.broadcast <- ev:
	default:
		b.broadcastOverflow.Add(1)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		if !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			sub.overflow.Add(1)
		}
	}
}

// BroadcastOverflow reports how many broadcast-channel sends have been
// dropped since startup.
func (b *Bus) BroadcastOverflow() uint64 {
	return b.broadcastOverflow.Load()
}

// SubscriberOverflow reports the drop count for a specific session, or
// (0, false) if the session is not registered.
func (b *Bus) SubscriberOverflow(sessionID string) (uint64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sub, ok := b.subscribers[sessionID]
	if !ok {
		return 0, false
	}
	return sub.overflow.Load(), true
}

// SubscriberCount reports the number of currently registered per-client
// channels.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
