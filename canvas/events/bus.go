package events

import (
	"sync"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-lienzo/logging"
)

// DefaultBufferSize is used when Subscribe is given a non-positive size.
const DefaultBufferSize = 64

// Bus fans out events from one canvas to N listeners.
type Bus struct {
	mu        sync.RWMutex
	listeners map[*Listener]struct{}
	logger    logging.Logger
}

// Listener receives events from the bus.
type Listener struct {
	C       chan Event
	done    chan struct{}
	dropped atomic.Int64
}

// Dropped returns how many events this listener missed.
func (l *Listener) Dropped() int64 { return l.dropped.Load() }

// Done is closed when the listener is unsubscribed.
func (l *Listener) Done() <-chan struct{} { return l.done }

// NewBus creates a new event bus.
func NewBus(logger logging.Logger) *Bus {
	return &Bus{
		listeners: make(map[*Listener]struct{}),
		logger: logging.OrGlobal(logger).WithFields(logging.Fields{
			"component": "event_bus",
		}),
	}
}

// Subscribe registers a new listener with a buffer of size events.
func (b *Bus) Subscribe(size int) *Listener {
	if size <= 0 {
		size = DefaultBufferSize
	}
	l := &Listener{
		C:    make(chan Event, size),
		done: make(chan struct{}),
	}
	b.mu.Lock()
	b.listeners[l] = struct{}{}
	b.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. Calling it twice is safe.
func (b *Bus) Unsubscribe(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.listeners[l]; !ok {
		return
	}
	delete(b.listeners, l)
	close(l.done)
}

// ListenerCount returns the number of active listeners.
func (b *Bus) ListenerCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Publish delivers e to every listener without blocking. Slow listeners
// lose the event.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for l := range b.listeners {
		select {
		case l.C <- e:
		default:
			n := l.dropped.Add(1)
			b.logger.Warn("listener too slow, event dropped", logging.Fields{
				"kind":    string(e.Kind()),
				"dropped": n,
			})
		}
	}
}

// Close unsubscribes every listener.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for l := range b.listeners {
		delete(b.listeners, l)
		close(l.done)
	}
}
