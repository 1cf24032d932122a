// Package bus is the in-process persistence change bus. Every repository
// mutation and every committed restore publishes here; subscribers such as
// the auto-backup scheduler react to collection changes without coupling to
// the repositories.
package bus

import (
	"sync"

	"go.uber.org/zap"
)

// Op describes what happened to a collection.
type Op string

const (
	OpWrite   Op = "write"
	OpDelete  Op = "delete"
	OpRestore Op = "restore"
)

// Event announces a change to one collection.
type Event struct {
	Collection string
	Op         Op
}

// Listener receives published events.
type Listener func(Event)

// Bus delivers events synchronously, in subscriber-registration order, on
// the publishing goroutine. A panicking listener is recovered and logged;
// it neither blocks delivery to the remaining listeners nor propagates to
// the writer that triggered the publish.
type Bus struct {
	mu        sync.RWMutex
	listeners []Listener
	log       *zap.Logger
}

// New returns an empty bus.
func New(log *zap.Logger) *Bus {
	if log == nil {
		log = zap.NewNop()
	}
	return &Bus{log: log}
}

// Subscribe registers a listener. Listeners cannot be removed; subscribers
// that outlive their interest should ignore events instead.
func (b *Bus) Subscribe(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, l)
}

// Publish delivers the event to every listener in registration order.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	listeners := make([]Listener, len(b.listeners))
	copy(listeners, b.listeners)
	b.mu.RUnlock()

	for _, l := range listeners {
		b.deliver(l, ev)
	}
}

func (b *Bus) deliver(l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("bus listener panicked",
				zap.String("collection", ev.Collection),
				zap.String("op", string(ev.Op)),
				zap.Any("panic", r))
		}
	}()
	l(ev)
}
