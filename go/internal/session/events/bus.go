package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Handler receives published events. Handlers run on the publisher's
// goroutine while the room is locked, so they must not block or call back
// into the session App.
type Handler func(*Event)

// Bus fans out room events to every subscriber.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string]Handler)}
}

// Subscribe registers a named handler, replacing any handler with the same name.
func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = h
	log.Debug().Str("subscriber", name).Msg("event subscriber registered")
}

// Unsubscribe removes a handler.
func (b *Bus) Unsubscribe(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, name)
}

// Publish delivers the event to all subscribers.
func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
}
