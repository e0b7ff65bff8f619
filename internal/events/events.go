// Package events provides the in-process event bus the timeline engine
// emits domain events on. Dispatch is synchronous and handlers run on the
// emitting goroutine; a panicking handler is isolated so it cannot take
// down the operation that emitted the event.
package events

import (
	"log/slog"
	"sync"
)

// Type names a domain event.
type Type string

const (
	TimelineCreated    Type = "TIMELINE_CREATED"
	TimelineDeleted    Type = "TIMELINE_DELETED"
	CheckpointCreated  Type = "CHECKPOINT_CREATED"
	CheckpointRestored Type = "CHECKPOINT_RESTORED"
	BranchCreated      Type = "BRANCH_CREATED"
	BranchSwitched     Type = "BRANCH_SWITCHED"
)

// Event carries an event type plus free-form payload fields.
type Event struct {
	Type    Type
	Payload map[string]any
}

// Handler consumes one event.
type Handler func(Event)

// Emitter is the narrow interface event producers depend on.
type Emitter interface {
	Emit(event Event)
}

// Bus is a mutex-guarded pub/sub dispatcher.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches an event to all handlers subscribed to its type.
func (b *Bus) Emit(event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type]))
	copy(handlers, b.handlers[event.Type])
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(handler, event)
	}
}

func (b *Bus) dispatch(handler Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("event handler panicked", "event", string(event.Type), "panic", r)
		}
	}()
	handler(event)
}
