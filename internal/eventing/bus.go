package eventing

import (
	"context"
	"errors"
	"reflect"
	"sync"
)

// Handler handles a published event.
type Handler func(ctx context.Context, event any) error

// Bus delivers events to subscribed handlers.
type Bus interface {
	Publish(ctx context.Context, event any) error
	Subscribe(eventType string, handler Handler)
}

// ErrNilEvent is returned when a nil event is published.
var ErrNilEvent = errors.New("eventing: nil event")

// ErrInvalidEventType is returned when the event type cannot be determined.
var ErrInvalidEventType = errors.New("eventing: invalid event type")

// InMemoryBus is a minimal in-process event bus.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewInMemoryBus constructs a new in-memory bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{handlers: make(map[string][]Handler)}
}

// Publish wraps the event in an envelope and dispatches it to all handlers of its type.
// Handler errors do not stop delivery; the first one is returned.
func (b *InMemoryBus) Publish(ctx context.Context, event any) error {
	if event == nil {
		return ErrNilEvent
	}
	eventType := TypeName(event)
	if eventType == "" {
		return ErrInvalidEventType
	}

	if _, ok := EnvelopeFromContext(ctx); !ok {
		env, err := BuildEnvelope(event, MetaFromContext(ctx))
		if err != nil {
			return err
		}
		ctx = WithEnvelope(ctx, env)
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[eventType]...)
	b.mu.RUnlock()

	var firstErr error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Subscribe registers a handler for an event type.
func (b *InMemoryBus) Subscribe(eventType string, handler Handler) {
	if eventType == "" || handler == nil {
		return
	}
	b.mu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.mu.Unlock()
}

// TypeName returns the fully-qualified type name for an event instance.
func TypeName(event any) string {
	if event == nil {
		return ""
	}
	t := reflect.TypeOf(event)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.String()
}

// TypeOf returns the fully-qualified type name for a type parameter.
func TypeOf[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().String()
}
