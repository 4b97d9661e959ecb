package event_bus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

type EventType string

type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{
		ctx:       ctx,
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Context returns the context the event was published with.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventT carries a payload already asserted to T.
type EventT[T any] struct {
	Event
	Data T
}

// EventBus keeps derived state in step with the change that caused it: Publish calls every
// subscriber of the event type in the order they subscribed and returns once all of them are done.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]func(Event) error
}

func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]func(Event) error),
	}
}

func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], h)
}

// SubscribeTyped registers h for events whose payload is a T. Other payloads are skipped.
func SubscribeTyped[T any](eb *EventBus, eventType EventType, h func(EventT[T]) error) {
	eb.Subscribe(eventType, func(e Event) error {
		payload, ok := e.Data.(T)
		if !ok {
			log.Warnf("Skipping %s event with %T payload", eventType, e.Data)
			return nil
		}
		return h(EventT[T]{Event: e, Data: payload})
	})
}

// Publish returns the joined errors of all failed subscribers. A cancelled context skips the
// subscribers not yet called.
func (eb *EventBus) Publish(e Event) error {
	eb.mu.RLock()
	handlers := append([]func(Event) error(nil), eb.subscribers[e.Type]...)
	eb.mu.RUnlock()

	var errs []error
	for i, h := range handlers {
		if err := e.Context().Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := h(e); err != nil {
			log.Errorf("Subscriber %d of %s failed: %v", i, e.Type, err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("event %s: %w", e.Type, errors.Join(errs...))
	}
	return nil
}
