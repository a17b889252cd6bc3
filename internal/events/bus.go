package events

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Handler receives events. Handlers run on the emitting goroutine and must not block.
type Handler func(event *Event)

// SubscriptionID identifies a handler for Unsubscribe
type SubscriptionID uint64

// Bus is a synchronous in-process publish/subscribe hub
type Bus struct {
	mu       sync.RWMutex
	byType   map[EventType]map[SubscriptionID]Handler
	wildcard map[SubscriptionID]Handler
	nextID   SubscriptionID
	log      zerolog.Logger
}

// NewBus creates an empty bus
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{
		byType:   make(map[EventType]map[SubscriptionID]Handler),
		wildcard: make(map[SubscriptionID]Handler),
		log:      log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe registers handler for one event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.byType[eventType] == nil {
		b.byType[eventType] = make(map[SubscriptionID]Handler)
	}
	b.byType[eventType][id] = handler
	return id
}

// SubscribeAll registers handler for every event type
func (b *Bus) SubscribeAll(handler Handler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.wildcard[id] = handler
	return id
}

// Unsubscribe removes a handler. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.wildcard, id)
	for eventType, handlers := range b.byType {
		if _, ok := handlers[id]; ok {
			delete(handlers, id)
			if len(handlers) == 0 {
				delete(b.byType, eventType)
			}
			return
		}
	}
}

// SubscriberCount returns the number of registered handlers
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := len(b.wildcard)
	for _, handlers := range b.byType {
		n += len(handlers)
	}
	return n
}

// Emit delivers an event to wildcard subscribers, then typed subscribers.
// Typed handlers may emit follow-up events (the journal announces appends),
// so forwarders see the cause before its effects. Handlers may emit or
// unsubscribe; the handler set is snapshotted first.
func (b *Bus) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
		Module:    module,
	}

	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.byType[eventType])+len(b.wildcard))
	for _, h := range b.wildcard {
		handlers = append(handlers, h)
	}
	for _, h := range b.byType[eventType] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, event)
	}
}

func (b *Bus) dispatch(h Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Interface("panic", r).
				Str("event_type", string(event.Type)).
				Msg("Event handler panicked")
		}
	}()
	h(event)
}
