package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// ===============================
// EVENT INTERFACE
// ===============================

// Event represents a domain event
type Event interface {
	GetEventID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetMetadata() map[string]interface{}
}

// BaseEvent provides common event functionality
type BaseEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// GetEventID returns the event ID
func (e *BaseEvent) GetEventID() string { return e.EventID }

// GetEventType returns the event type
func (e *BaseEvent) GetEventType() string { return e.EventType }

// GetTimestamp returns the event timestamp
func (e *BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// GetMetadata returns the event metadata
func (e *BaseEvent) GetMetadata() map[string]interface{} { return e.Metadata }

// GenerateEventID generates a unique event ID.
func GenerateEventID() string {
	if id, err := uuid.NewV4(); err == nil {
		return "evt_" + id.String()
	}
	return fmt.Sprintf("evt_%d", time.Now().UnixNano())
}

// ===============================
// EVENT BUS
// ===============================

// EventHandler handles one published event.
type EventHandler interface {
	Handle(ctx context.Context, event Event) error
	GetHandlerID() string
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc struct {
	ID   string
	Func func(ctx context.Context, event Event) error
}

// Handle implements EventHandler
func (f EventHandlerFunc) Handle(ctx context.Context, event Event) error { return f.Func(ctx, event) }

// GetHandlerID implements EventHandler
func (f EventHandlerFunc) GetHandlerID() string { return f.ID }

// EventBus defines the event publishing and subscription interface.
// Publishing is synchronous: handlers run inside the publishing request.
type EventBus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType string, handler EventHandler) error
	Unsubscribe(eventType string, handler EventHandler) error
	Stats() *EventBusStats
}

// EventBusStats represents event bus statistics
type EventBusStats struct {
	EventsPublished int64 `json:"events_published"`
	EventsFailed    int64 `json:"events_failed"`
	HandlersCount   int   `json:"handlers_count"`
}

// inMemoryEventBus implements EventBus with in-process handler dispatch.
type inMemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
	logger   *zap.Logger
	stats    EventBusStats
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger) EventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inMemoryEventBus{
		handlers: make(map[string][]EventHandler),
		logger:   logger,
	}
}

// Publish dispatches an event to every handler subscribed to its type. The
// first handler error aborts dispatch and is returned to the publisher.
func (b *inMemoryEventBus) Publish(ctx context.Context, event Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	b.mu.RLock()
	handlers := b.handlers[event.GetEventType()]
	b.mu.RUnlock()

	b.logger.Debug("Publishing event",
		zap.String("event_id", event.GetEventID()),
		zap.String("event_type", event.GetEventType()),
		zap.Int("handlers", len(handlers)),
	)

	for _, handler := range handlers {
		if err := handler.Handle(ctx, event); err != nil {
			b.logger.Error("Event handler failed",
				zap.String("event_id", event.GetEventID()),
				zap.String("event_type", event.GetEventType()),
				zap.String("handler_id", handler.GetHandlerID()),
				zap.Error(err),
			)
			b.mu.Lock()
			b.stats.EventsFailed++
			b.mu.Unlock()
			return err
		}
	}

	b.mu.Lock()
	b.stats.EventsPublished++
	b.mu.Unlock()
	return nil
}

// Subscribe registers a handler for an event type.
func (b *inMemoryEventBus) Subscribe(eventType string, handler EventHandler) error {
	if eventType == "" {
		return fmt.Errorf("event type cannot be empty")
	}
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.stats.HandlersCount++

	b.logger.Info("Handler subscribed",
		zap.String("event_type", eventType),
		zap.String("handler_id", handler.GetHandlerID()),
	)

	return nil
}

// Unsubscribe removes a handler for a specific event type.
func (b *inMemoryEventBus) Unsubscribe(eventType string, handler EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.handlers[eventType]
	for i, h := range handlers {
		if h.GetHandlerID() == handler.GetHandlerID() {
			b.handlers[eventType] = append(handlers[:i], handlers[i+1:]...)
			b.stats.HandlersCount--
			return nil
		}
	}

	return fmt.Errorf("handler %q not subscribed to %q", handler.GetHandlerID(), eventType)
}

// Stats returns a snapshot of bus statistics.
func (b *inMemoryEventBus) Stats() *EventBusStats {
	b.mu.RLock()
	defer b.mu.RUnlock()
	stats := b.stats
	return &stats
}
