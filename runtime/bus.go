package runtime

import (
	"chatroom/contract"
	"chatroom/domain/event"
	"context"
	"log/slog"
	"sync"
)

// Bus fans domain events out to every live session. Delivery is
// at-most-once and best-effort: a sink whose transport is already gone at
// publish time just misses the event. Durability for messages lives in
// the store, not here.
type Bus struct {
	mu       sync.RWMutex
	sessions map[string]contract.EventSink // map session -> sink
	log      *slog.Logger
}

func NewBus(log *slog.Logger) *Bus {
	return &Bus{
		sessions: make(map[string]contract.EventSink),
		log:      log,
	}
}

// Subscribe registers a session's delivery endpoint. Re-subscribing the
// same session replaces the previous sink.
func (b *Bus) Subscribe(sessionID string, sink contract.EventSink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sessions[sessionID] = sink
}

func (b *Bus) Unsubscribe(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
}

// Publish delivers the event to every currently registered sink. The
// sink list is snapshotted under the read lock so a slow consumer never
// blocks subscription changes.
func (b *Bus) Publish(ctx context.Context, e event.DomainEvent) {
	b.mu.RLock()
	sinks := make([]contract.EventSink, 0, len(b.sessions))
	for _, sink := range b.sessions {
		sinks = append(sinks, sink)
	}
	b.mu.RUnlock()

	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			b.log.Debug("Dropping event for dead session", "event", e.Name(), "error", err)
		}
	}
}

// Sessions reports how many sinks are currently registered.
func (b *Bus) Sessions() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.sessions)
}
