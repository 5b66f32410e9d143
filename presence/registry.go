// Package presence tracks which identities currently hold a live chat
// session. The map is the only shared mutable state in the system and is
// guarded by a single mutex so a sweep always works on a consistent
// snapshot relative to concurrent registers and heartbeats.
package presence

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[uuid.UUID]time.Time)}
}

// Touch records activity for the identity, creating the session entry on
// first contact. It serves both register and heartbeat; a heartbeat for a
// session already evicted simply re-creates nothing visible to callers
// that check Contains first, and is harmless otherwise.
func (r *Registry) Touch(id uuid.UUID, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = now
}

// Heartbeat refreshes an existing session. Unknown sessions are a no-op,
// covering the race with a concurrent sweep.
func (r *Registry) Heartbeat(id uuid.UUID, now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		r.sessions[id] = now
	}
}

// Remove drops the session entry. Storage stays untouched here; the
// identity's is_online flag is flipped lazily by the next sweep.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Contains tells whether the identity currently holds a live session.
func (r *Registry) Contains(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	return ok
}

// Count returns the number of live sessions, the online_count payload.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts every session whose last activity is older than timeout
// and returns the evicted identities. Decision and eviction happen under
// one lock acquisition: a heartbeat can only land entirely before or
// entirely after the sweep, never between snapshot and delete.
func (r *Registry) Sweep(now time.Time, timeout time.Duration) []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []uuid.UUID
	for id, lastActive := range r.sessions {
		if now.Sub(lastActive) > timeout {
			evicted = append(evicted, id)
			delete(r.sessions, id)
		}
	}
	return evicted
}
