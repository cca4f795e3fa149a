// Package session provides the conversation session store.
//
// The store is owned by the transport layer and handed to the router, so
// session scope is explicit rather than a package-level map. The in-memory
// implementation is intentionally last-write-wins: concurrent turns on one
// session are an accepted race for this demo.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nephroline/aftercare/internal/domain"
)

// Store holds conversation sessions keyed by session ID.
type Store interface {
	// Get returns the session for id, or nil when none exists.
	Get(id string) *domain.Session
	// Put stores or replaces the session.
	Put(s *domain.Session)
	// Delete removes the session for id.
	Delete(id string)
}

// MemoryStore is an in-process Store guarded by a mutex.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Get returns the session for id, or nil when none exists.
func (m *MemoryStore) Get(id string) *domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Put stores or replaces the session.
func (m *MemoryStore) Put(s *domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
}

// Delete removes the session for id.
func (m *MemoryStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Clear drops all sessions. Exposed for the debug reset endpoint.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*domain.Session)
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// evictExpired removes sessions idle longer than ttl and returns the count.
func (m *MemoryStore) evictExpired(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// StartJanitor runs a background loop that evicts idle sessions every
// interval until ctx is canceled.
func (m *MemoryStore) StartJanitor(ctx context.Context, interval, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := m.evictExpired(ttl); n > 0 {
					slog.Info("Evicted idle sessions", "count", n, "ttl", ttl)
				}
			}
		}
	}()
}
