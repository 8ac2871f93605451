package session

import (
	"sync"
	"time"

	"github.com/desertthunder/reel/internal/shared"
)

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry tracks live sessions by ID.
//
// Sessions not looked up for longer than the idle timeout are dropped on the next access.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*registryEntry
	idle     time.Duration
	now      func() time.Time
}

// NewRegistry creates an empty [Registry]. A non-positive idle timeout keeps sessions
// until they are deleted.
func NewRegistry(idle time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*registryEntry),
		idle:     idle,
		now:      time.Now,
	}
}

// Put stores s under its ID.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweep(now)
	r.sessions[s.ID()] = &registryEntry{session: s, lastSeen: now}
}

// Get returns the session for id and marks it as used, or [shared.ErrSessionNotFound]
// when the ID is unknown or has gone idle.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}

	now := r.now()
	if r.expired(e, now) {
		delete(r.sessions, id)
		return nil, shared.ErrSessionNotFound
	}
	e.lastSeen = now
	return e.session, nil
}

// Delete forgets id. Unknown IDs are ignored.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sweep(r.now())
	return len(r.sessions)
}

func (r *Registry) expired(e *registryEntry, now time.Time) bool {
	return r.idle > 0 && now.Sub(e.lastSeen) > r.idle
}

// sweep drops idle sessions. r.mu must be held.
func (r *Registry) sweep(now time.Time) {
	for id, e := range r.sessions {
		if r.expired(e, now) {
			delete(r.sessions, id)
		}
	}
}
