package grid

import (
	"sync"
	"time"

	"github.com/catalogsync/backend/internal/domain/shared"
)

// ErrSessionNotFound is returned for an unknown or evicted session
var ErrSessionNotFound = shared.NewDomainError("SESSION_NOT_FOUND", "Grid session not found")

// Sessions holds the open grid sessions
type Sessions struct {
	mu    sync.RWMutex
	items map[string]*Engine
}

// NewSessions creates an empty session set
func NewSessions() *Sessions {
	return &Sessions{items: make(map[string]*Engine)}
}

// Add registers an engine under its id
func (s *Sessions) Add(e *Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[e.ID()] = e
}

// Get returns the engine for id
func (s *Sessions) Get(id string) (*Engine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.items[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// Remove closes and forgets a session
func (s *Sessions) Remove(id string) bool {
	s.mu.Lock()
	e, ok := s.items[id]
	delete(s.items, id)
	s.mu.Unlock()

	if ok {
		e.Close()
	}
	return ok
}

// Len returns the number of open sessions
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns the open engines
func (s *Sessions) All() []*Engine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Engine, 0, len(s.items))
	for _, e := range s.items {
		out = append(out, e)
	}
	return out
}

// EvictIdle closes sessions unused since before cutoff and returns their ids
func (s *Sessions) EvictIdle(cutoff time.Time) []string {
	var evicted []string
	for _, e := range s.All() {
		if e.LastActive().Before(cutoff) && s.Remove(e.ID()) {
			evicted = append(evicted, e.ID())
		}
	}
	return evicted
}
