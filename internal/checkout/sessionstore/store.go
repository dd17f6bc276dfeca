// Package sessionstore keeps page-lifetime checkout sessions in memory.
package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/devroom/checkout/internal/checkout/domain"
)

type entry struct {
	session   *domain.Session
	expiresAt time.Time
}

// Store is a TTL-evicting in-process session store. Sessions are page-scoped
// and deliberately not persistent.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]entry
	now      func() time.Time
	stop     chan struct{}
	stopped  sync.Once
}

func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		ttl:      ttl,
		sessions: make(map[string]entry),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

// Put stores a snapshot of the session under its ID.
func (s *Store) Put(sess *domain.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = entry{
		session:   sess.Clone(),
		expiresAt: s.now().Add(s.ttl),
	}
}

// Get returns a copy of the session, or false when absent or expired.
func (s *Store) Get(id string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, false
	}
	return e.session.Clone(), true
}

// Update applies fn to the stored session under the store lock and returns a
// copy of the result. fn errors leave the stored session unmodified.
func (s *Store) Update(id string, fn func(*domain.Session) error) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.sessions, id)
		return nil, domain.ErrSessionNotFound
	}

	working := e.session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	s.sessions[id] = entry{
		session:   working,
		expiresAt: s.now().Add(s.ttl),
	}
	return working.Clone(), nil
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports the number of stored sessions, expired included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// RunJanitor sweeps expired sessions until ctx is done or Close is called.
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// Close stops the janitor.
func (s *Store) Close() {
	s.stopped.Do(func() { close(s.stop) })
}

func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
