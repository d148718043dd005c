// Package cache provides the process-wide in-memory auxiliary state the
// ordering service keeps outside the database: TTL-evicted entries shared by
// the rate limiter and the wait-time estimator. A Store is constructed once
// at startup and passed by reference; nothing in here is package-global.
package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Store is a concurrent-safe map with per-entry TTL. Expired entries are
// invisible to Get immediately and physically removed by the janitor.
type Store struct {
	mu              sync.RWMutex
	entries         map[string]entry
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// NewStore creates a store. ttl is the default lifetime applied when Set is
// called with a non-positive ttl; cleanupInterval is how often the janitor
// sweeps.
func NewStore(ttl, cleanupInterval time.Duration) *Store {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}
	return &Store{
		entries:         make(map[string]entry),
		defaultTTL:      ttl,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
	}
}

// Set stores value under key for ttl; a non-positive ttl uses the default.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
}

// Get returns the live value for key. Expired entries read as absent.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok || s.now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Delete removes key if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Len counts live entries.
func (s *Store) Len() int {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, e := range s.entries {
		if !now.After(e.expiresAt) {
			n++
		}
	}
	return n
}

// Run sweeps expired entries every cleanupInterval until ctx is cancelled.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *Store) prune() {
	now := s.now()
	s.mu.Lock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}
