// Package memory provides an in-memory cache.Store for tests and single
// process runs. Entries are lost when the process exits. Optional LRU
// eviction bounds memory usage.
package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rhuss/evalkit/pkg/cache"
)

// entry holds a cached value and its metadata.
type entry struct {
	key       string
	value     []byte
	expiresAt time.Time     // zero = never
	lruElem   *list.Element // position in LRU list
}

// Store is an in-memory cache with optional LRU eviction.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
	lruList *list.List // front = most recently used
	maxSize int        // 0 = unlimited
	now     func() time.Time
}

var _ cache.Store = (*Store)(nil)

// New creates a new in-memory store. If maxSize is 0 the store grows
// without limit; otherwise the least recently used entry is evicted when
// the limit is reached.
func New(maxSize int) *Store {
	return &Store{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the value for key. Expired entries are removed and reported
// as cache.ErrNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, cache.ErrNotFound
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		s.remove(e)
		return nil, cache.ErrNotFound
	}

	s.lruList.MoveToFront(e.lruElem)
	return e.value, nil
}

// Set stores value under key, replacing any existing entry.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = s.now().Add(ttl)
	}

	if e, ok := s.entries[key]; ok {
		e.value = value
		e.expiresAt = expiresAt
		s.lruList.MoveToFront(e.lruElem)
		return nil
	}

	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		s.evictOldest()
	}

	e := &entry{key: key, value: value, expiresAt: expiresAt}
	e.lruElem = s.lruList.PushFront(e)
	s.entries[key] = e
	return nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.remove(e)
	}
	return nil
}

// Clear removes all entries.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*entry)
	s.lruList.Init()
	return nil
}

// Len returns the number of entries, including expired ones not yet removed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// evictOldest removes the least recently used entry. Caller holds mu.
func (s *Store) evictOldest() {
	back := s.lruList.Back()
	if back == nil {
		return
	}
	s.remove(back.Value.(*entry))
}

// remove deletes e from both indexes. Caller holds mu.
func (s *Store) remove(e *entry) {
	s.lruList.Remove(e.lruElem)
	delete(s.entries, e.key)
}
