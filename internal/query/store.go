package query

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Entry is a stored response body and when it was fetched
type Entry struct {
	Data     []byte    `json:"data"`
	StoredAt time.Time `json:"storedAt"`
}

// Store persists cache entries
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
	// DeleteResource removes every key of resource and its sub-resources
	DeleteResource(ctx context.Context, resource string) (int, error)
	// Clear removes every key starting with prefix; "" removes all
	Clear(ctx context.Context, prefix string) error
}

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	return e, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = e
	return nil
}

func (s *MemoryStore) DeleteResource(_ context.Context, resource string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if matches(key, resource) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Clear(_ context.Context, prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prefix == "" {
		s.entries = make(map[string]Entry)
		return nil
	}
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
