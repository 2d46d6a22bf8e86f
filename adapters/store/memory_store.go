package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/layer-3/l3auth/ports"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is an in-process implementation of the Store interface. Expiry
// is checked lazily on Get; Sweep may additionally be called to reclaim
// expired entries, but is not required for correctness.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore creates a new in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ ports.Store = (*MemoryStore)(nil)

// Set stores value under key for ttl.
func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Get returns the live value under key. An entry whose expiry has passed is
// removed and reported as absent.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	return append([]byte(nil), entry.value...), nil
}

// Delete removes key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// CompareAndSwap replaces the value under key with new, re-armed with ttl,
// if the current live value equals old. The whole read-modify-write runs
// under the store mutex, so concurrent swaps on one key cannot both succeed.
func (s *MemoryStore) CompareAndSwap(ctx context.Context, key string, old, new []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.liveEntry(key)
	if !ok || !bytes.Equal(entry.value, old) {
		return false, nil
	}
	s.entries[key] = memoryEntry{
		value:     append([]byte(nil), new...),
		expiresAt: s.now().Add(ttl),
	}
	return true, nil
}

// Sweep removes all expired entries and returns how many it reclaimed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for key, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// liveEntry returns the entry under key if it has not expired, deleting it
// when it has. Callers must hold s.mu.
func (s *MemoryStore) liveEntry(key string) (memoryEntry, bool) {
	entry, ok := s.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return memoryEntry{}, false
	}
	return entry, true
}
