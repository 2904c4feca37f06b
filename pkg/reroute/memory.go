package reroute

import (
	"context"
	"sync"
	"time"

	"github.com/jdalgard/pageplan/pkg/observability"
	"github.com/jdalgard/pageplan/pkg/segment"
)

// MemoryStore is the default in-process reroute store.
//
// Expiry is lazy: entries are checked against the TTL on Resolve and removed
// when stale. The clock is injectable so expiry is testable without real
// delays.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[segment.Key]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	region    string
	updatedAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) MemoryOption {
	return func(s *MemoryStore) { s.ttl = ttl }
}

// WithClock injects a clock for deterministic expiry tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

// NewMemoryStore creates an in-memory reroute store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[segment.Key]memoryEntry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns the remembered target region, treating expired entries as absent.
func (s *MemoryStore) Resolve(ctx context.Context, key segment.Key) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		observability.Cache().OnMiss(ctx, key.String())
		return "", false, nil
	}
	if s.now().Sub(e.updatedAt) > s.ttl {
		delete(s.entries, key)
		observability.Cache().OnMiss(ctx, key.String())
		return "", false, nil
	}

	observability.Cache().OnHit(ctx, key.String())
	return e.region, true, nil
}

// Remember replaces the entry for key. An empty regionKey clears it.
func (s *MemoryStore) Remember(ctx context.Context, key segment.Key, regionKey string) error {
	if regionKey == "" {
		return s.Clear(ctx, key)
	}

	s.mu.Lock()
	s.entries[key] = memoryEntry{region: regionKey, updatedAt: s.now()}
	s.mu.Unlock()

	observability.Cache().OnRemember(ctx, key.String(), regionKey)
	return nil
}

// Clear removes the entry for key.
func (s *MemoryStore) Clear(ctx context.Context, key segment.Key) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	observability.Cache().OnClear(ctx, key.String())
	return nil
}

// Snapshot enumerates non-expired entries.
func (s *MemoryStore) Snapshot(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := make([]Entry, 0, len(s.entries))
	for key, e := range s.entries {
		if now.Sub(e.updatedAt) > s.ttl {
			continue
		}
		out = append(out, Entry{Key: key, Region: e.region, UpdatedAt: e.updatedAt})
	}
	return out, nil
}

// Close does nothing for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
