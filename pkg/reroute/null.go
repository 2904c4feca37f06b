package reroute

import (
	"context"

	"github.com/jdalgard/pageplan/pkg/segment"
)

// NullStore is a no-op store that never remembers anything. With it, every
// planning pass re-derives deferral targets from home regions. Useful for
// testing and for callers that want cache-less planning.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore {
	return &NullStore{}
}

// Resolve always reports no entry.
func (s *NullStore) Resolve(ctx context.Context, key segment.Key) (string, bool, error) {
	return "", false, nil
}

// Remember does nothing.
func (s *NullStore) Remember(ctx context.Context, key segment.Key, regionKey string) error {
	return nil
}

// Clear does nothing.
func (s *NullStore) Clear(ctx context.Context, key segment.Key) error {
	return nil
}

// Snapshot returns no entries.
func (s *NullStore) Snapshot(ctx context.Context) ([]Entry, error) {
	return nil, nil
}

// Close does nothing.
func (s *NullStore) Close() error { return nil }

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
