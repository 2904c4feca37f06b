// Package reroute remembers where deferred segments were routed.
//
// Repeated planning passes over the same content would otherwise re-derive a
// deferred segment's target from its home region every time, letting the
// segment bounce between regions as measured heights shift. The store pins a
// segment to its last deferral target until it is either placed successfully
// or the entry expires.
//
// # Backends
//
// Three implementations are provided:
//   - memory: In-process storage with an injectable clock, the default
//   - redis: Redis-backed storage for server deployments that may restart
//   - null: No-op store that disables rerouting entirely
//
// Entries are time-bounded: the TTL (default 10 minutes) is long enough to
// survive a reflow burst but does not persist across a genuinely new editing
// session. The store knows nothing about region capacities or segment
// heights; all side effects are confined to the mapping itself.
package reroute

import (
	"context"
	"time"

	"github.com/jdalgard/pageplan/pkg/segment"
)

// DefaultTTL is how long a deferral target stays resolvable.
const DefaultTTL = 10 * time.Minute

// Entry is one remembered deferral outcome, exposed via Snapshot for
// diagnostics.
type Entry struct {
	Key       segment.Key `json:"key"`
	Region    string      `json:"region"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Store is the reroute cache contract. A store may be shared across many
// planning passes but must never be aliased into two passes running at once.
type Store interface {
	// Resolve returns the remembered target region for a segment, or
	// ok=false if there is no entry or the entry has expired.
	Resolve(ctx context.Context, key segment.Key) (string, bool, error)

	// Remember sets the deferral target for a segment, replacing any prior
	// entry. An empty regionKey clears the entry.
	Remember(ctx context.Context, key segment.Key, regionKey string) error

	// Clear removes the entry for a segment. Called on successful placement.
	Clear(ctx context.Context, key segment.Key) error

	// Snapshot enumerates live entries for diagnostics. Not part of the
	// planning contract; expired entries may or may not appear.
	Snapshot(ctx context.Context) ([]Entry, error)

	// Close releases backend resources.
	Close() error
}
