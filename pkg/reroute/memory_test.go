package reroute

import (
	"context"
	"testing"
	"time"

	"github.com/jdalgard/pageplan/pkg/segment"
)

func TestMemoryStoreRememberResolve(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	key := segment.Key{Component: "guests", Segment: "list-1"}

	// Absent before any write
	if _, ok, err := s.Resolve(ctx, key); err != nil || ok {
		t.Fatalf("Resolve before write = ok=%v err=%v, want miss", ok, err)
	}

	if err := s.Remember(ctx, key, "p1c2"); err != nil {
		t.Fatalf("Remember error: %v", err)
	}

	region, ok, err := s.Resolve(ctx, key)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if !ok || region != "p1c2" {
		t.Errorf("Resolve = %q ok=%v, want p1c2", region, ok)
	}
}

func TestMemoryStoreReplaceNotAccumulate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	key := segment.Key{Component: "c", Segment: "s"}
	_ = s.Remember(ctx, key, "a")
	_ = s.Remember(ctx, key, "b")

	region, ok, _ := s.Resolve(ctx, key)
	if !ok || region != "b" {
		t.Errorf("Resolve = %q, want replaced value b", region)
	}

	entries, _ := s.Snapshot(ctx)
	if len(entries) != 1 {
		t.Errorf("Snapshot size = %d, want 1 (replace, not accumulate)", len(entries))
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	key := segment.Key{Component: "c", Segment: "s"}
	_ = s.Remember(ctx, key, "a")

	if err := s.Clear(ctx, key); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok, _ := s.Resolve(ctx, key); ok {
		t.Error("Resolve after Clear should miss")
	}
}

func TestMemoryStoreRememberEmptyClears(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	defer s.Close()

	key := segment.Key{Component: "c", Segment: "s"}
	_ = s.Remember(ctx, key, "a")
	_ = s.Remember(ctx, key, "")

	if _, ok, _ := s.Resolve(ctx, key); ok {
		t.Error("Remember with empty region should clear the entry")
	}
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	s := NewMemoryStore(WithClock(clock))
	defer s.Close()

	key := segment.Key{Component: "c", Segment: "s"}
	_ = s.Remember(ctx, key, "a")

	// Just inside the TTL: still resolvable
	now = now.Add(DefaultTTL)
	if _, ok, _ := s.Resolve(ctx, key); !ok {
		t.Error("entry at exactly TTL should still resolve")
	}

	// Past the TTL: treated as absent
	now = now.Add(time.Second)
	if _, ok, _ := s.Resolve(ctx, key); ok {
		t.Error("entry older than TTL should resolve as absent")
	}

	// Lazy removal: snapshot no longer contains it
	entries, _ := s.Snapshot(ctx)
	if len(entries) != 0 {
		t.Errorf("Snapshot after expiry = %d entries, want 0", len(entries))
	}
}

func TestMemoryStoreCustomTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	clock := func() time.Time { return now }

	s := NewMemoryStore(WithTTL(time.Minute), WithClock(clock))
	defer s.Close()

	key := segment.Key{Component: "c", Segment: "s"}
	_ = s.Remember(ctx, key, "a")

	now = now.Add(2 * time.Minute)
	if _, ok, _ := s.Resolve(ctx, key); ok {
		t.Error("entry past custom TTL should resolve as absent")
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	key := segment.Key{Component: "c", Segment: "s"}
	if err := s.Remember(ctx, key, "a"); err != nil {
		t.Fatalf("Remember error: %v", err)
	}

	if _, ok, _ := s.Resolve(ctx, key); ok {
		t.Error("NullStore should never resolve")
	}

	entries, _ := s.Snapshot(ctx)
	if len(entries) != 0 {
		t.Errorf("NullStore Snapshot = %d entries, want 0", len(entries))
	}
}

func TestParseRedisKey(t *testing.T) {
	key, ok := parseRedisKey("reroute:guests:list-1")
	if !ok {
		t.Fatal("parseRedisKey failed")
	}
	if key.Component != "guests" || key.Segment != "list-1" {
		t.Errorf("parseRedisKey = %+v", key)
	}

	if _, ok := parseRedisKey("reroute:nocolon"); ok {
		t.Error("malformed key should not parse")
	}
}
