// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about planning passes, reroute cache operations, and driver
// state changes.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (Prometheus, OpenTelemetry, DataDog, etc.)
//
// Hooks are strictly a side-channel: they observe planning, never influence
// it. Disabling all hooks must produce byte-identical plans.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPlannerHooks(&myPlannerHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Planner().OnPassStart(ctx, segmentCount, regionCount)
//	// ... run the sweep ...
//	observability.Planner().OnPassComplete(ctx, placed, deferred, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Planner Hooks
// =============================================================================

// PlannerHooks receives events from planning passes.
type PlannerHooks interface {
	// OnPassStart records the start of a planning pass.
	OnPassStart(ctx context.Context, segments, regions int)

	// OnPassComplete records the outcome of a planning pass.
	OnPassComplete(ctx context.Context, placed, deferred int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from reroute cache operations.
type CacheHooks interface {
	// OnHit records a cache hit.
	OnHit(ctx context.Context, key string)

	// OnMiss records a cache miss (absent or expired entry).
	OnMiss(ctx context.Context, key string)

	// OnRemember records a deferral target write.
	OnRemember(ctx context.Context, key, region string)

	// OnClear records an entry removal.
	OnClear(ctx context.Context, key string)
}

// =============================================================================
// Driver Hooks
// =============================================================================

// DriverHooks receives events from the convergence driver.
type DriverHooks interface {
	// OnMeasurement records an incoming height measurement.
	OnMeasurement(ctx context.Context, key string, height float64)

	// OnStatusChange records a measurement status transition.
	OnStatusChange(ctx context.Context, from, to string)

	// OnCommit records a committed plan (or a stale plan being discarded).
	OnCommit(ctx context.Context, placed, deferred int, stale bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPlannerHooks is a no-op implementation of PlannerHooks.
type NoopPlannerHooks struct{}

func (NoopPlannerHooks) OnPassStart(context.Context, int, int)                   {}
func (NoopPlannerHooks) OnPassComplete(context.Context, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnHit(context.Context, string)              {}
func (NoopCacheHooks) OnMiss(context.Context, string)             {}
func (NoopCacheHooks) OnRemember(context.Context, string, string) {}
func (NoopCacheHooks) OnClear(context.Context, string)            {}

// NoopDriverHooks is a no-op implementation of DriverHooks.
type NoopDriverHooks struct{}

func (NoopDriverHooks) OnMeasurement(context.Context, string, float64) {}
func (NoopDriverHooks) OnStatusChange(context.Context, string, string) {}
func (NoopDriverHooks) OnCommit(context.Context, int, int, bool)       {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	plannerHooks PlannerHooks = NoopPlannerHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	driverHooks  DriverHooks  = NoopDriverHooks{}
	hooksMu      sync.RWMutex
)

// SetPlannerHooks registers custom planner hooks.
// This should be called once at application startup before any planning passes.
func SetPlannerHooks(h PlannerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		plannerHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetDriverHooks registers custom driver hooks.
// This should be called once at application startup before any driver activity.
func SetDriverHooks(h DriverHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		driverHooks = h
	}
}

// Planner returns the registered planner hooks.
func Planner() PlannerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return plannerHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Driver returns the registered driver hooks.
func Driver() DriverHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return driverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	plannerHooks = NoopPlannerHooks{}
	cacheHooks = NoopCacheHooks{}
	driverHooks = NoopDriverHooks{}
}
