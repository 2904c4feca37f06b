// Package plan implements the segment placement planner.
//
// The planner performs a single deterministic forward sweep over segments in
// document order, attempting to place each one into its resolved target
// region and deferring it to the next region when it does not fit. Deferral
// targets are remembered in a reroute store so repeated passes converge to a
// stable placement instead of oscillating as measured heights shift.
//
// # Intents
//
// Each segment's outcome is a closed [Intent] variant: [Place] or [Defer].
// The variant is sealed with an unexported marker method so a type switch
// over the two concrete types is exhaustive.
//
// # Determinism
//
// A pass is O(n) in segment count with no backtracking and no reordering. A
// deferred segment is only revisited on a subsequent pass, driven externally.
// This trades global optimality for predictable cost, which is what lets the
// driver re-run the sweep after every measurement update.
package plan

import "github.com/jdalgard/pageplan/pkg/segment"

// Intent kinds used as the JSON/BSON discriminator.
const (
	KindPlace = "place"
	KindDefer = "defer"
)

// PlaceReason explains why a segment was placed.
type PlaceReason string

// Place reasons.
const (
	// PlaceFits: the segment fit its resolved home region.
	PlaceFits PlaceReason = "fits"

	// PlaceCachedRegion: the segment fit the region remembered from a
	// previous deferral.
	PlaceCachedRegion PlaceReason = "cached-region"

	// PlaceForced: the segment did not fit and no further region exists,
	// but overflow was explicitly tolerated by the caller.
	PlaceForced PlaceReason = "forced"
)

// ValidPlaceReasons is the set of recognized place reasons.
var ValidPlaceReasons = map[PlaceReason]bool{
	PlaceFits:         true,
	PlaceCachedRegion: true,
	PlaceForced:       true,
}

// DeferReason explains why a segment was deferred.
type DeferReason string

// Defer reasons.
const (
	// DeferInsufficientSpace: the attempted region lacks capacity but a
	// following region exists. Routine.
	DeferInsufficientSpace DeferReason = "insufficient-space"

	// DeferMissingRegion: neither the cached nor the home region exists in
	// the current model. A configuration fault, not transient.
	DeferMissingRegion DeferReason = "missing-region"

	// DeferNoNextRegion: the attempted region lacks capacity and is the
	// last region. Terminal for this segment within the pass.
	DeferNoNextRegion DeferReason = "no-next-region"
)

// ValidDeferReasons is the set of recognized defer reasons.
var ValidDeferReasons = map[DeferReason]bool{
	DeferInsufficientSpace: true,
	DeferMissingRegion:     true,
	DeferNoNextRegion:      true,
}

// Intent is a segment's placement outcome: [Place] or [Defer]. The variant is
// closed; no other implementations exist.
type Intent interface {
	Kind() string
	isIntent()
}

// Place positions a segment inside a region.
type Place struct {
	Region      string      `json:"region" bson:"region"`
	Top         float64     `json:"top" bson:"top"`
	Bottom      float64     `json:"bottom" bson:"bottom"`
	Height      float64     `json:"height" bson:"height"`
	CursorAfter float64     `json:"cursor_after" bson:"cursor_after"`
	FromCache   bool        `json:"from_cache,omitempty" bson:"from_cache,omitempty"`
	Reason      PlaceReason `json:"reason" bson:"reason"`
}

// Kind returns the intent discriminator.
func (Place) Kind() string { return KindPlace }

func (Place) isIntent() {}

// Defer postpones a segment to a later pass. To is empty when no target
// region exists (missing-region and no-next-region).
type Defer struct {
	From      string      `json:"from" bson:"from"`
	To        string      `json:"to,omitempty" bson:"to,omitempty"`
	Attempted string      `json:"attempted" bson:"attempted"`
	Reason    DeferReason `json:"reason" bson:"reason"`
}

// Kind returns the intent discriminator.
func (Defer) Kind() string { return KindDefer }

func (Defer) isIntent() {}

// Entry pairs a segment with its outcome for one pass.
type Entry struct {
	Segment segment.Descriptor
	Intent  Intent
}

// Metrics aggregates pass outcomes. The convergence driver uses these to
// decide whether another pass is warranted.
type Metrics struct {
	Placed   int `json:"placed" bson:"placed"`
	Deferred int `json:"deferred" bson:"deferred"`
}

// Plan is the ordered outcome of one pass: one entry per input segment, in
// input order.
type Plan struct {
	Entries []Entry `json:"entries" bson:"entries"`
	Metrics Metrics `json:"metrics" bson:"metrics"`
}

// Placed returns the entries with a Place intent, in plan order.
func (p *Plan) Placed() []Entry {
	out := make([]Entry, 0, p.Metrics.Placed)
	for _, e := range p.Entries {
		if _, ok := e.Intent.(Place); ok {
			out = append(out, e)
		}
	}
	return out
}

// Deferred returns the entries with a Defer intent, in plan order.
func (p *Plan) Deferred() []Entry {
	out := make([]Entry, 0, p.Metrics.Deferred)
	for _, e := range p.Entries {
		if _, ok := e.Intent.(Defer); ok {
			out = append(out, e)
		}
	}
	return out
}
