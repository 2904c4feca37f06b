// Package segment defines the schedulable unit of content consumed by the planner.
//
// A [Descriptor] describes one slice of a document component: its identity, the
// region it wants to live in, and its rendered height once measured. Descriptors
// are rebuilt whenever upstream content or template configuration changes; they
// carry no planner state of their own.
//
// # Measurement Keys
//
// Heights are looked up by measurement key, a stable string derived from content
// identity plus slice bounds. Identical content always maps to the same key
// across runs, which is what makes the reroute cache safe: a cached deferral
// target keyed on (component, segment) stays meaningful between planning passes.
package segment

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Descriptor is one schedulable unit of content.
//
// Height is the authoritative post-measurement height; Estimate is an optional
// pre-measurement guess used only for display before measurement completes.
// The planner must only run once every descriptor's measurement key has a
// known height (enforced by the driver's completeness gate, not here).
type Descriptor struct {
	// Identity
	Component  string `json:"component" bson:"component"`
	ID         string `json:"id" bson:"id"`
	MeasureKey string `json:"measure_key" bson:"measure_key"`

	// Placement
	HomeRegion string   `json:"home_region" bson:"home_region"`
	Height     float64  `json:"height" bson:"height"`
	Estimate   float64  `json:"estimate,omitempty" bson:"estimate,omitempty"`
	Spacing    *float64 `json:"spacing,omitempty" bson:"spacing,omitempty"`

	// Content shape
	Kind         string `json:"kind,omitempty" bson:"kind,omitempty"`
	Lines        int    `json:"lines,omitempty" bson:"lines,omitempty"`
	Metadata     bool   `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Continuation bool   `json:"continuation,omitempty" bson:"continuation,omitempty"`
	StartIndex   int    `json:"start_index,omitempty" bson:"start_index,omitempty"`
	ItemCount    int    `json:"item_count,omitempty" bson:"item_count,omitempty"`
	TotalCount   int    `json:"total_count,omitempty" bson:"total_count,omitempty"`
}

// Key identifies a segment within a document: the owning component plus the
// segment's ID (unique within that component). It is the reroute cache key.
type Key struct {
	Component string `json:"component" bson:"component"`
	Segment   string `json:"segment" bson:"segment"`
}

// String formats the key as "component/segment".
func (k Key) String() string {
	return k.Component + "/" + k.Segment
}

// Key returns the cache identity for the descriptor.
func (d *Descriptor) Key() Key {
	return Key{Component: d.Component, Segment: d.ID}
}

// EffectiveHeight returns the authoritative height if known, else the estimate.
// Planner input should always have Height set; the estimate path exists for
// pre-measurement display only.
func (d *Descriptor) EffectiveHeight() float64 {
	if d.Height > 0 {
		return d.Height
	}
	return d.Estimate
}

// SpacingOr returns the explicit post-segment spacing if set, else def.
func (d *Descriptor) SpacingOr(def float64) float64 {
	if d.Spacing != nil {
		return *d.Spacing
	}
	return def
}

// MeasureKey derives a stable measurement key from content identity and slice
// bounds. The same component, block, and bounds always hash to the same key,
// so re-decomposing unchanged content re-uses prior measurements.
func MeasureKey(component, blockID string, start, count int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s/%s[%d:%d]", component, blockID, start, start+count)))
	return "m:" + hex.EncodeToString(sum[:8])
}
