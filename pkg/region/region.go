// Package region models the ordered, capacity-bounded targets that segments
// are placed into — typically one column on one page.
//
// A [Model] is rebuilt once per planning pass from caller-supplied [Config]
// values; regions carry a fill cursor that starts at the configured offset and
// only moves forward. Capacity and identity never change during a pass.
package region

import (
	"github.com/jdalgard/pageplan/pkg/errors"
)

// FitEpsilon absorbs sub-pixel floating-point rounding carried in from
// upstream measurement. It is not a tunable business rule.
const FitEpsilon = 0.5

// Config is caller-supplied region configuration. StartOffset carries a
// cursor position forward from a previously committed plan.
type Config struct {
	Key         string  `json:"key" bson:"key"`
	MaxHeight   float64 `json:"max_height" bson:"max_height"`
	StartOffset float64 `json:"start_offset,omitempty" bson:"start_offset,omitempty"`
}

// Region is the per-pass runtime state for one placement target.
// Identity and capacity are immutable within a pass; only [Region.Advance]
// moves the cursor, and only forward.
type Region struct {
	Key       string
	MaxHeight float64

	cursor float64
	index  int
}

// Cursor returns the current fill offset.
func (r *Region) Cursor() float64 { return r.cursor }

// Index returns the region's position in the model ordering.
func (r *Region) Index() int { return r.index }

// Fit is the result of a successful fit probe.
type Fit struct {
	Top         float64
	Bottom      float64
	CursorAfter float64
}

// Probe checks whether a segment of the given height (plus trailing spacing)
// fits in the region's remaining capacity. It does not mutate the region.
//
//	top         = cursor
//	bottom      = top + height
//	cursorAfter = bottom + spacing
//
// The segment fits iff cursorAfter ≤ MaxHeight + FitEpsilon.
func (r *Region) Probe(height, spacing float64) (Fit, bool) {
	f := Fit{
		Top:    r.cursor,
		Bottom: r.cursor + height,
	}
	f.CursorAfter = f.Bottom + spacing
	if f.CursorAfter > r.MaxHeight+FitEpsilon {
		return Fit{}, false
	}
	return f, true
}

// Advance commits a fit, moving the cursor to f.CursorAfter. The cursor never
// moves backward; a stale or out-of-order fit is ignored.
func (r *Region) Advance(f Fit) {
	if f.CursorAfter > r.cursor {
		r.cursor = f.CursorAfter
	}
}

// Model is an ordered list of regions with key lookup.
type Model struct {
	regions []*Region
	byKey   map[string]*Region
}

// NewModel builds a per-pass model from ordered configs. Keys must be
// non-empty and unique.
func NewModel(configs []Config) (*Model, error) {
	m := &Model{
		regions: make([]*Region, 0, len(configs)),
		byKey:   make(map[string]*Region, len(configs)),
	}
	for i, cfg := range configs {
		if err := errors.ValidateRegionKey(cfg.Key); err != nil {
			return nil, err
		}
		if _, dup := m.byKey[cfg.Key]; dup {
			return nil, errors.New(errors.ErrCodeInvalidRegion, "duplicate region key: %s", cfg.Key)
		}
		r := &Region{
			Key:       cfg.Key,
			MaxHeight: cfg.MaxHeight,
			cursor:    cfg.StartOffset,
			index:     i,
		}
		m.regions = append(m.regions, r)
		m.byKey[cfg.Key] = r
	}
	return m, nil
}

// Region looks up a region by key.
func (m *Model) Region(key string) (*Region, bool) {
	r, ok := m.byKey[key]
	return r, ok
}

// Next returns the region immediately following r in the model ordering, or
// nil if r is the last region (or not part of this model).
func (m *Model) Next(r *Region) *Region {
	if r == nil || r.index+1 >= len(m.regions) {
		return nil
	}
	next := m.regions[r.index+1]
	if m.byKey[r.Key] != r {
		return nil
	}
	return next
}

// Len returns the number of regions.
func (m *Model) Len() int { return len(m.regions) }

// Regions returns the regions in order. The slice is shared; callers must not
// modify it.
func (m *Model) Regions() []*Region { return m.regions }

// Cursors returns the current cursor offset per region key. The driver uses
// this after a committed pass to carry offsets into the next pass.
func (m *Model) Cursors() map[string]float64 {
	out := make(map[string]float64, len(m.regions))
	for _, r := range m.regions {
		out[r.Key] = r.cursor
	}
	return out
}
