// Package measure holds measured segment heights and the pure selectors that
// decide whether planning may run.
//
// Heights arrive keyed by measurement key from an external measurer. The
// required/missing/complete values are always derived on demand from the live
// segment list and the known heights — they are never stored, which removes
// any chance of a stored flag drifting out of sync with the data it
// summarizes.
package measure

import (
	"sync"

	"github.com/jdalgard/pageplan/pkg/segment"
)

// Set stores measured heights by measurement key.
//
// The version counter increments on every recorded height. The driver tags
// each planning pass with the version it observed at pass start and discards
// pending plans whose version is no longer current (last-completed-wins).
type Set struct {
	mu      sync.RWMutex
	heights map[string]float64
	version uint64
}

// NewSet creates an empty measurement set.
func NewSet() *Set {
	return &Set{heights: make(map[string]float64)}
}

// Record stores a measured height and bumps the version.
func (s *Set) Record(key string, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heights[key] = height
	s.version++
}

// RecordAll stores a batch of measured heights. The version is bumped once
// per key so that every observer sees a change.
func (s *Set) RecordAll(heights map[string]float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, h := range heights {
		s.heights[key] = h
		s.version++
	}
}

// Known reports whether a height has been recorded for key.
func (s *Set) Known(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.heights[key]
	return ok
}

// Height returns the recorded height for key.
func (s *Set) Height(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.heights[key]
	return h, ok
}

// Len returns the number of recorded heights.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.heights)
}

// Version returns the monotonic measurement version.
func (s *Set) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Apply returns a copy of segments with authoritative heights filled in from
// the set. Segments whose key has no recorded height are copied unchanged
// (their estimate remains the only height information).
func (s *Set) Apply(segments []segment.Descriptor) []segment.Descriptor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]segment.Descriptor, len(segments))
	copy(out, segments)
	for i := range out {
		if h, ok := s.heights[out[i].MeasureKey]; ok {
			out[i].Height = h
		}
	}
	return out
}
