package measure

import "github.com/jdalgard/pageplan/pkg/segment"

// Stats summarizes measurement readiness for observability. All fields are
// derived; nothing here is authoritative state.
type Stats struct {
	Required int     `json:"required"`
	Measured int     `json:"measured"`
	Missing  int     `json:"missing"`
	Complete bool    `json:"complete"`
	Percent  float64 `json:"percent"`
}

// Required returns the unique measurement keys of the given segments, in
// input order.
func Required(segments []segment.Descriptor) []string {
	seen := make(map[string]bool, len(segments))
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.MeasureKey == "" || seen[seg.MeasureKey] {
			continue
		}
		seen[seg.MeasureKey] = true
		out = append(out, seg.MeasureKey)
	}
	return out
}

// Missing returns the required keys that have no recorded height, in input
// order.
func Missing(segments []segment.Descriptor, set *Set) []string {
	var out []string
	for _, key := range Required(segments) {
		if !set.Known(key) {
			out = append(out, key)
		}
	}
	return out
}

// Complete reports whether planning may run: every required key has a known
// height AND at least one key is required. An empty segment list is not
// complete — with nothing to plan, a pass must not run just because nothing
// is outstanding.
func Complete(segments []segment.Descriptor, set *Set) bool {
	required := Required(segments)
	if len(required) == 0 {
		return false
	}
	for _, key := range required {
		if !set.Known(key) {
			return false
		}
	}
	return true
}

// Compute derives readiness stats from the segment list and measurement set.
func Compute(segments []segment.Descriptor, set *Set) Stats {
	required := Required(segments)
	missing := 0
	for _, key := range required {
		if !set.Known(key) {
			missing++
		}
	}

	st := Stats{
		Required: len(required),
		Measured: len(required) - missing,
		Missing:  missing,
		Complete: len(required) > 0 && missing == 0,
	}
	if st.Required > 0 {
		st.Percent = float64(st.Measured) / float64(st.Required) * 100
	}
	return st
}
