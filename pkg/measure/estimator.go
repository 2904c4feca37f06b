package measure

import "github.com/jdalgard/pageplan/pkg/segment"

// Estimator is the external measurer contract: given a segment descriptor,
// return its rendered height. The planner treats whatever the estimator
// supplies as authoritative; no cross-validation happens here.
type Estimator interface {
	Measure(seg segment.Descriptor) float64
}

// Rule parameters for [RuleEstimator]. Zero values fall back to the defaults.
const (
	DefaultLineHeight     = 18.0
	DefaultItemHeight     = 22.0
	DefaultBlockPadding   = 8.0
	DefaultMetadataHeight = 56.0
)

// RuleEstimator is a deterministic, font-metrics-flavored estimator used by
// the CLI and tests in place of a real renderer harness. Heights depend only
// on the descriptor's content shape, so identical content always measures
// identically.
type RuleEstimator struct {
	LineHeight     float64 // per text line
	ItemHeight     float64 // per list/table item
	BlockPadding   float64 // fixed padding per segment
	MetadataHeight float64 // flat height for metadata segments
}

// NewRuleEstimator creates a rule estimator with default parameters.
func NewRuleEstimator() *RuleEstimator {
	return &RuleEstimator{
		LineHeight:     DefaultLineHeight,
		ItemHeight:     DefaultItemHeight,
		BlockPadding:   DefaultBlockPadding,
		MetadataHeight: DefaultMetadataHeight,
	}
}

// Measure returns a deterministic height for the segment.
func (e *RuleEstimator) Measure(seg segment.Descriptor) float64 {
	if seg.Metadata {
		return e.MetadataHeight
	}
	if seg.ItemCount > 0 {
		return e.BlockPadding + float64(seg.ItemCount)*e.ItemHeight
	}
	lines := seg.Lines
	if lines < 1 {
		lines = 1
	}
	return e.BlockPadding + float64(lines)*e.LineHeight
}

// MeasureAll measures every segment and returns heights keyed by measurement
// key, ready for [Set.RecordAll].
func MeasureAll(e Estimator, segments []segment.Descriptor) map[string]float64 {
	out := make(map[string]float64, len(segments))
	for _, seg := range segments {
		out[seg.MeasureKey] = e.Measure(seg)
	}
	return out
}

// Ensure RuleEstimator implements Estimator.
var _ Estimator = (*RuleEstimator)(nil)
