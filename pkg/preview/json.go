package preview

import (
	"encoding/json"

	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
)

type jsonRegion struct {
	Key       string  `json:"key"`
	MaxHeight float64 `json:"max_height"`
	Used      float64 `json:"used"`
}

type jsonSegment struct {
	Component string  `json:"component"`
	Segment   string  `json:"segment"`
	Status    string  `json:"status"`
	Region    string  `json:"region,omitempty"`
	Top       float64 `json:"top,omitempty"`
	Bottom    float64 `json:"bottom,omitempty"`
	Height    float64 `json:"height,omitempty"`
	Reason    string  `json:"reason"`
	To        string  `json:"to,omitempty"`
}

type jsonOutput struct {
	Title    string        `json:"title,omitempty"`
	Regions  []jsonRegion  `json:"regions"`
	Segments []jsonSegment `json:"segments"`
	Metrics  plan.Metrics  `json:"metrics"`
}

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonOutput)

// WithJSONTitle records a document title in the output.
func WithJSONTitle(title string) JSONOption { return func(o *jsonOutput) { o.Title = title } }

// RenderJSON serializes a plan plus region utilization into an indented
// JSON document.
func RenderJSON(p *plan.Plan, regions []region.Config, opts ...JSONOption) ([]byte, error) {
	used := make(map[string]float64, len(regions))
	segments := make([]jsonSegment, 0, len(p.Entries))
	for _, e := range p.Entries {
		switch intent := e.Intent.(type) {
		case plan.Place:
			segments = append(segments, jsonSegment{
				Component: e.Segment.Component,
				Segment:   e.Segment.ID,
				Status:    plan.KindPlace,
				Region:    intent.Region,
				Top:       intent.Top,
				Bottom:    intent.Bottom,
				Height:    intent.Height,
				Reason:    string(intent.Reason),
			})
			if intent.Bottom > used[intent.Region] {
				used[intent.Region] = intent.Bottom
			}
		case plan.Defer:
			segments = append(segments, jsonSegment{
				Component: e.Segment.Component,
				Segment:   e.Segment.ID,
				Status:    plan.KindDefer,
				Reason:    string(intent.Reason),
				To:        intent.To,
			})
		}
	}

	out := jsonOutput{
		Regions:  make([]jsonRegion, 0, len(regions)),
		Segments: segments,
		Metrics:  p.Metrics,
	}
	for _, cfg := range regions {
		out.Regions = append(out.Regions, jsonRegion{Key: cfg.Key, MaxHeight: cfg.MaxHeight, Used: used[cfg.Key]})
	}
	for _, opt := range opts {
		opt(&out)
	}
	return json.MarshalIndent(out, "", "  ")
}
