package preview

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
	"github.com/jdalgard/pageplan/pkg/segment"
)

func samplePlan() (*plan.Plan, []region.Config) {
	regions := []region.Config{
		{Key: "p1c1", MaxHeight: 300},
		{Key: "p1c2", MaxHeight: 300},
	}
	p := &plan.Plan{
		Entries: []plan.Entry{
			{
				Segment: segment.Descriptor{Component: "intro", ID: "meta", Height: 80},
				Intent:  plan.Place{Region: "p1c1", Top: 0, Bottom: 80, Height: 80, CursorAfter: 92, Reason: plan.PlaceFits},
			},
			{
				Segment: segment.Descriptor{Component: "items", ID: "list-0", Height: 120},
				Intent:  plan.Place{Region: "p1c1", Top: 92, Bottom: 212, Height: 120, CursorAfter: 224, Reason: plan.PlaceFits},
			},
			{
				Segment: segment.Descriptor{Component: "items", ID: "list-1", Height: 200},
				Intent:  plan.Defer{From: "p1c1", To: "p1c2", Attempted: "p1c1", Reason: plan.DeferInsufficientSpace},
			},
		},
		Metrics: plan.Metrics{Placed: 2, Deferred: 1},
	}
	return p, regions
}

func TestRenderSVG(t *testing.T) {
	p, regions := samplePlan()
	svg := string(RenderSVG(p, regions, WithTitle("Q3 <Report>"), WithLabels()))

	if !strings.HasPrefix(svg, "<svg") {
		t.Fatalf("expected svg document, got %q", svg[:20])
	}
	if !strings.Contains(svg, "Q3 &lt;Report&gt;") {
		t.Error("title not escaped into output")
	}
	for _, want := range []string{"p1c1", "p1c2", "intro/meta", "deferred (1):", "items/list-1 (insufficient-space)"} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q", want)
		}
	}
}

func TestRenderSVGEmptyPlan(t *testing.T) {
	svg := string(RenderSVG(&plan.Plan{}, []region.Config{{Key: "p1c1", MaxHeight: 100}}))
	if !strings.Contains(svg, "p1c1") {
		t.Error("expected region outline for empty plan")
	}
	if strings.Contains(svg, "deferred") {
		t.Error("no deferred strip expected for empty plan")
	}
}

func TestRenderJSON(t *testing.T) {
	p, regions := samplePlan()
	out, err := RenderJSON(p, regions, WithJSONTitle("report"))
	if err != nil {
		t.Fatalf("RenderJSON: %v", err)
	}

	var decoded struct {
		Title   string `json:"title"`
		Regions []struct {
			Key       string  `json:"key"`
			MaxHeight float64 `json:"max_height"`
			Used      float64 `json:"used"`
		} `json:"regions"`
		Segments []struct {
			Status string `json:"status"`
			Reason string `json:"reason"`
			To     string `json:"to"`
		} `json:"segments"`
		Metrics plan.Metrics `json:"metrics"`
	}
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	if decoded.Title != "report" {
		t.Errorf("title = %q", decoded.Title)
	}
	if len(decoded.Regions) != 2 || decoded.Regions[0].Used != 212 {
		t.Errorf("region utilization wrong: %+v", decoded.Regions)
	}
	if decoded.Regions[1].Used != 0 {
		t.Errorf("empty region should report zero used, got %v", decoded.Regions[1].Used)
	}
	if len(decoded.Segments) != 3 {
		t.Fatalf("want 3 segments, got %d", len(decoded.Segments))
	}
	last := decoded.Segments[2]
	if last.Status != plan.KindDefer || last.To != "p1c2" {
		t.Errorf("deferred entry wrong: %+v", last)
	}
	if decoded.Metrics.Placed != 2 || decoded.Metrics.Deferred != 1 {
		t.Errorf("metrics wrong: %+v", decoded.Metrics)
	}
}

func TestToDOT(t *testing.T) {
	p, regions := samplePlan()
	dot := ToDOT(p, regions)

	if !strings.HasPrefix(dot, "digraph plan {") {
		t.Fatalf("unexpected prefix: %q", dot[:20])
	}
	for _, want := range []string{
		"subgraph cluster_0",
		`"p1c1 (300)"`,
		"intro/meta",
		"insufficient-space",
		"[style=dashed]",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot missing %q", want)
		}
	}
	// deferral edge points at a node in the target cluster, or a synthetic
	// anchor when that cluster is empty
	if !strings.Contains(dot, `"items/list-1" -> "region:p1c2"`) {
		t.Errorf("missing deferral edge:\n%s", dot)
	}
}
