package preview

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
)

// ToDOT converts a plan into Graphviz DOT format. Regions become clusters
// containing their placed segments in visual order; deferred segments are
// drawn outside the clusters with an edge to the region they were pushed
// toward. The resulting DOT string can be rasterized with [RenderDOT].
func ToDOT(p *plan.Plan, regions []region.Config) string {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12];\n")
	buf.WriteString("\n")

	byRegion := make(map[string][]plan.Entry)
	for _, e := range p.Placed() {
		place := e.Intent.(plan.Place)
		byRegion[place.Region] = append(byRegion[place.Region], e)
	}

	for i, cfg := range regions {
		fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("%s (%.0f)", cfg.Key, cfg.MaxHeight))
		fmt.Fprintf(&buf, "    style=dashed;\n")
		entries := byRegion[cfg.Key]
		var prev string
		for _, e := range entries {
			place := e.Intent.(plan.Place)
			id := nodeID(e)
			label := fmt.Sprintf("%s\n%.0f-%.0f", e.Segment.Key(), place.Top, place.Bottom)
			attrs := []string{fmt.Sprintf("label=%q", label)}
			if place.Reason == plan.PlaceForced {
				attrs = append(attrs, "fillcolor=mistyrose")
			}
			fmt.Fprintf(&buf, "    %q [%s];\n", id, strings.Join(attrs, ", "))
			if prev != "" {
				fmt.Fprintf(&buf, "    %q -> %q [style=invis];\n", prev, id)
			}
			prev = id
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, e := range p.Deferred() {
		d := e.Intent.(plan.Defer)
		id := nodeID(e)
		label := fmt.Sprintf("%s\n%s", e.Segment.Key(), d.Reason)
		fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,dashed\", fillcolor=lightgrey];\n", id, label)
		if d.To != "" {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", id, regionAnchor(byRegion, d.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(e plan.Entry) string {
	return e.Segment.Key().String()
}

// regionAnchor picks a node inside the target cluster for deferral edges,
// falling back to a synthetic node name when the cluster is empty.
func regionAnchor(byRegion map[string][]plan.Entry, key string) string {
	if entries := byRegion[key]; len(entries) > 0 {
		return nodeID(entries[0])
	}
	return "region:" + key
}

// RenderDOT rasterizes a DOT graph to SVG using Graphviz.
func RenderDOT(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
