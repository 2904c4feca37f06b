// Package preview renders committed plans for human inspection.
//
// Sinks are pure consumers of a [plan.Plan]: they never mutate it and have no
// influence on planning. Three formats are supported — hand-written SVG,
// pretty-printed JSON, and Graphviz DOT (with optional SVG rasterization of
// the DOT graph).
package preview

import (
	"bytes"
	"fmt"

	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
)

// SVG geometry defaults (length units map 1:1 to SVG user units).
const (
	svgColumnWidth = 180.0
	svgColumnGap   = 24.0
	svgPadding     = 20.0
	svgDeferRow    = 56.0
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	title       string
	columnWidth float64
	showLabels  bool
}

// WithTitle adds a document title above the regions.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithColumnWidth overrides the rendered column width.
func WithColumnWidth(w float64) SVGOption { return func(r *svgRenderer) { r.columnWidth = w } }

// WithLabels renders segment identities inside the boxes.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.showLabels = true } }

// RenderSVG draws region outlines, placed segment boxes, and a strip listing
// deferred segments.
func RenderSVG(p *plan.Plan, regions []region.Config, opts ...SVGOption) []byte {
	r := svgRenderer{columnWidth: svgColumnWidth}
	for _, opt := range opts {
		opt(&r)
	}

	maxHeight := 0.0
	for _, cfg := range regions {
		if cfg.MaxHeight > maxHeight {
			maxHeight = cfg.MaxHeight
		}
	}

	titleOffset := 0.0
	if r.title != "" {
		titleOffset = 28
	}

	width := svgPadding*2 + float64(len(regions))*r.columnWidth + float64(max(len(regions)-1, 0))*svgColumnGap
	height := svgPadding*2 + titleOffset + maxHeight + svgDeferRow

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="16" font-weight="bold">%s</text>`+"\n",
			svgPadding, svgPadding, escapeXML(r.title))
	}

	// Region outlines
	xByKey := make(map[string]float64, len(regions))
	for i, cfg := range regions {
		x := svgPadding + float64(i)*(r.columnWidth+svgColumnGap)
		xByKey[cfg.Key] = x
		y := svgPadding + titleOffset
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#999" stroke-dasharray="4 2"/>`+"\n",
			x, y, r.columnWidth, cfg.MaxHeight)
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="11" fill="#666">%s</text>`+"\n",
			x, y-4, escapeXML(cfg.Key))
	}

	// Placed segments
	for _, e := range p.Entries {
		place, ok := e.Intent.(plan.Place)
		if !ok {
			continue
		}
		x, known := xByKey[place.Region]
		if !known {
			continue
		}
		y := svgPadding + titleOffset + place.Top
		fill := "#cfe3f7"
		if place.Reason == plan.PlaceForced {
			fill = "#f7d4cf"
		}
		fmt.Fprintf(&buf, `  <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" stroke="#336"/>`+"\n",
			x+2, y, r.columnWidth-4, place.Height, fill)
		if r.showLabels {
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="10">%s</text>`+"\n",
				x+6, y+12, escapeXML(e.Segment.Key().String()))
		}
	}

	// Deferred strip
	deferred := p.Deferred()
	if len(deferred) > 0 {
		y := svgPadding + titleOffset + maxHeight + 20
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="12" fill="#a33">deferred (%d):</text>`+"\n",
			svgPadding, y, len(deferred))
		for i, e := range deferred {
			d := e.Intent.(plan.Defer)
			label := fmt.Sprintf("%s (%s)", e.Segment.Key(), d.Reason)
			fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-size="10" fill="#a33">%s</text>`+"\n",
				svgPadding, y+14+float64(i)*12, escapeXML(label))
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		case '"':
			buf.WriteString("&quot;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
