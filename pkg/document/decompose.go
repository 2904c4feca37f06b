package document

import (
	"fmt"

	"github.com/jdalgard/pageplan/pkg/segment"
	"github.com/jdalgard/pageplan/pkg/template"
)

// DefaultChunkSize is the number of list/table items per continuation segment.
const DefaultChunkSize = 8

// lineWidth approximates how many characters of body text fit on one line,
// used to derive the Lines hint for the estimator.
const lineWidth = 80

// Decomposer converts documents into segment descriptors against a template.
type Decomposer struct {
	// ChunkSize caps items per list/table segment. Defaults to DefaultChunkSize.
	ChunkSize int
}

// Decompose produces ordered segment descriptors for the document. Each
// segment's home region is the component's declared region, falling back to
// the template's first region. Measurement keys are derived from component
// identity plus slice bounds, so unchanged content keys identically across
// runs.
func (dc Decomposer) Decompose(doc *Document, tmpl *template.Template) []segment.Descriptor {
	chunk := dc.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	defaultRegion := ""
	if regions := tmpl.Regions(); len(regions) > 0 {
		defaultRegion = regions[0].Key
	}

	var out []segment.Descriptor
	for _, c := range doc.Components {
		home := c.Region
		if home == "" {
			home = defaultRegion
		}

		switch c.Kind {
		case KindMetadata:
			out = append(out, segment.Descriptor{
				Component:  c.ID,
				ID:         "meta",
				MeasureKey: segment.MeasureKey(c.ID, "meta", 0, 1),
				HomeRegion: home,
				Spacing:    c.Spacing,
				Kind:       c.Kind,
				Metadata:   true,
			})

		case KindList, KindTable:
			total := len(c.Items)
			if c.Kind == KindTable {
				total = len(c.Rows)
			}
			for start, n := 0, 0; start < total; start, n = start+chunk, n+1 {
				count := chunk
				if start+count > total {
					count = total - start
				}
				out = append(out, segment.Descriptor{
					Component:    c.ID,
					ID:           fmt.Sprintf("%s-%d", c.Kind, n),
					MeasureKey:   segment.MeasureKey(c.ID, c.Kind, start, count),
					HomeRegion:   home,
					Spacing:      c.Spacing,
					Kind:         c.Kind,
					Continuation: start > 0,
					StartIndex:   start,
					ItemCount:    count,
					TotalCount:   total,
				})
			}

		case KindText:
			for i, p := range paragraphs(c.Body) {
				out = append(out, segment.Descriptor{
					Component:  c.ID,
					ID:         fmt.Sprintf("para-%d", i),
					MeasureKey: segment.MeasureKey(c.ID, "para", i, 1),
					HomeRegion: home,
					Spacing:    c.Spacing,
					Kind:       c.Kind,
					Lines:      estimateLines(p),
				})
			}
		}
	}
	return out
}

// estimateLines derives a line-count hint for a paragraph.
func estimateLines(text string) int {
	lines := (len(text) + lineWidth - 1) / lineWidth
	if lines < 1 {
		lines = 1
	}
	return lines
}
