// Package document decomposes domain content into segment descriptors.
//
// A document is a flat list of components (text, lists, tables, metadata)
// loaded from JSON. Decomposition turns each component into one or more
// segments: metadata becomes a single segment, long lists and tables are
// chunked into continuation segments, and text is split per paragraph. The
// planner never sees documents; it only consumes the resulting descriptors.
package document

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jdalgard/pageplan/pkg/errors"
)

// Component kinds.
const (
	KindText     = "text"
	KindList     = "list"
	KindTable    = "table"
	KindMetadata = "metadata"
)

// ValidKinds is the set of recognized component kinds.
var ValidKinds = map[string]bool{
	KindText:     true,
	KindList:     true,
	KindTable:    true,
	KindMetadata: true,
}

// Component is one addressable piece of document content.
type Component struct {
	ID      string     `json:"id"`
	Kind    string     `json:"kind"`
	Region  string     `json:"region,omitempty"`
	Body    string     `json:"body,omitempty"`
	Items   []string   `json:"items,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`
	Spacing *float64   `json:"spacing,omitempty"`
}

// Document is the decomposer's input.
type Document struct {
	Title      string      `json:"title"`
	Components []Component `json:"components"`
}

// Validate checks component identities and kinds.
func (d *Document) Validate() error {
	seen := make(map[string]bool, len(d.Components))
	for _, c := range d.Components {
		if err := errors.ValidateComponentID(c.ID); err != nil {
			return err
		}
		if seen[c.ID] {
			return errors.New(errors.ErrCodeInvalidDocument, "duplicate component id: %s", c.ID)
		}
		seen[c.ID] = true
		if !ValidKinds[c.Kind] {
			return errors.New(errors.ErrCodeInvalidDocument, "component %s: unknown kind %q", c.ID, c.Kind)
		}
	}
	return nil
}

// Parse decodes and validates a JSON document.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDocument, err, "parse document")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Load reads and parses a document file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "document %s", path)
		}
		return nil, err
	}
	return Parse(data)
}

// paragraphs splits a text body on blank lines.
func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
