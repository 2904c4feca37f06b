// Package template loads page templates and expands them into ordered region
// configurations.
//
// A template describes the page geometry (size, margins, column count); the
// expansion produces one region per column per page, keyed "p<page>c<col>",
// in reading order. Templates are authored in TOML:
//
//	name = "letter-2col"
//	pages = 2
//	columns = 2
//	column_gap = 24
//	spacing = 12
//
//	[page]
//	width = 612
//	height = 792
//	margin_top = 36
//	margin_bottom = 36
//	margin_left = 36
//	margin_right = 36
package template

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/region"
)

// Default geometry (US letter, single column).
const (
	DefaultPageWidth  = 612.0
	DefaultPageHeight = 792.0
	DefaultMargin     = 36.0
	DefaultColumnGap  = 24.0
	DefaultSpacing    = 12.0
)

// Page is the physical page geometry in length units.
type Page struct {
	Width        float64 `toml:"width"`
	Height       float64 `toml:"height"`
	MarginTop    float64 `toml:"margin_top"`
	MarginBottom float64 `toml:"margin_bottom"`
	MarginLeft   float64 `toml:"margin_left"`
	MarginRight  float64 `toml:"margin_right"`
}

// Template is a loaded page template.
type Template struct {
	Name      string  `toml:"name"`
	Pages     int     `toml:"pages"`
	Columns   int     `toml:"columns"`
	ColumnGap float64 `toml:"column_gap"`
	Spacing   float64 `toml:"spacing"`
	Page      Page    `toml:"page"`
}

// SetDefaults fills unset fields with the default geometry.
func (t *Template) SetDefaults() {
	if t.Pages <= 0 {
		t.Pages = 1
	}
	if t.Columns <= 0 {
		t.Columns = 1
	}
	if t.ColumnGap <= 0 {
		t.ColumnGap = DefaultColumnGap
	}
	if t.Spacing <= 0 {
		t.Spacing = DefaultSpacing
	}
	if t.Page.Width <= 0 {
		t.Page.Width = DefaultPageWidth
	}
	if t.Page.Height <= 0 {
		t.Page.Height = DefaultPageHeight
	}
	if t.Page.MarginTop <= 0 {
		t.Page.MarginTop = DefaultMargin
	}
	if t.Page.MarginBottom <= 0 {
		t.Page.MarginBottom = DefaultMargin
	}
	if t.Page.MarginLeft <= 0 {
		t.Page.MarginLeft = DefaultMargin
	}
	if t.Page.MarginRight <= 0 {
		t.Page.MarginRight = DefaultMargin
	}
}

// Validate checks geometric consistency after defaults are set.
func (t *Template) Validate() error {
	if t.Page.MarginTop+t.Page.MarginBottom >= t.Page.Height {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"vertical margins (%.0f) exceed page height (%.0f)",
			t.Page.MarginTop+t.Page.MarginBottom, t.Page.Height)
	}
	if t.Page.MarginLeft+t.Page.MarginRight+float64(t.Columns-1)*t.ColumnGap >= t.Page.Width {
		return errors.New(errors.ErrCodeInvalidTemplate,
			"horizontal margins and gaps leave no column width on a %.0f-unit page", t.Page.Width)
	}
	return nil
}

// ColumnHeight returns the usable height of one column.
func (t *Template) ColumnHeight() float64 {
	return t.Page.Height - t.Page.MarginTop - t.Page.MarginBottom
}

// ColumnWidth returns the usable width of one column.
func (t *Template) ColumnWidth() float64 {
	usable := t.Page.Width - t.Page.MarginLeft - t.Page.MarginRight - float64(t.Columns-1)*t.ColumnGap
	return usable / float64(t.Columns)
}

// RegionKey formats the region key for a page/column pair (both 1-based).
func RegionKey(page, column int) string {
	return fmt.Sprintf("p%dc%d", page, column)
}

// Regions expands the template into ordered region configs: page by page,
// column by column, each with the uniform column height as capacity.
func (t *Template) Regions() []region.Config {
	out := make([]region.Config, 0, t.Pages*t.Columns)
	height := t.ColumnHeight()
	for page := 1; page <= t.Pages; page++ {
		for col := 1; col <= t.Columns; col++ {
			out = append(out, region.Config{
				Key:       RegionKey(page, col),
				MaxHeight: height,
			})
		}
	}
	return out
}

// Parse decodes a TOML template, applies defaults, and validates.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "parse template")
	}
	t.SetDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Load reads and parses a template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "template %s", path)
		}
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", path, err)
	}
	return t, nil
}
