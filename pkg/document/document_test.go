package document

import (
	"testing"

	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/template"
)

const sampleJSON = `{
  "title": "Spring Banquet",
  "components": [
    {"id": "event", "kind": "metadata"},
    {"id": "welcome", "kind": "text", "body": "First paragraph.\n\nSecond paragraph."},
    {"id": "guests", "kind": "list", "region": "p1c2",
     "items": ["a","b","c","d","e","f","g","h","i","j"]}
  ]
}`

func testTemplate(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := template.Parse([]byte("name = \"test\"\ncolumns = 2"))
	if err != nil {
		t.Fatalf("template.Parse error: %v", err)
	}
	return tmpl
}

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Title != "Spring Banquet" || len(doc.Components) != 3 {
		t.Errorf("document = %+v", doc)
	}
}

func TestParseValidation(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"empty id", `{"components":[{"id":"","kind":"text"}]}`},
		{"duplicate id", `{"components":[{"id":"a","kind":"text"},{"id":"a","kind":"list"}]}`},
		{"unknown kind", `{"components":[{"id":"a","kind":"chart"}]}`},
		{"id with colon", `{"components":[{"id":"a:b","kind":"text"}]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.json))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidDocument) {
				t.Errorf("code = %v, want INVALID_DOCUMENT", errors.GetCode(err))
			}
		})
	}
}

func TestDecompose(t *testing.T) {
	doc, _ := Parse([]byte(sampleJSON))
	segs := Decomposer{}.Decompose(doc, testTemplate(t))

	// metadata + 2 paragraphs + 2 list chunks (10 items, chunk size 8)
	if len(segs) != 5 {
		t.Fatalf("segments = %d, want 5", len(segs))
	}

	meta := segs[0]
	if !meta.Metadata || meta.Component != "event" || meta.HomeRegion != "p1c1" {
		t.Errorf("metadata segment = %+v", meta)
	}

	if segs[1].ID != "para-0" || segs[2].ID != "para-1" {
		t.Errorf("paragraph ids = %s, %s", segs[1].ID, segs[2].ID)
	}
	if segs[1].Lines < 1 {
		t.Errorf("paragraph lines = %d, want >= 1", segs[1].Lines)
	}

	first, second := segs[3], segs[4]
	if first.ItemCount != 8 || first.StartIndex != 0 || first.Continuation {
		t.Errorf("first chunk = %+v", first)
	}
	if second.ItemCount != 2 || second.StartIndex != 8 || !second.Continuation {
		t.Errorf("second chunk = %+v", second)
	}
	if first.TotalCount != 10 || second.TotalCount != 10 {
		t.Errorf("total counts = %d, %d, want 10", first.TotalCount, second.TotalCount)
	}

	// Declared region wins over the template default
	if first.HomeRegion != "p1c2" {
		t.Errorf("list home region = %q, want p1c2", first.HomeRegion)
	}
}

func TestDecomposeStableMeasureKeys(t *testing.T) {
	doc, _ := Parse([]byte(sampleJSON))
	tmpl := testTemplate(t)

	a := Decomposer{}.Decompose(doc, tmpl)
	b := Decomposer{}.Decompose(doc, tmpl)

	if len(a) != len(b) {
		t.Fatalf("decompose not stable: %d vs %d segments", len(a), len(b))
	}
	for i := range a {
		if a[i].MeasureKey != b[i].MeasureKey {
			t.Errorf("segment %d: measure keys differ across runs: %s vs %s", i, a[i].MeasureKey, b[i].MeasureKey)
		}
	}
}

func TestDecomposeChunkSize(t *testing.T) {
	doc, _ := Parse([]byte(`{"components":[{"id":"g","kind":"list","items":["a","b","c","d","e"]}]}`))
	segs := Decomposer{ChunkSize: 2}.Decompose(doc, testTemplate(t))

	if len(segs) != 3 {
		t.Fatalf("segments = %d, want 3 chunks of <=2", len(segs))
	}
	if segs[2].ItemCount != 1 || segs[2].StartIndex != 4 {
		t.Errorf("last chunk = %+v", segs[2])
	}
}

func TestDecomposeTable(t *testing.T) {
	doc, _ := Parse([]byte(`{"components":[{"id":"prices","kind":"table","rows":[["a","1"],["b","2"]]}]}`))
	segs := Decomposer{}.Decompose(doc, testTemplate(t))

	if len(segs) != 1 {
		t.Fatalf("segments = %d, want 1", len(segs))
	}
	if segs[0].Kind != KindTable || segs[0].ItemCount != 2 {
		t.Errorf("table segment = %+v", segs[0])
	}
}
