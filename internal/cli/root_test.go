package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := map[string]bool{
		"plan":       false,
		"decompose":  false,
		"regions":    false,
		"serve":      false,
		"cache":      false,
		"archive":    false,
		"watch":      false,
		"completion": false,
	}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func writeFixtures(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	tmplPath := filepath.Join(dir, "template.toml")
	tmpl := `
name = "letter-1col"
pages = 1
columns = 1

[page]
width = 612
height = 792
`
	if err := os.WriteFile(tmplPath, []byte(tmpl), 0644); err != nil {
		t.Fatalf("write template: %v", err)
	}

	docPath := filepath.Join(dir, "doc.json")
	doc := `{
  "title": "report",
  "components": [
    {"id": "intro", "kind": "metadata"},
    {"id": "body", "kind": "text", "body": "One short paragraph."}
  ]
}`
	if err := os.WriteFile(docPath, []byte(doc), 0644); err != nil {
		t.Fatalf("write document: %v", err)
	}
	return tmplPath, docPath
}

func TestPlanCommandJSON(t *testing.T) {
	tmplPath, docPath := writeFixtures(t)
	out := filepath.Join(t.TempDir(), "plan.json")

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"plan", tmplPath, docPath, "-f", "json", "-o", out, "--stability", "10ms"})

	if err := root.Execute(); err != nil {
		t.Fatalf("plan command: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	for _, want := range []string{`"title": "report"`, `"p1c1"`, `"metrics"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("output missing %s", want)
		}
	}
}

func TestPlanCommandRejectsBadFormat(t *testing.T) {
	tmplPath, docPath := writeFixtures(t)

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"plan", tmplPath, docPath, "-f", "pdf"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRegionsCommand(t *testing.T) {
	tmplPath, _ := writeFixtures(t)

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"regions", tmplPath})

	if err := root.Execute(); err != nil {
		t.Fatalf("regions command: %v", err)
	}
}

func TestDecomposeCommand(t *testing.T) {
	tmplPath, docPath := writeFixtures(t)

	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"decompose", tmplPath, docPath})

	if err := root.Execute(); err != nil {
		t.Fatalf("decompose command: %v", err)
	}
}
