package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/pkg/document"
	"github.com/jdalgard/pageplan/pkg/driver"
	"github.com/jdalgard/pageplan/pkg/measure"
	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/reroute"
	"github.com/jdalgard/pageplan/pkg/template"
)

// watchCommand creates the watch command for live re-planning.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		chunkSize    int
		carryCursors bool
	)

	cmd := &cobra.Command{
		Use:   "watch <template.toml> <document.json>",
		Short: "Re-plan whenever the template or document changes",
		Long: `Re-plan whenever the template or document changes.

The reroute cache survives across re-plans, so edits that free up space let
previously deferred segments return home instead of oscillating between
regions. Press q to quit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], args[1], chunkSize, carryCursors)
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", document.DefaultChunkSize, "items per list/table chunk")
	cmd.Flags().BoolVar(&carryCursors, "carry-cursors", false, "carry committed cursors into the next pass")
	return cmd
}

// replanMsg carries one re-plan result into the TUI.
type replanMsg struct {
	plan *plan.Plan
	when time.Time
	err  error
}

// watchModel is the bubbletea model for the watch display.
type watchModel struct {
	templatePath string
	documentPath string
	last         *plan.Plan
	lastAt       time.Time
	lastErr      error
	replans      int
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case replanMsg:
		m.replans++
		m.lastAt = msg.when
		m.lastErr = msg.err
		if msg.err == nil {
			m.last = msg.plan
		}
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("pageplan watch"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s + %s  ·  q quit",
		filepath.Base(m.templatePath), filepath.Base(m.documentPath))))
	b.WriteString("\n\n")

	if m.lastErr != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + m.lastErr.Error() + "\n")
		return b.String()
	}
	if m.last == nil {
		b.WriteString(StyleDim.Render("waiting for first plan...") + "\n")
		return b.String()
	}

	for _, e := range m.last.Entries {
		key := e.Segment.Key().String()
		switch intent := e.Intent.(type) {
		case plan.Place:
			b.WriteString(fmt.Sprintf("  %-28s %-8s %7.1f-%.1f\n", key, intent.Region, intent.Top, intent.Bottom))
		case plan.Defer:
			b.WriteString(styleDeferred.Render(fmt.Sprintf("  %-28s deferred (%s)", key, intent.Reason)) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d placed · %d deferred · replan #%d at %s",
		m.last.Metrics.Placed, m.last.Metrics.Deferred, m.replans, m.lastAt.Format("15:04:05"))))
	b.WriteString("\n")
	return b.String()
}

func (c *CLI) runWatch(ctx context.Context, templatePath, documentPath string, chunkSize int, carryCursors bool) error {
	store := reroute.NewMemoryStore()
	d := driver.New(driver.Config{
		Stability:    10 * time.Millisecond,
		CarryCursors: carryCursors,
	}, store, driver.WithLogger(c.Logger))
	defer d.Close()

	replan := func() replanMsg {
		tmpl, err := template.Load(templatePath)
		if err != nil {
			return replanMsg{err: err, when: time.Now()}
		}
		doc, err := document.Load(documentPath)
		if err != nil {
			return replanMsg{err: err, when: time.Now()}
		}
		segments := document.Decomposer{ChunkSize: chunkSize}.Decompose(doc, tmpl)
		d.SetRegions(tmpl.Regions())
		d.SetSegments(segments)
		p, err := d.Run(ctx, measure.NewRuleEstimator())
		return replanMsg{plan: p, err: err, when: time.Now()}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the parent directories: editors often replace files on save,
	// which drops watches registered on the file itself.
	dirs := map[string]bool{}
	for _, path := range []string{templatePath, documentPath} {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	interesting := func(name string) bool {
		return filepath.Clean(name) == filepath.Clean(templatePath) ||
			filepath.Clean(name) == filepath.Clean(documentPath)
	}

	prog := tea.NewProgram(watchModel{
		templatePath: templatePath,
		documentPath: documentPath,
	}, tea.WithContext(ctx))

	go func() {
		prog.Send(replan())

		// Debounce bursts of write events from a single save.
		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !interesting(ev.Name) {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(100 * time.Millisecond)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.Logger.Warn("watch error", "err", err)
			case <-pending:
				pending = nil
				prog.Send(replan())
			}
		}
	}()

	_, err = prog.Run()
	if err == tea.ErrProgramKilled && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
