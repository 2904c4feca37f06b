package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/pkg/archive"
	"github.com/jdalgard/pageplan/pkg/document"
	"github.com/jdalgard/pageplan/pkg/driver"
	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/measure"
	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/preview"
	"github.com/jdalgard/pageplan/pkg/reroute"
	"github.com/jdalgard/pageplan/pkg/template"
)

// Output formats for the plan command.
const (
	FormatSummary = "summary"
	FormatJSON    = "json"
	FormatSVG     = "svg"
	FormatDOT     = "dot"
)

// ValidPlanFormats is the set of accepted --format values.
var ValidPlanFormats = map[string]bool{
	FormatSummary: true,
	FormatJSON:    true,
	FormatSVG:     true,
	FormatDOT:     true,
}

type planOptions struct {
	format        string
	output        string
	chunkSize     int
	spacing       float64
	stability     time.Duration
	forceOverflow bool
	carryCursors  bool
	redisAddr     string
	archive       bool
	rasterize     bool
}

// planCommand creates the plan command.
func (c *CLI) planCommand() *cobra.Command {
	var opts planOptions

	cmd := &cobra.Command{
		Use:   "plan <template.toml> <document.json>",
		Short: "Plan segment placement for a document",
		Long: `Plan segment placement for a document.

The document is decomposed into segments, each segment's height is estimated,
and the planner packs them into the template's regions with a single forward
sweep. Segments that don't fit are deferred to the next region and the
deferral is remembered, so repeated runs against the same cache converge
instead of oscillating.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", FormatSummary, "output format: summary, json, svg, dot")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&opts.chunkSize, "chunk-size", document.DefaultChunkSize, "items per list/table chunk")
	cmd.Flags().Float64Var(&opts.spacing, "spacing", plan.DefaultSpacing, "post-segment spacing")
	cmd.Flags().DurationVar(&opts.stability, "stability", driver.DefaultStability, "measurement debounce window")
	cmd.Flags().BoolVar(&opts.forceOverflow, "force-overflow", false, "place oversized segments in the last region instead of deferring")
	cmd.Flags().BoolVar(&opts.carryCursors, "carry-cursors", false, "carry committed cursors into the next pass")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for the reroute cache (default: in-memory)")
	cmd.Flags().BoolVar(&opts.archive, "archive", false, "store the committed plan in the local archive")
	cmd.Flags().BoolVar(&opts.rasterize, "rasterize", false, "render DOT output to SVG via Graphviz")

	return cmd
}

func (c *CLI) runPlan(ctx context.Context, templatePath, documentPath string, opts planOptions) error {
	if err := errors.ValidateFormat(opts.format, ValidPlanFormats); err != nil {
		return err
	}

	tmpl, err := template.Load(templatePath)
	if err != nil {
		return err
	}
	doc, err := document.Load(documentPath)
	if err != nil {
		return err
	}

	segments := document.Decomposer{ChunkSize: opts.chunkSize}.Decompose(doc, tmpl)
	regions := tmpl.Regions()
	c.Logger.Debug("decomposed", "segments", len(segments), "regions", len(regions))

	store, err := c.newStore(ctx, opts.redisAddr)
	if err != nil {
		return err
	}

	d := driver.New(driver.Config{
		Stability:     opts.stability,
		Spacing:       opts.spacing,
		ForceOverflow: opts.forceOverflow,
		CarryCursors:  opts.carryCursors,
	}, store, driver.WithLogger(c.Logger))
	defer d.Close()

	d.SetRegions(regions)
	d.SetSegments(segments)

	spinner := newSpinner(ctx, "Planning placement...")
	spinner.Start()

	prog := newProgress(c.Logger)
	committed, err := d.Run(ctx, measure.NewRuleEstimator())
	if err != nil {
		spinner.StopWithError("Planning failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	prog.done(fmt.Sprintf("Planned %d segments", len(committed.Entries)))

	if err := c.writePlan(ctx, committed, tmpl, doc.Title, opts); err != nil {
		return err
	}

	if opts.archive {
		dir, err := archiveDir()
		if err != nil {
			return fmt.Errorf("resolve archive dir: %w", err)
		}
		arch, err := archive.NewFileArchive(dir)
		if err != nil {
			return err
		}
		rec := archive.NewRecord(doc.Title, committed)
		if err := arch.Put(ctx, rec); err != nil {
			return err
		}
		printDetail("archived as %s", rec.ID)
	}
	return nil
}

// newStore builds the reroute backend for CLI planning runs.
func (c *CLI) newStore(ctx context.Context, redisAddr string) (reroute.Store, error) {
	if redisAddr == "" {
		return reroute.NewMemoryStore(), nil
	}
	return reroute.NewRedisStore(ctx, reroute.RedisConfig{Addr: redisAddr})
}

func (c *CLI) writePlan(ctx context.Context, p *plan.Plan, tmpl *template.Template, title string, opts planOptions) error {
	regions := tmpl.Regions()

	var data []byte
	switch opts.format {
	case FormatSummary:
		c.printSummary(p, tmpl)
		return nil
	case FormatJSON:
		var err error
		data, err = preview.RenderJSON(p, regions, preview.WithJSONTitle(title))
		if err != nil {
			return err
		}
	case FormatSVG:
		svgOpts := []preview.SVGOption{preview.WithLabels(), preview.WithColumnWidth(tmpl.ColumnWidth())}
		if title != "" {
			svgOpts = append(svgOpts, preview.WithTitle(title))
		}
		data = preview.RenderSVG(p, regions, svgOpts...)
	case FormatDOT:
		dot := preview.ToDOT(p, regions)
		data = []byte(dot)
		if opts.rasterize {
			var err error
			data, err = preview.RenderDOT(ctx, dot)
			if err != nil {
				return err
			}
		}
	}

	if opts.output == "" || opts.output == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}
	printSuccess("Plan written")
	printFile(opts.output)
	return nil
}

// printSummary prints a human-readable placement listing.
func (c *CLI) printSummary(p *plan.Plan, tmpl *template.Template) {
	fmt.Println(StyleTitle.Render("Placement"))
	fmt.Println(styleHeader.Render(fmt.Sprintf("  %-28s %-8s %8s %8s  %s", "segment", "region", "top", "bottom", "reason")))

	for _, e := range p.Entries {
		key := e.Segment.Key().String()
		switch intent := e.Intent.(type) {
		case plan.Place:
			fmt.Printf("  %-28s %-8s %8.1f %8.1f  %s\n",
				key, intent.Region, intent.Top, intent.Bottom, StyleDim.Render(string(intent.Reason)))
		case plan.Defer:
			line := fmt.Sprintf("  %-28s %-8s %8s %8s  %s", key, "-", "-", "-", string(intent.Reason))
			if intent.To != "" {
				line += " " + iconArrow + " " + intent.To
			}
			fmt.Println(styleDeferred.Render(line))
		}
	}

	printNewline()
	printPlanStats(p.Metrics.Placed, p.Metrics.Deferred, len(tmpl.Regions()))
	if p.Metrics.Deferred > 0 {
		printNextStep("Re-plan after growing the template", "pageplan plan --carry-cursors ...")
	}
}
