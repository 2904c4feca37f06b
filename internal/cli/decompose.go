package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/pkg/document"
	"github.com/jdalgard/pageplan/pkg/measure"
	"github.com/jdalgard/pageplan/pkg/template"
)

// decomposeCommand creates the decompose command for inspecting segmentation.
func (c *CLI) decomposeCommand() *cobra.Command {
	var chunkSize int

	cmd := &cobra.Command{
		Use:   "decompose <template.toml> <document.json>",
		Short: "Show how a document decomposes into segments",
		Long: `Show how a document decomposes into segments.

Each component becomes one or more segments: metadata stays whole, lists and
tables are chunked, text splits per paragraph. The listing includes each
segment's stable measurement key and its estimated height.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDecompose(args[0], args[1], chunkSize)
		},
	}

	cmd.Flags().IntVar(&chunkSize, "chunk-size", document.DefaultChunkSize, "items per list/table chunk")
	return cmd
}

func (c *CLI) runDecompose(templatePath, documentPath string, chunkSize int) error {
	tmpl, err := template.Load(templatePath)
	if err != nil {
		return err
	}
	doc, err := document.Load(documentPath)
	if err != nil {
		return err
	}

	segments := document.Decomposer{ChunkSize: chunkSize}.Decompose(doc, tmpl)
	est := measure.NewRuleEstimator()

	fmt.Println(StyleTitle.Render("Segments"))
	fmt.Println(styleHeader.Render(fmt.Sprintf("  %-28s %-10s %-8s %-14s %8s", "segment", "kind", "home", "measure key", "est")))
	for _, seg := range segments {
		key := seg.Key().String()
		if seg.Continuation {
			key += " " + StyleDim.Render("(cont.)")
		}
		fmt.Printf("  %-28s %-10s %-8s %-14s %8.1f\n",
			key, seg.Kind, seg.HomeRegion, seg.MeasureKey, est.Measure(seg))
	}

	printNewline()
	printDetail("%d segments from %d components", len(segments), len(doc.Components))
	printNextStep("Plan", fmt.Sprintf("pageplan plan %s %s", templatePath, documentPath))
	return nil
}
