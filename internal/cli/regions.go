package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/pkg/template"
)

// regionsCommand creates the regions command for inspecting template expansion.
func (c *CLI) regionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "regions <template.toml>",
		Short: "Show the ordered regions a template expands into",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRegions(args[0])
		},
	}
}

func (c *CLI) runRegions(templatePath string) error {
	tmpl, err := template.Load(templatePath)
	if err != nil {
		return err
	}

	name := tmpl.Name
	if name == "" {
		name = templatePath
	}
	fmt.Println(StyleTitle.Render("Regions") + " " + StyleDim.Render(name))
	printKeyValue("page", fmt.Sprintf("%.0f x %.0f", tmpl.Page.Width, tmpl.Page.Height))
	printKeyValue("column", fmt.Sprintf("%.1f x %.1f", tmpl.ColumnWidth(), tmpl.ColumnHeight()))
	printNewline()

	for i, cfg := range tmpl.Regions() {
		fmt.Printf("  %2d. %-8s %s\n", i+1, cfg.Key,
			StyleDim.Render(fmt.Sprintf("capacity %.1f", cfg.MaxHeight)))
	}
	return nil
}
