package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/pkg/archive"
)

// archiveCommand creates the archive management command.
func (c *CLI) archiveCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse locally archived plans",
	}

	cmd.PersistentFlags().StringVar(&dir, "dir", "", "archive directory (default: XDG data dir)")

	cmd.AddCommand(c.archiveListCommand(&dir))
	cmd.AddCommand(c.archiveShowCommand(&dir))
	cmd.AddCommand(c.archivePathCommand())
	return cmd
}

func (c *CLI) openArchive(dir string) (*archive.FileArchive, error) {
	if dir == "" {
		var err error
		dir, err = archiveDir()
		if err != nil {
			return nil, fmt.Errorf("resolve archive dir: %w", err)
		}
	}
	return archive.NewFileArchive(dir)
}

// archiveListCommand creates the "archive list" subcommand.
func (c *CLI) archiveListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List archived plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := c.openArchive(*dir)
			if err != nil {
				return err
			}
			list, err := arch.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("Archive is empty")
				return nil
			}
			for _, s := range list {
				title := s.Document
				if title == "" {
					title = StyleDim.Render("(untitled)")
				}
				fmt.Printf("  %s  %-24s %s\n",
					StyleDim.Render(s.CreatedAt.Local().Format("2006-01-02 15:04")),
					title,
					StyleDim.Render(s.ID))
				printDetail("  %d placed, %d deferred", s.Metrics.Placed, s.Metrics.Deferred)
			}
			return nil
		},
	}
}

// archiveShowCommand creates the "archive show" subcommand.
func (c *CLI) archiveShowCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			arch, err := c.openArchive(*dir)
			if err != nil {
				return err
			}
			rec, err := arch.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

// archivePathCommand creates the "archive path" subcommand.
func (c *CLI) archivePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the archive directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := archiveDir()
			if err != nil {
				return fmt.Errorf("resolve archive dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
