package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/internal/server"
	"github.com/jdalgard/pageplan/pkg/archive"
	"github.com/jdalgard/pageplan/pkg/driver"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr          string
		redisAddr     string
		mongoURI      string
		archivePlans  bool
		metrics       bool
		stability     time.Duration
		carryCursors  bool
		forceOverflow bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the planning HTTP API",
		Long: `Run the planning HTTP API.

Each job pairs a template with a document and runs its own convergence
driver. Clients post measurements and request plans; plans commit only when
measurements are complete and stable. With --redis the reroute cache is
shared across restarts; with --mongo or --archive committed plans persist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), server.Config{
				Addr:      addr,
				RedisAddr: redisAddr,
				Metrics:   metrics,
				Driver: driver.Config{
					Stability:     stability,
					CarryCursors:  carryCursors,
					ForceOverflow: forceOverflow,
				},
			}, mongoURI, archivePlans)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for reroute caches")
	cmd.Flags().StringVar(&mongoURI, "mongo", "", "MongoDB URI for the plan archive")
	cmd.Flags().BoolVar(&archivePlans, "archive", false, "archive committed plans to the local file archive")
	cmd.Flags().BoolVar(&metrics, "metrics", false, "expose Prometheus metrics on /metrics")
	cmd.Flags().DurationVar(&stability, "stability", driver.DefaultStability, "measurement debounce window")
	cmd.Flags().BoolVar(&carryCursors, "carry-cursors", false, "carry committed cursors into the next pass")
	cmd.Flags().BoolVar(&forceOverflow, "force-overflow", false, "place oversized segments in the last region instead of deferring")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg server.Config, mongoURI string, archivePlans bool) error {
	opts := []server.Option{server.WithLogger(c.Logger)}

	switch {
	case mongoURI != "":
		arch, err := archive.NewMongoArchive(ctx, archive.MongoConfig{URI: mongoURI})
		if err != nil {
			return err
		}
		defer arch.Close()
		opts = append(opts, server.WithArchive(arch))
	case archivePlans:
		dir, err := archiveDir()
		if err != nil {
			return err
		}
		arch, err := archive.NewFileArchive(dir)
		if err != nil {
			return err
		}
		opts = append(opts, server.WithArchive(arch))
	}

	srv := server.New(cfg, opts...)
	err := srv.ListenAndServe(ctx)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
