package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jdalgard/pageplan/pkg/reroute"
)

// cacheCommand creates the reroute cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var redisAddr string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the Redis reroute cache",
		Long: `Inspect and manage the Redis reroute cache.

In-memory reroute caches live and die with a single planning run; only the
Redis backend is shared and worth managing from the CLI.`,
	}

	cmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "Redis address")

	cmd.AddCommand(c.cacheShowCommand(&redisAddr))
	cmd.AddCommand(c.cacheClearCommand(&redisAddr))
	return cmd
}

// cacheShowCommand creates the "cache show" subcommand.
func (c *CLI) cacheShowCommand(redisAddr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List remembered reroute decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRedisStore(cmd.Context(), *redisAddr, func(ctx context.Context, store reroute.Store) error {
				entries, err := store.Snapshot(ctx)
				if err != nil {
					return fmt.Errorf("snapshot cache: %w", err)
				}
				if len(entries) == 0 {
					printInfo("Cache is empty")
					return nil
				}
				for _, e := range entries {
					age := time.Since(e.UpdatedAt).Round(time.Second)
					fmt.Printf("  %-40s %s %-8s %s\n",
						e.Key.String(), iconArrow, e.Region,
						StyleDim.Render(fmt.Sprintf("updated %s ago", age)))
				}
				printNewline()
				printDetail("%d entries", len(entries))
				return nil
			})
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(redisAddr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop all remembered reroute decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRedisStore(cmd.Context(), *redisAddr, func(ctx context.Context, store reroute.Store) error {
				entries, err := store.Snapshot(ctx)
				if err != nil {
					return fmt.Errorf("snapshot cache: %w", err)
				}
				count := 0
				for _, e := range entries {
					if err := store.Clear(ctx, e.Key); err == nil {
						count++
					}
				}
				printSuccess("Cleared %d cached entries", count)
				return nil
			})
		},
	}
}

func (c *CLI) withRedisStore(ctx context.Context, addr string, fn func(context.Context, reroute.Store) error) error {
	store, err := reroute.NewRedisStore(ctx, reroute.RedisConfig{Addr: addr})
	if err != nil {
		return fmt.Errorf("connect redis %s: %w", addr, err)
	}
	defer store.Close()
	return fn(ctx, store)
}
