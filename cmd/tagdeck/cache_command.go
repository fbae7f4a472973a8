package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tagdeck/internal/contenthash"
	"tagdeck/internal/fetchcache"
	"tagdeck/internal/services"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the fetch cache",
	}
	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheRemoveCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCachePruneCommand(ctx))
	return cacheCmd
}

func withCache(ctx *commandContext, fn func(*fetchcache.Store) error) error {
	store, err := ctx.openCache()
	if err != nil {
		return err
	}
	if store == nil {
		return services.Wrap(services.ErrConfiguration, "cli", "cache", "fetch cache is disabled; set fetch.cache_enabled = true", nil)
	}
	defer store.Close()
	return fn(store)
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached remote lookups",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *fetchcache.Store) error {
				entries, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					if entries == nil {
						entries = []fetchcache.Entry{}
					}
					return writeJSON(cmd, entries)
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Fetch cache is empty")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						entry.ContentHash,
						fmt.Sprintf("%d", len(entry.Tags)),
						entry.Source,
						entry.FetchedAt.Local().Format(time.DateTime),
					})
				}
				fmt.Fprintln(out, renderTable([]string{"Hash", "Tags", "Source", "Fetched"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft}))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newCacheRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <hash-or-file>",
		Short: "Remove the cached lookup for a content hash or media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash := strings.TrimSpace(args[0])
			if !contenthash.Valid(hash) {
				path, err := mediaFile(hash)
				if err != nil {
					return fmt.Errorf("%q is neither a content hash nor a media file: %w", args[0], err)
				}
				hash, err = contenthash.File(cmd.Context(), path, nil)
				if err != nil {
					return err
				}
			}
			return withCache(ctx, func(store *fetchcache.Store) error {
				removed, err := store.Remove(cmd.Context(), hash)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if removed {
					fmt.Fprintf(out, "Removed cache entry %s\n", strings.ToLower(hash))
				} else {
					fmt.Fprintf(out, "No cache entry for %s\n", strings.ToLower(hash))
				}
				return nil
			})
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached lookup",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCache(ctx, func(store *fetchcache.Store) error {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache entries\n", n)
				return nil
			})
		},
	}
}

func newCachePruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove cached lookups older than a duration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return services.Wrap(services.ErrValidation, "cli", "cache prune", "--older-than must be positive", nil)
			}
			return withCache(ctx, func(store *fetchcache.Store) error {
				n, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d cache entries\n", n)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Age beyond which entries are removed")
	return cmd
}
