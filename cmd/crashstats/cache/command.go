// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	libcache "github.com/bureau-foundation/crashstats/lib/cache"
)

// Command returns the "cache" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "cache",
		Summary: "Inspect or clear the response cache",
		Description: `Inspect or clear the local cache of downloaded crash ping days.

The backend (file, sqlite or none), directory and compression are set
in the cache section of the config file.`,
		Subcommands: []*cli.Command{
			listCommand(),
			clearCommand(),
		},
	}
}

type cacheParams struct {
	cli.Session
}

func listCommand() *cli.Command {
	var params cacheParams

	return &cli.Command{
		Name:        "list",
		Summary:     "List cached responses",
		Usage:       "crashstats cache list [flags]",
		Params:      func() any { return &params },
		Annotations: cli.LocalReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return listEntries(ctx, &params, os.Stdout, logger)
		},
	}
}

func clearCommand() *cli.Command {
	var params cacheParams

	return &cli.Command{
		Name:        "clear",
		Summary:     "Remove every cached response",
		Usage:       "crashstats cache clear [flags]",
		Params:      func() any { return &params },
		Annotations: cli.Destructive(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return clearEntries(ctx, &params, os.Stdout, logger)
		},
	}
}

func listEntries(ctx context.Context, params *cacheParams, out io.Writer, logger *slog.Logger) error {
	format, err := params.OutputFormat()
	if err != nil {
		return err
	}
	store, err := params.Cache(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(ctx)
	if err != nil {
		return cli.Internal("listing cache: %w", err)
	}
	if entries == nil {
		entries = []libcache.Entry{}
	}

	if format == render.JSON {
		return render.WriteJSON(out, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "Cache is empty.")
		return nil
	}

	writer := tabwriter.NewWriter(out, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "KEY\tSIZE\tSTORED\tCOMPRESSION\tCACHED AT\n")
	var total, stored int64
	for _, entry := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\n",
			entry.Key,
			formatBytes(entry.Size),
			formatBytes(entry.StoredSize),
			entry.Compression,
			entry.StoredAt.UTC().Format(time.DateTime),
		)
		total += entry.Size
		stored += entry.StoredSize
	}
	writer.Flush()
	fmt.Fprintf(out, "\n%d entries, %s (%s on disk)\n", len(entries), formatBytes(total), formatBytes(stored))
	return nil
}

func clearEntries(ctx context.Context, params *cacheParams, out io.Writer, logger *slog.Logger) error {
	store, err := params.Cache(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.Clear(ctx)
	if err != nil {
		return cli.Internal("clearing cache: %w", err)
	}
	logger.Info("cache cleared", "removed", removed)
	fmt.Fprintf(out, "Removed %d cached responses.\n", removed)
	return nil
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
