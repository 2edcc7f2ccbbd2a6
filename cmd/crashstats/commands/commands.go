// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete crashstats command tree. main
// executes it; the tools command walks it to describe every command
// to scripts and agent harnesses.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	authcmd "github.com/bureau-foundation/crashstats/cmd/crashstats/auth"
	cachecmd "github.com/bureau-foundation/crashstats/cmd/crashstats/cache"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	correlationscmd "github.com/bureau-foundation/crashstats/cmd/crashstats/correlations"
	crashcmd "github.com/bureau-foundation/crashstats/cmd/crashstats/crash"
	pingscmd "github.com/bureau-foundation/crashstats/cmd/crashstats/pings"
	searchcmd "github.com/bureau-foundation/crashstats/cmd/crashstats/search"
	servecmd "github.com/bureau-foundation/crashstats/cmd/crashstats/serve"
	"github.com/bureau-foundation/crashstats/lib/version"
)

// Root builds and returns the complete crashstats command tree. The
// tools command is added after the tree is constructed because it
// walks root.Subcommands.
func Root() *cli.Command {
	root := &cli.Command{
		Name: "crashstats",
		Description: `crashstats: query Mozilla crash data from the command line.

Aggregate opt-out crash pings, look up individual Socorro crash
reports, search and facet reports, and show the attributes correlated
with a crash signature. Output is compact text by default, with
--format json and --format markdown for scripts and reports.`,
		Subcommands: []*cli.Command{
			pingscmd.Command(),
			crashcmd.Command(),
			searchcmd.Command(),
			correlationscmd.Command(),
			authcmd.Command(),
			cachecmd.Command(),
			servecmd.Command(),
			{
				Name:        "version",
				Summary:     "Print version information",
				Annotations: cli.LocalReadOnly(),
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Fprintf(os.Stdout, "crashstats %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Top crash signatures in yesterday's pings",
				Command:     "crashstats pings",
			},
			{
				Description: "Summarize one crash report",
				Command:     "crashstats crash 247653e8-7a18-4836-97d1-42a720260120",
			},
			{
				Description: "Top crashers over the last week",
				Command:     "crashstats search --facet signature",
			},
			{
				Description: "What is over-represented in a signature's crashes",
				Command:     `crashstats correlations --signature "OOM | small"`,
			},
			{
				Description: "Store an API token for a higher rate limit",
				Command:     "crashstats auth login",
			},
		},
	}

	root.Subcommands = append(root.Subcommands, toolsCommand(root))
	return root
}
