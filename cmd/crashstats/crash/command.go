// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crash

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	"github.com/bureau-foundation/crashstats/lib/socorro"
)

type crashParams struct {
	cli.Session
	Depth      int  `flag:"depth,d" desc:"number of stack frames to show per thread" default:"10"`
	Full       bool `flag:"full" desc:"print the complete processed crash as JSON"`
	AllThreads bool `flag:"all-threads" desc:"show every thread's stack, not just the crashing thread"`
}

// Command returns the "crash" command.
func Command() *cli.Command {
	var params crashParams

	return &cli.Command{
		Name:    "crash",
		Summary: "Show a Socorro crash report",
		Description: `Fetch a processed crash report from crash-stats.mozilla.org and show
the signature, crash reason, product and the crashing thread's stack.

The argument is a crash ID or a report URL such as
https://crash-stats.mozilla.org/report/index/<id>.

With a stored API token (see 'crashstats auth login') protected fields
like the crash address and abort message are included. --full and
--format json print the unmodified upstream document and are fetched
without the token, so the output never contains protected data.`,
		Usage: "crashstats crash <crash-id | url> [flags]",
		Examples: []cli.Example{
			{Description: "Summarize a crash", Command: "crashstats crash 247653e8-7a18-4836-97d1-42a720260120"},
			{Description: "Every thread, 20 frames deep", Command: "crashstats crash <crash-id> --all-threads --depth 20"},
			{Description: "Full processed crash", Command: "crashstats crash https://crash-stats.mozilla.org/report/index/<crash-id> --full"},
		},
		Params:      func() any { return &params },
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("crash ID or URL required\n\nUsage: crashstats crash <crash-id | url> [flags]")
			}
			if len(args) > 1 {
				return cli.Validation("unexpected argument %q", args[1])
			}
			check := params.StartVersionCheck(ctx, logger)
			defer check.Warn(os.Stderr)
			return cli.Classify(run(ctx, &params, args[0], os.Stdout, logger))
		},
	}
}

func run(ctx context.Context, params *crashParams, target string, out io.Writer, logger *slog.Logger) error {
	if params.Depth < 0 {
		return cli.Validation("--depth must not be negative, got %d", params.Depth)
	}
	crashID := socorro.ExtractCrashID(target)
	if err := socorro.ValidateCrashID(crashID); err != nil {
		return err
	}
	format, err := params.OutputFormat()
	if err != nil {
		return err
	}
	client, err := params.Client(logger)
	if err != nil {
		return err
	}

	raw := params.Full || format == render.JSON
	logger.Debug("fetching processed crash", "crash_id", crashID, "authenticated", !raw)
	data, err := client.ProcessedCrash(ctx, crashID, !raw)
	if err != nil {
		return err
	}
	if raw {
		return render.WriteRawJSON(out, data)
	}

	processed, err := socorro.DecodeProcessedCrash(data)
	if err != nil {
		return err
	}
	summary := processed.Summary(params.Depth, params.AllThreads)
	return render.Crash(out, format, &summary, data)
}
