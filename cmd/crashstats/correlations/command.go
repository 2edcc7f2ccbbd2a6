// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package correlations

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	libcorrelations "github.com/bureau-foundation/crashstats/lib/correlations"
	"github.com/bureau-foundation/crashstats/lib/crashapi"
)

type correlationsParams struct {
	cli.Session
	Signature string `flag:"signature,s" desc:"crash signature to look up (exact match)"`
	Channel   string `flag:"channel,c" desc:"release channel: release, beta, nightly, esr" default:"release"`
}

// Command returns the "correlations" command.
func Command() *cli.Command {
	var params correlationsParams

	return &cli.Command{
		Name:    "correlations",
		Summary: "Show attributes over-represented in a signature's crashes",
		Description: `Show which attributes (modules, addons, hardware, settings) are
over-represented in crashes with a signature compared to all crashes on
the channel.

Correlations are precomputed daily for the top ~200 signatures per
channel. Each row shows the attribute's share of the signature's
crashes next to its share of all crashes on the channel; a large gap
points at a likely cause. Some rows carry a prior: the same comparison
restricted to crashes that already match another attribute.

Channels: ` + strings.Join(libcorrelations.Channels, ", "),
		Usage: "crashstats correlations --signature <signature> [flags]",
		Examples: []cli.Example{
			{Description: "Correlations for a release signature", Command: `crashstats correlations --signature "OOM | small"`},
			{Description: "Same signature on nightly", Command: `crashstats correlations -s "OOM | small" -c nightly`},
			{Description: "Upstream document, unmodified", Command: `crashstats correlations -s "OOM | small" --format json`},
		},
		Params:      func() any { return &params },
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q (pass the signature with --signature)", args[0])
			}
			check := params.StartVersionCheck(ctx, logger)
			defer check.Warn(os.Stderr)
			return cli.Classify(run(ctx, &params, os.Stdout, logger))
		},
	}
}

func run(ctx context.Context, params *correlationsParams, out io.Writer, logger *slog.Logger) error {
	if params.Signature == "" {
		return cli.Validation("--signature is required")
	}
	if !libcorrelations.ValidChannel(params.Channel) {
		return &libcorrelations.UnknownChannelError{Channel: params.Channel}
	}
	format, err := params.OutputFormat()
	if err != nil {
		return err
	}
	client, err := params.Client(logger)
	if err != nil {
		return err
	}
	summary, raw, err := Fetch(ctx, client, params.Channel, params.Signature)
	if err != nil {
		return err
	}
	logger.Debug("summarized correlations", "date", summary.Date, "items", len(summary.Items))
	return render.Correlations(out, format, summary, raw)
}

// Fetch downloads the channel totals and the signature's report
// concurrently and summarizes them. It also returns the report as
// published. channel must already be validated.
func Fetch(ctx context.Context, client *crashapi.Client, channel, signature string) (*libcorrelations.Summary, []byte, error) {
	var totalsData, reportData []byte
	fetches := pool.New().WithErrors().WithContext(ctx).WithCancelOnError().WithFirstError()
	fetches.Go(func(ctx context.Context) error {
		var err error
		totalsData, err = client.CorrelationTotals(ctx)
		return err
	})
	fetches.Go(func(ctx context.Context) error {
		var err error
		reportData, err = client.SignatureCorrelations(ctx, channel, signature)
		return err
	})
	if err := fetches.Wait(); err != nil {
		return nil, nil, err
	}

	totals, err := libcorrelations.DecodeTotals(totalsData)
	if err != nil {
		return nil, nil, err
	}
	response, err := libcorrelations.DecodeResponse(reportData)
	if err != nil {
		return nil, nil, err
	}
	summary, err := libcorrelations.Summarize(response, signature, channel, totals)
	if err != nil {
		return nil, nil, err
	}
	return summary, reportData, nil
}
