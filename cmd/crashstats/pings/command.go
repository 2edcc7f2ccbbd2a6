// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	"github.com/bureau-foundation/crashstats/lib/cache"
	"github.com/bureau-foundation/crashstats/lib/crashapi"
	libpings "github.com/bureau-foundation/crashstats/lib/pings"
	"github.com/bureau-foundation/crashstats/lib/socorro"
)

type pingsParams struct {
	cli.Session
	Date      string `flag:"date" desc:"UTC date to query (YYYY-MM-DD); defaults to yesterday"`
	Channel   string `flag:"channel" desc:"filter by release channel (release, beta, nightly)"`
	OS        string `flag:"os" desc:"filter by OS (Windows, Linux, Mac, Android)"`
	Process   string `flag:"process" desc:"filter by process type (main, content, gpu, rdd, utility, socket, gmplugin)"`
	Version   string `flag:"version" desc:"filter by product version (e.g. 147.0.3)"`
	Signature string `flag:"signature" desc:"filter by crash signature (~ prefix for a case-insensitive contains match)"`
	Arch      string `flag:"arch" desc:"filter by CPU architecture (x86_64, aarch64, x86, arm)"`
	Facet     string `flag:"facet" desc:"field to aggregate by" default:"signature"`
	Limit     int    `flag:"limit" desc:"number of top entries to show" default:"10"`
	Stack     string `flag:"stack" desc:"fetch the symbolicated stack of this crash ping ID instead of aggregating"`
}

func (params *pingsParams) filter() libpings.Filter {
	return libpings.Filter{
		Channel:   params.Channel,
		OS:        params.OS,
		Process:   params.Process,
		Version:   params.Version,
		Signature: params.Signature,
		Arch:      params.Arch,
	}
}

// Command returns the "pings" command.
func Command() *cli.Command {
	var params pingsParams

	return &cli.Command{
		Name:    "pings",
		Summary: "Aggregate Firefox crash pings (opt-out telemetry)",
		Description: `Query Firefox crash pings from crash-pings.mozilla.org.

Crash pings are opt-out telemetry (~1.7M/day) and represent the crash
experience of the whole user base. Unlike Socorro crash reports
(opt-in, ~40K/day) they are not biased toward users who submit
reports.

Data is a daily sample (~5000 pings per OS and process type on
release, more on beta and nightly), published around 04:00 UTC for
the previous day. Downloaded days are cached, so repeated queries for
the same date do not refetch.

Facets: ` + strings.Join(libpings.Facets, ", ") + `

Use pings for volume and trend analysis; use 'crashstats crash' to
debug an individual report.`,
		Usage: "crashstats pings [flags]",
		Examples: []cli.Example{
			{Description: "Top signatures from yesterday's pings", Command: "crashstats pings"},
			{Description: "Windows release crashes on a given day", Command: "crashstats pings --date 2026-02-12 --channel release --os Windows"},
			{Description: "Where one signature crashes, by OS", Command: `crashstats pings --signature "OOM | small" --facet os`},
			{Description: "Contains match on the signature", Command: `crashstats pings --signature "~AudioDecoder"`},
			{Description: "Symbolicated stack for one ping", Command: "crashstats pings --stack <crash-id> --date 2026-02-12"},
		},
		Params:      func() any { return &params },
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			check := params.StartVersionCheck(ctx, logger)
			defer check.Warn(os.Stderr)
			return cli.Classify(run(ctx, &params, os.Stdout, logger))
		},
	}
}

func run(ctx context.Context, params *pingsParams, out io.Writer, logger *slog.Logger) error {
	if !libpings.ValidFacet(params.Facet) {
		return cli.Validation("Unknown facet %q. Valid facets: %s", params.Facet, strings.Join(libpings.Facets, ", "))
	}
	if params.Limit < 0 {
		return cli.Validation("--limit must not be negative, got %d", params.Limit)
	}
	format, err := params.OutputFormat()
	if err != nil {
		return err
	}
	date, err := resolveDate(params.Date, params.TimeSource().Now())
	if err != nil {
		return err
	}
	client, err := params.Client(logger)
	if err != nil {
		return err
	}

	if params.Stack != "" {
		if err := socorro.ValidateCrashID(params.Stack); err != nil {
			return err
		}
		logger.Debug("fetching ping stack", "date", date, "crash_id", params.Stack)
		data, err := client.PingStack(ctx, date, params.Stack)
		if err != nil {
			return err
		}
		response, err := libpings.DecodeStack(data)
		if err != nil {
			return err
		}
		return render.PingStack(out, format, response.Summarize(params.Stack, date))
	}

	store, err := params.Cache(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := Load(ctx, client, store, date, logger)
	if err != nil {
		return err
	}
	summary := libpings.Aggregate(records, params.filter(), params.Facet, params.Limit, date)
	logger.Debug("aggregated pings", "total", summary.Total, "filtered", summary.FilteredTotal, "facet", summary.FacetName)
	return render.Pings(out, format, summary)
}

// Load returns one day of pings, from store when cached. Only
// downloads that decode are stored.
func Load(ctx context.Context, client *crashapi.Client, store cache.Store, date string, logger *slog.Logger) (*libpings.RecordSet, error) {
	fetch := func(ctx context.Context) ([]byte, error) {
		logger.Debug("fetching ping data", "date", date)
		return client.PingData(ctx, date)
	}
	return cache.Through(ctx, store, CacheKey(date), logger, fetch, libpings.Decode)
}

// CacheKey is the response cache key for one day of ping data.
func CacheKey(date string) string {
	return fmt.Sprintf("crash-pings-%s.json", date)
}

// resolveDate validates an explicit YYYY-MM-DD date or defaults to
// the UTC day before now.
func resolveDate(date string, now time.Time) (string, error) {
	if date == "" {
		return now.UTC().AddDate(0, 0, -1).Format(time.DateOnly), nil
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return "", cli.Validation("invalid --date %q: expected YYYY-MM-DD", date)
	}
	return date, nil
}
