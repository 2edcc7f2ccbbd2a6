// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package search

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	"github.com/bureau-foundation/crashstats/lib/socorro"
)

const (
	defaultLimit      = 10
	defaultFacetLimit = 0
)

type searchParams struct {
	cli.Session
	Signature       string      `flag:"signature" desc:"filter by crash signature (~ prefix for a contains match)"`
	Product         string      `flag:"product" desc:"filter by product name" default:"Firefox"`
	Version         string      `flag:"version" desc:"filter by product version (e.g. 120.0)"`
	Platform        string      `flag:"platform" desc:"filter by platform (Windows, Linux, Mac OS X, Android)"`
	CPUArch         string      `flag:"cpu-arch" desc:"filter by CPU architecture (amd64, x86, arm64, arm)"`
	Channel         string      `flag:"channel" desc:"filter by release channel (release, beta, nightly, esr, aurora, default)"`
	PlatformVersion string      `flag:"platform-version" desc:"filter by OS version string (e.g. 10.0.19045)"`
	ProcessType     string      `flag:"process-type" desc:"filter by process type (parent, content, gpu, rdd, utility, socket, gmplugin, plugin)"`
	Days            int         `flag:"days" desc:"search crashes from the last N days" default:"7"`
	Limit           optionalInt `flag:"limit" desc:"number of individual crashes to return (default 10, or 0 with --facet)"`
	Facets          []string    `flag:"facet" desc:"aggregate by field (repeatable: --facet version --facet platform)"`
	FacetsSize      int         `flag:"facets-size" desc:"number of buckets per facet (service default 50)"`
	Sort            string      `flag:"sort" desc:"sort field, - prefix for descending" default:"-date"`
}

// optionalInt is an int flag that remembers whether it was given.
type optionalInt struct {
	value int
	set   bool
}

func (o *optionalInt) String() string {
	if !o.set {
		return ""
	}
	return strconv.Itoa(o.value)
}

func (o *optionalInt) Set(text string) error {
	value, err := strconv.Atoi(text)
	if err != nil {
		return err
	}
	o.value, o.set = value, true
	return nil
}

func (o *optionalInt) Type() string { return "int" }

// limit resolves the hit count: an explicit --limit wins, otherwise
// faceted searches return only aggregations.
func (params *searchParams) limit() int {
	if params.Limit.set {
		return params.Limit.value
	}
	if len(params.Facets) > 0 {
		return defaultFacetLimit
	}
	return defaultLimit
}

func (params *searchParams) query() socorro.SearchParams {
	return socorro.SearchParams{
		Signature:       params.Signature,
		Product:         params.Product,
		Version:         params.Version,
		Platform:        params.Platform,
		CPUArch:         params.CPUArch,
		ReleaseChannel:  params.Channel,
		PlatformVersion: params.PlatformVersion,
		ProcessType:     params.ProcessType,
		Days:            params.Days,
		Limit:           params.limit(),
		Facets:          params.Facets,
		FacetsSize:      params.FacetsSize,
		Sort:            params.Sort,
	}
}

// Command returns the "search" command.
func Command() *cli.Command {
	var params searchParams

	return &cli.Command{
		Name:    "search",
		Summary: "Search and aggregate Socorro crash reports",
		Description: `Search the Super Search API for crash reports matching the given
filters. Use --facet to aggregate by a field; it can be repeated.

To list the top crash signatures by volume, like the Top Crashers page,
facet by signature. When --facet is given individual crashes are hidden
unless --limit asks for them. --facets-size sets how many buckets each
facet returns.

Signature patterns:
  exact match   --signature "OOM | small"
  contains      --signature "~AudioDecoder"`,
		Usage: "crashstats search [flags]",
		Examples: []cli.Example{
			{Description: "Crashes with a signature", Command: `crashstats search --signature "mozilla::AudioDecoderInputTrack"`},
			{Description: "Fenix crashes from the last 14 days", Command: "crashstats search --product Fenix --days 14"},
			{Description: "Aggregate by platform and version", Command: "crashstats search --facet platform --facet version"},
			{Description: "Top 20 nightly crashers over two weeks", Command: "crashstats search --channel nightly --days 14 --facet signature --facets-size 20"},
			{Description: "A signature by OS build", Command: `crashstats search --signature "OOM | small" --platform-version "~10.0.26100" --facet platform_version`},
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

func run(ctx context.Context, params *searchParams, out io.Writer, logger *slog.Logger) error {
	if params.Days < 1 {
		return cli.Validation("--days must be at least 1, got %d", params.Days)
	}
	if params.limit() < 0 {
		return cli.Validation("--limit must not be negative, got %d", params.limit())
	}
	if params.FacetsSize < 0 {
		return cli.Validation("--facets-size must not be negative, got %d", params.FacetsSize)
	}
	format, err := params.OutputFormat()
	if err != nil {
		return err
	}
	client, err := params.Client(logger)
	if err != nil {
		return err
	}

	query := params.query()
	logger.Debug("searching", "product", query.Product, "days", query.Days, "limit", query.Limit, "facets", query.Facets)
	data, err := client.Search(ctx, query)
	if err != nil {
		return err
	}
	response, err := socorro.DecodeSearchResponse(data)
	if err != nil {
		return err
	}
	return render.Search(out, format, response)
}
