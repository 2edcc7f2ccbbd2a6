// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	"github.com/bureau-foundation/crashstats/lib/cache"
	"github.com/bureau-foundation/crashstats/lib/clock"
	"github.com/bureau-foundation/crashstats/lib/testutil"
)

const fourPings = `{
	"channel": {"strings": ["release", "beta", "nightly"], "values": [0, 0, 1, 2]},
	"process": {"strings": ["main", "content", "gpu"], "values": [0, 1, 0, 2]},
	"ipc_actor": {"strings": [null], "values": [0, 0, 0, 0]},
	"clientid": {"strings": ["c1", "c2", "c3"], "values": [0, 1, 2, 2]},
	"crashid": ["a1", "a2", "a3", "a4"],
	"version": {"strings": ["147.0", "148.0"], "values": [0, 0, 1, 1]},
	"os": {"strings": ["Windows", "Linux", "Mac"], "values": [0, 0, 1, 2]},
	"osversion": {"strings": ["10.0.19045", "6.8", "15.2"], "values": [0, 0, 1, 2]},
	"arch": {"strings": ["x86_64", "aarch64"], "values": [0, 0, 0, 1]},
	"date": {"strings": ["2026-01-20"], "values": [0, 0, 0, 0]},
	"reason": {"strings": [null], "values": [0, 0, 0, 0]},
	"type": {"strings": [null], "values": [0, 0, 0, 0]},
	"minidump_sha256_hash": [null, null, null, null],
	"startup_crash": [null, null, null, null],
	"build_id": {"strings": ["20260115000000"], "values": [0, 0, 0, 0]},
	"signature": {"strings": ["OOM | small", "setup_stack_prot", "js::gc::SomeFunc"], "values": [0, 0, 1, 2]}
}`

const stackCrashID = "b1a2c3d4-0000-4000-8000-000000000001"

// pingServer serves one day of ping data and one stack, counting data
// requests.
func pingServer(t *testing.T, dataRequests *atomic.Int32) cli.Session {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping_data/2026-01-20", func(w http.ResponseWriter, r *http.Request) {
		dataRequests.Add(1)
		w.Write([]byte(fourPings))
	})
	mux.HandleFunc("GET /ping_data/2026-01-19", func(w http.ResponseWriter, r *http.Request) {
		dataRequests.Add(1)
		w.Write([]byte(`{"detail":"rate limited"}`))
	})
	mux.HandleFunc("GET /ping_data/2026-01-21", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	mux.HandleFunc("GET /stack/2026-01-20/"+stackCrashID, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stack": [{"frame": 0, "function": "EnsureTimeStretcher", "file": "AudioDecoderInputTrack.cpp", "line": 624, "module": "libxul.so"}], "java_exception": null}`))
	})
	server := testutil.TLSServer(t, mux)
	return cli.Session{
		ConfigPath: testutil.ServerConfig(t, server, ""),
		HTTPClient: server.Client(),
		Clock:      clock.Fake(time.Date(2026, 1, 21, 9, 30, 0, 0, time.UTC)),
	}
}

func defaultParams(session cli.Session) pingsParams {
	return pingsParams{Session: session, Facet: "signature", Limit: 10}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunAggregatesYesterday(t *testing.T) {
	var requests atomic.Int32
	params := defaultParams(pingServer(t, &requests))

	var out bytes.Buffer
	if err := run(context.Background(), &params, &out, discardLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "PINGS 2026-01-20: 4 of 4\n" +
		"by signature:\n" +
		"       2  50.0%  OOM | small\n" +
		"       1  25.0%  setup_stack_prot\n" +
		"       1  25.0%  js::gc::SomeFunc\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunFiltersAndFacets(t *testing.T) {
	var requests atomic.Int32
	params := defaultParams(pingServer(t, &requests))
	params.Date = "2026-01-20"
	params.Channel = "release"
	params.Facet = "os"

	var out bytes.Buffer
	if err := run(context.Background(), &params, &out, discardLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "PINGS 2026-01-20: 2 of 4\n" +
		"by os:\n" +
		"       2 100.0%  Windows\n"
	if out.String() != want {
		t.Errorf("output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunSignatureContains(t *testing.T) {
	var requests atomic.Int32
	params := defaultParams(pingServer(t, &requests))
	params.Date = "2026-01-20"
	params.Signature = "~oom"
	params.Session.Format = render.JSON

	var out bytes.Buffer
	if err := run(context.Background(), &params, &out, discardLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, fragment := range []string{`"filtered_total": 2`, `"signature_filter": "~oom"`, `"label": "OOM | small"`} {
		if !strings.Contains(out.String(), fragment) {
			t.Errorf("output missing %s:\n%s", fragment, out.String())
		}
	}
}

func TestRunUsesCache(t *testing.T) {
	var requests atomic.Int32
	params := defaultParams(pingServer(t, &requests))
	params.Date = "2026-01-20"
	store, err := cache.NewFileStore(cache.Config{Dir: t.TempDir(), Compression: cache.CompressionNone})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	params.CacheStore = store

	for range 2 {
		var out bytes.Buffer
		if err := run(context.Background(), &params, &out, discardLogger()); err != nil {
			t.Fatalf("run: %v", err)
		}
	}
	if got := requests.Load(); got != 1 {
		t.Errorf("data requests = %d, want 1", got)
	}

	entries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != CacheKey("2026-01-20") {
		t.Errorf("cache entries = %+v, want one %s entry", entries, CacheKey("2026-01-20"))
	}
}

func TestRunRejectsErrorBody(t *testing.T) {
	var requests atomic.Int32
	params := defaultParams(pingServer(t, &requests))
	params.Date = "2026-01-19"
	store, err := cache.NewFileStore(cache.Config{Dir: t.TempDir(), Compression: cache.CompressionNone})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	params.CacheStore = store

	for range 2 {
		err := cli.Classify(run(context.Background(), &params, &bytes.Buffer{}, discardLogger()))
		if got := cli.CategoryOf(err); got != cli.CategoryInternal {
			t.Fatalf("category = %s, want %s (%v)", got, cli.CategoryInternal, err)
		}
		if !strings.Contains(err.Error(), `missing required key "crashid"`) {
			t.Errorf("error %q does not name the missing key", err)
		}
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("data requests = %d, want 2 (error body must not be cached)", got)
	}
	entries, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache entries = %+v, want none", entries)
	}
}

func TestRunStack(t *testing.T) {
	var requests atomic.Int32
	params := defaultParams(pingServer(t, &requests))
	params.Date = "2026-01-20"
	params.Stack = stackCrashID

	var out bytes.Buffer
	if err := run(context.Background(), &params, &out, discardLogger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "PING "+stackCrashID+" (2026-01-20)\nstack:\n") {
		t.Errorf("unexpected header:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "EnsureTimeStretcher") {
		t.Errorf("frame missing:\n%s", out.String())
	}
	if requests.Load() != 0 {
		t.Errorf("stack lookup fetched the day's data")
	}
}

func TestRunErrors(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*pingsParams)
		category cli.ErrorCategory
		contains string
	}{
		{
			name:     "unknown facet",
			modify:   func(p *pingsParams) { p.Facet = "color" },
			category: cli.CategoryValidation,
			contains: `Unknown facet "color". Valid facets: signature, channel`,
		},
		{
			name:     "negative limit",
			modify:   func(p *pingsParams) { p.Limit = -1 },
			category: cli.CategoryValidation,
			contains: "--limit",
		},
		{
			name:     "bad date",
			modify:   func(p *pingsParams) { p.Date = "01/20/2026" },
			category: cli.CategoryValidation,
			contains: "YYYY-MM-DD",
		},
		{
			name:     "bad stack id",
			modify:   func(p *pingsParams) { p.Stack = "../etc" },
			category: cli.CategoryValidation,
			contains: "invalid crash id",
		},
		{
			name:     "not yet published",
			modify:   func(p *pingsParams) { p.Date = "2026-01-21" },
			category: cli.CategoryTransient,
			contains: "04:00 UTC",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var requests atomic.Int32
			params := defaultParams(pingServer(t, &requests))
			test.modify(&params)

			err := cli.Classify(run(context.Background(), &params, &bytes.Buffer{}, discardLogger()))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := cli.CategoryOf(err); got != test.category {
				t.Errorf("category = %s, want %s (%v)", got, test.category, err)
			}
			if !strings.Contains(err.Error(), test.contains) {
				t.Errorf("error %q does not mention %q", err, test.contains)
			}
			var toolErr *cli.ToolError
			if !errors.As(err, &toolErr) {
				t.Errorf("error is not a ToolError: %T", err)
			}
		})
	}
}

func TestResolveDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 30, 0, 0, time.FixedZone("PST", -8*3600))
	got, err := resolveDate("", now)
	if err != nil {
		t.Fatalf("resolveDate: %v", err)
	}
	// 00:30 PST is 08:30 UTC on March 1st.
	if got != "2026-02-28" {
		t.Errorf("default date = %s, want 2026-02-28", got)
	}
	if got, _ := resolveDate("2025-12-31", now); got != "2025-12-31" {
		t.Errorf("explicit date = %s", got)
	}
}

func TestCommandAnnotated(t *testing.T) {
	command := Command()
	if command.Annotations == nil || command.Annotations.ReadOnly == nil || !*command.Annotations.ReadOnly {
		t.Errorf("pings must be annotated read-only")
	}
}
