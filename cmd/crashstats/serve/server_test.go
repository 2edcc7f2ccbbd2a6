// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/lib/cache"
	"github.com/bureau-foundation/crashstats/lib/testutil"
)

const dayOfPings = `{
	"channel": {"strings": ["release", "beta"], "values": [0, 0, 1]},
	"process": {"strings": ["main", "content"], "values": [0, 1, 0]},
	"ipc_actor": {"strings": [null], "values": [0, 0, 0]},
	"clientid": {"strings": ["c1", "c2"], "values": [0, 1, 1]},
	"crashid": ["a1", "a2", "a3"],
	"version": {"strings": ["147.0"], "values": [0, 0, 0]},
	"os": {"strings": ["Windows", "Linux"], "values": [0, 0, 1]},
	"osversion": {"strings": ["10.0", "6.8"], "values": [0, 0, 1]},
	"arch": {"strings": ["x86_64"], "values": [0, 0, 0]},
	"date": {"strings": ["2026-01-20"], "values": [0, 0, 0]},
	"reason": {"strings": [null], "values": [0, 0, 0]},
	"type": {"strings": [null], "values": [0, 0, 0]},
	"minidump_sha256_hash": [null, null, null],
	"startup_crash": [null, null, null],
	"build_id": {"strings": ["20260115000000"], "values": [0, 0, 0]},
	"signature": {"strings": ["OOM | small", "Some | <Thing>"], "values": [0, 0, 1]}
}`

const stackID = "b1a2c3d4-0000-4000-8000-000000000001"

// upstream fakes the crash data services and counts ping data
// downloads.
func upstream(t *testing.T, downloads *atomic.Int32) cli.Session {
	t.Helper()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping_data/2026-01-20":
			downloads.Add(1)
			w.Write([]byte(dayOfPings))
		case "/ping_data/2026-01-21":
			w.WriteHeader(http.StatusAccepted)
		case "/stack/2026-01-20/" + stackID:
			w.Write([]byte(`{"stack": [{"frame": 0, "function": "EnsureTimeStretcher", "module": "libxul.so"}], "java_exception": null}`))
		case "/correlations/all.json.gz":
			w.Write(testutil.Gzip(t, []byte(`{"date":"2026-01-20","release":1000,"beta":100,"nightly":10,"esr":1}`)))
		case "/correlations/release/4361bb82d8d8c7f34466f8b7589fbd6c920da702.json.gz":
			w.Write([]byte(`{"total": 10, "results": [{"item": {"platform": "Windows"}, "count_reference": 250, "count_group": 9, "prior": null}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	server := testutil.TLSServer(t, handler)
	return cli.Session{
		ConfigPath: testutil.ServerConfig(t, server, ""),
		HTTPClient: server.Client(),
	}
}

func newTestServer(t *testing.T, downloads *atomic.Int32) *httptest.Server {
	t.Helper()
	session := upstream(t, downloads)
	logger := slog.New(slog.DiscardHandler)
	client, err := session.Client(logger)
	if err != nil {
		t.Fatalf("Client: %v", err)
	}
	store, err := cache.NewFileStore(cache.Config{Dir: t.TempDir(), Compression: cache.CompressionZstd})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	local := httptest.NewServer((&server{client: client, store: store, logger: logger}).routes())
	t.Cleanup(local.Close)
	return local
}

func get(t *testing.T, local *httptest.Server, path string) (int, string) {
	t.Helper()
	response, err := local.Client().Get(local.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return response.StatusCode, string(body)
}

func TestHealth(t *testing.T) {
	var downloads atomic.Int32
	status, body := get(t, newTestServer(t, &downloads), "/healthz")
	if status != http.StatusOK || !strings.Contains(body, `"status": "ok"`) {
		t.Errorf("healthz = %d %s", status, body)
	}
}

func TestPingsAPI(t *testing.T) {
	var downloads atomic.Int32
	local := newTestServer(t, &downloads)

	status, body := get(t, local, "/api/pings/2026-01-20?facet=os&channel=release")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	var summary struct {
		Total         int    `json:"total"`
		FilteredTotal int    `json:"filtered_total"`
		FacetName     string `json:"facet_name"`
		Items         []struct {
			Label string `json:"label"`
			Count int    `json:"count"`
		} `json:"items"`
	}
	if err := json.Unmarshal([]byte(body), &summary); err != nil {
		t.Fatalf("decoding: %v\n%s", err, body)
	}
	if summary.Total != 3 || summary.FilteredTotal != 2 || summary.FacetName != "os" {
		t.Errorf("summary = %+v", summary)
	}
	if len(summary.Items) != 1 || summary.Items[0].Label != "Windows" || summary.Items[0].Count != 2 {
		t.Errorf("items = %+v", summary.Items)
	}

	// A second query for the same day is answered from the cache.
	if status, _ := get(t, local, "/api/pings/2026-01-20?limit=1"); status != http.StatusOK {
		t.Errorf("second query status = %d", status)
	}
	if got := downloads.Load(); got != 1 {
		t.Errorf("downloads = %d, want 1", got)
	}
}

func TestPingsPageEscapesLabels(t *testing.T) {
	var downloads atomic.Int32
	status, body := get(t, newTestServer(t, &downloads), "/pings/2026-01-20")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	for _, fragment := range []string{"<title>Crash Pings for 2026-01-20</title>", "<table>", "OOM | small", "Some | &lt;Thing&gt;"} {
		if !strings.Contains(body, fragment) {
			t.Errorf("page missing %q:\n%s", fragment, body)
		}
	}
	if strings.Contains(body, "<Thing>") {
		t.Errorf("page contains an unescaped label:\n%s", body)
	}
}

func TestPingStackAPI(t *testing.T) {
	var downloads atomic.Int32
	status, body := get(t, newTestServer(t, &downloads), "/api/pings/2026-01-20/stack/"+stackID)
	if status != http.StatusOK || !strings.Contains(body, "EnsureTimeStretcher") || !strings.Contains(body, `"crash_id": "`+stackID+`"`) {
		t.Errorf("stack = %d %s", status, body)
	}
}

func TestCorrelationsAPI(t *testing.T) {
	var downloads atomic.Int32
	status, body := get(t, newTestServer(t, &downloads), "/api/correlations/release?signature=OOM+%7C+small")
	if status != http.StatusOK {
		t.Fatalf("status = %d: %s", status, body)
	}
	for _, fragment := range []string{`"label": "platform = Windows"`, `"sig_pct": 90`, `"ref_pct": 25`} {
		if !strings.Contains(body, fragment) {
			t.Errorf("body missing %s:\n%s", fragment, body)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		path     string
		status   int
		category string
	}{
		{"/api/pings/yesterday", http.StatusBadRequest, "validation"},
		{"/api/pings/2026-01-20?facet=color", http.StatusBadRequest, "validation"},
		{"/api/pings/2026-01-20?limit=-3", http.StatusBadRequest, "validation"},
		{"/api/pings/2026-01-19", http.StatusNotFound, "not_found"},
		{"/api/pings/2026-01-21", http.StatusServiceUnavailable, "transient"},
		{"/api/pings/2026-01-20/stack/not-hex!", http.StatusBadRequest, "validation"},
		{"/api/correlations/aurora?signature=x", http.StatusBadRequest, "validation"},
		{"/api/correlations/release", http.StatusBadRequest, "validation"},
		{"/api/correlations/beta?signature=OOM+%7C+small", http.StatusNotFound, "not_found"},
	}

	var downloads atomic.Int32
	local := newTestServer(t, &downloads)
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			status, body := get(t, local, test.path)
			if status != test.status {
				t.Errorf("status = %d, want %d: %s", status, test.status, body)
			}
			if !strings.Contains(body, `"category": "`+test.category+`"`) {
				t.Errorf("body missing category %s: %s", test.category, body)
			}
		})
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	var downloads atomic.Int32
	params := serveParams{Session: upstream(t, &downloads), Listen: "127.0.0.1:0"}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan net.Addr, 1)
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, &params, slog.New(slog.DiscardHandler), ready)
	}()

	address := testutil.RequireReceive(t, ready, 5*time.Second, "waiting for listener")
	response, err := http.Get("http://" + address.String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	response.Body.Close()
	if response.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", response.StatusCode)
	}

	cancel()
	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for shutdown"); err != nil {
		t.Errorf("run: %v", err)
	}
}
