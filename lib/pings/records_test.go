// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import (
	"errors"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/bureau-foundation/crashstats/lib/payload"
)

func TestIndexedStrings_ResolveMatchesPool(t *testing.T) {
	random := rand.New(rand.NewPCG(1, 2))

	for trial := range 200 {
		poolSize := 1 + random.IntN(20)
		rows := random.IntN(100)

		table := IndexedStrings{Strings: make([]string, poolSize), Values: make([]uint32, rows)}
		for index := range table.Strings {
			table.Strings[index] = strings.Repeat("s", index+1)
		}
		for row := range table.Values {
			table.Values[row] = uint32(random.IntN(poolSize))
		}

		if err := table.Validate("random", rows); err != nil {
			t.Fatalf("trial %d: Validate: %v", trial, err)
		}
		for row := range rows {
			if got, want := table.Resolve(row), table.Strings[table.Values[row]]; got != want {
				t.Fatalf("trial %d row %d: Resolve() = %q, want %q", trial, row, got, want)
			}
		}
	}
}

func TestNullableIndexedStrings_Resolve(t *testing.T) {
	table := NullableIndexedStrings{
		Strings: []*string{nil, stringPointer("windows-file-dialog")},
		Values:  []uint32{0, 1},
	}

	if value, ok := table.Resolve(0); ok {
		t.Errorf("Resolve(0) = %q, true; want absent", value)
	}
	value, ok := table.Resolve(1)
	if !ok || value != "windows-file-dialog" {
		t.Errorf("Resolve(1) = %q, %v; want windows-file-dialog, true", value, ok)
	}
}

func TestDecode_Accessors(t *testing.T) {
	records, err := Decode([]byte(fourPingPayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if records.RowCount() != 4 {
		t.Fatalf("RowCount() = %d, want 4", records.RowCount())
	}

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"Channel(2)", records.Channel(2), "beta"},
		{"Channel(3)", records.Channel(3), "nightly"},
		{"Process(3)", records.Process(3), "gpu"},
		{"OS(2)", records.OS(2), "Linux"},
		{"OSVersion(0)", records.OSVersion(0), "10.0.19045"},
		{"Version(2)", records.Version(2), "148.0"},
		{"Arch(3)", records.Arch(3), "aarch64"},
		{"BuildID(3)", records.BuildID(3), "20260116000000"},
		{"Signature(3)", records.Signature(3), "js::gc::SomeFunc"},
		{"Date(1)", records.Date(1), "2026-01-20"},
		{"ClientID(1)", records.ClientID(1), "c2"},
		{"CrashID(0)", records.CrashID(0), "a1"},
		{"IPCActor(0)", records.IPCActor(0), None},
		{"IPCActor(1)", records.IPCActor(1), "windows-file-dialog"},
		{"Reason(0)", records.Reason(0), "EXCEPTION_ACCESS_VIOLATION_READ"},
		{"Reason(1)", records.Reason(1), None},
		{"Type(2)", records.Type(2), "SIGSEGV"},
		{"Type(0)", records.Type(0), None},
	}
	for _, check := range checks {
		if check.got != check.want {
			t.Errorf("%s = %q, want %q", check.name, check.got, check.want)
		}
	}

	if hash, ok := records.MinidumpHash(0); !ok || hash != "abc123" {
		t.Errorf("MinidumpHash(0) = %q, %v", hash, ok)
	}
	if _, ok := records.MinidumpHash(1); ok {
		t.Error("MinidumpHash(1) present, want absent")
	}
	if startup, ok := records.StartupCrash(1); !ok || !startup {
		t.Errorf("StartupCrash(1) = %v, %v; want true, true", startup, ok)
	}
	if _, ok := records.StartupCrash(2); ok {
		t.Error("StartupCrash(2) present, want absent")
	}
}

func TestFacetValue(t *testing.T) {
	records, err := Decode([]byte(fourPingPayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	tests := []struct {
		facet string
		row   int
		want  string
	}{
		{FacetSignature, 2, "setup_stack_prot"},
		{FacetChannel, 3, "nightly"},
		{FacetOS, 3, "Mac"},
		{FacetProcess, 1, "content"},
		{FacetVersion, 0, "147.0"},
		{FacetArch, 3, "aarch64"},
		{FacetOSVersion, 2, "6.8"},
		{FacetBuildID, 0, "20260115000000"},
		{FacetIPCActor, 0, "(none)"},
		{FacetIPCActor, 1, "windows-file-dialog"},
		{FacetReason, 1, "(none)"},
		{FacetType, 3, "SIGSEGV"},
		{"gpu_vendor", 0, "(unknown facet)"},
		{"", 0, "(unknown facet)"},
	}
	for _, test := range tests {
		if got := records.FacetValue(test.row, test.facet); got != test.want {
			t.Errorf("FacetValue(%d, %q) = %q, want %q", test.row, test.facet, got, test.want)
		}
	}
}

func TestValidFacet(t *testing.T) {
	for _, facet := range Facets {
		if !ValidFacet(facet) {
			t.Errorf("ValidFacet(%q) = false", facet)
		}
	}
	for _, facet := range []string{"platform", "Signature", ""} {
		if ValidFacet(facet) {
			t.Errorf("ValidFacet(%q) = true", facet)
		}
	}
}

func TestNew_RejectsMismatchedColumnLength(t *testing.T) {
	columns := fivePingColumns()
	columns.Channel.Values = columns.Channel.Values[:4]

	_, err := New(columns)
	var decodeError *DecodeError
	if !errors.As(err, &decodeError) {
		t.Fatalf("New() error = %v, want *DecodeError", err)
	}
	if decodeError.Field != "channel" {
		t.Errorf("Field = %q, want channel", decodeError.Field)
	}
}

func TestNew_RejectsIndexOutOfRange(t *testing.T) {
	columns := fivePingColumns()
	columns.Signature.Values = []uint32{0, 0, 0, 1, 2}

	_, err := New(columns)
	var decodeError *DecodeError
	if !errors.As(err, &decodeError) {
		t.Fatalf("New() error = %v, want *DecodeError", err)
	}
	if decodeError.Field != "signature" {
		t.Errorf("Field = %q, want signature", decodeError.Field)
	}
	if !strings.Contains(err.Error(), "row 4") {
		t.Errorf("error %q does not name the row", err)
	}
}

func TestNew_RejectsNullableIndexOutOfRange(t *testing.T) {
	columns := fivePingColumns()
	columns.Reason.Values = []uint32{0, 0, 3, 0, 0}

	_, err := New(columns)
	var decodeError *DecodeError
	if !errors.As(err, &decodeError) || decodeError.Field != "reason" {
		t.Fatalf("New() error = %v, want *DecodeError for reason", err)
	}
}

func TestNew_RejectsShortFlatArrays(t *testing.T) {
	columns := fivePingColumns()
	columns.StartupCrash = columns.StartupCrash[:2]

	_, err := New(columns)
	var decodeError *DecodeError
	if !errors.As(err, &decodeError) || decodeError.Field != "startup_crash" {
		t.Fatalf("New() error = %v, want *DecodeError for startup_crash", err)
	}
}

func TestDecode_MissingKeys(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		key     string
	}{
		{
			name:    "error body",
			payload: `{"detail":"rate limited"}`,
			key:     "crashid",
		},
		{
			name:    "no crash ids",
			payload: strings.Replace(fourPingPayload, `"crashid": ["a1", "a2", "a3", "a4"],`, "", 1),
			key:     "crashid",
		},
		{
			name: "no signature column",
			payload: strings.Replace(fourPingPayload,
				`,
	"signature": {"strings": ["OOM | small", "setup_stack_prot", "js::gc::SomeFunc"], "values": [0, 0, 1, 2]}`, "", 1),
			key: "signature.strings",
		},
		{
			name: "column without values",
			payload: strings.Replace(fourPingPayload,
				`"os": {"strings": ["Windows", "Linux", "Mac"], "values": [0, 0, 1, 2]},`,
				`"os": {"strings": ["Windows", "Linux", "Mac"]},`, 1),
			key: "os.values",
		},
		{
			name:    "null flat column",
			payload: strings.Replace(fourPingPayload, `"startup_crash": [false, true, null, false],`, `"startup_crash": null,`, 1),
			key:     "startup_crash",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Decode([]byte(test.payload))
			var parseError *payload.ParseError
			if !errors.As(err, &parseError) {
				t.Fatalf("Decode() error = %v, want *payload.ParseError", err)
			}
			var missing *payload.MissingKeyError
			if !errors.As(err, &missing) || missing.Key != test.key {
				t.Fatalf("Decode() error = %v, want missing key %q", err, test.key)
			}
			if !strings.HasPrefix(test.payload, parseError.Excerpt) || parseError.Excerpt == "" {
				t.Errorf("excerpt = %q, want a prefix of the payload", parseError.Excerpt)
			}
		})
	}
}

func TestDecode_EmptyDay(t *testing.T) {
	empty := `{"crashid": [], "minidump_sha256_hash": [], "startup_crash": []`
	for _, column := range []string{
		"channel", "process", "ipc_actor", "clientid", "version", "os",
		"osversion", "arch", "date", "reason", "type", "build_id", "signature",
	} {
		empty += `, "` + column + `": {"strings": [], "values": []}`
	}
	empty += "}"

	records, err := Decode([]byte(empty))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if records.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", records.RowCount())
	}
}

func TestDecode_MalformedJSON(t *testing.T) {
	_, err := Decode([]byte(`<html><body>502 Bad Gateway</body></html>`))
	var parseError *payload.ParseError
	if !errors.As(err, &parseError) {
		t.Fatalf("Decode() error = %v, want *payload.ParseError", err)
	}
	if !strings.Contains(parseError.Excerpt, "502 Bad Gateway") {
		t.Errorf("excerpt = %q", parseError.Excerpt)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	original, err := Decode([]byte(fourPingPayload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	encoded, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode(Encode()): %v", err)
	}

	if decoded.RowCount() != original.RowCount() {
		t.Fatalf("RowCount() = %d, want %d", decoded.RowCount(), original.RowCount())
	}
	for row := range original.RowCount() {
		for _, facet := range Facets {
			if got, want := decoded.FacetValue(row, facet), original.FacetValue(row, facet); got != want {
				t.Errorf("row %d %s = %q, want %q", row, facet, got, want)
			}
		}
		if decoded.CrashID(row) != original.CrashID(row) ||
			decoded.ClientID(row) != original.ClientID(row) ||
			decoded.Date(row) != original.Date(row) {
			t.Errorf("row %d identity columns differ after round trip", row)
		}
		gotHash, gotHashOK := decoded.MinidumpHash(row)
		wantHash, wantHashOK := original.MinidumpHash(row)
		if gotHash != wantHash || gotHashOK != wantHashOK {
			t.Errorf("row %d minidump hash = %q/%v, want %q/%v", row, gotHash, gotHashOK, wantHash, wantHashOK)
		}
		gotStartup, gotStartupOK := decoded.StartupCrash(row)
		wantStartup, wantStartupOK := original.StartupCrash(row)
		if gotStartup != wantStartup || gotStartupOK != wantStartupOK {
			t.Errorf("row %d startup crash = %v/%v, want %v/%v", row, gotStartup, gotStartupOK, wantStartup, wantStartupOK)
		}
	}
}
