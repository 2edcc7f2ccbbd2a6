// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import "testing"

func stringPointer(s string) *string { return &s }

// fivePingColumns is a small day of pings: three "OOM | small" crashes
// and two "setup_stack_prot" crashes spread over two channels, two
// processes and two operating systems.
func fivePingColumns() Columns {
	return Columns{
		Channel:      IndexedStrings{Strings: []string{"release", "beta"}, Values: []uint32{0, 0, 1, 0, 0}},
		Process:      IndexedStrings{Strings: []string{"main", "content"}, Values: []uint32{0, 1, 0, 1, 0}},
		IPCActor:     NullableIndexedStrings{Strings: []*string{nil}, Values: []uint32{0, 0, 0, 0, 0}},
		ClientID:     IndexedStrings{Strings: []string{"client-a", "client-b"}, Values: []uint32{0, 1, 0, 1, 1}},
		CrashID:      []string{"id1", "id2", "id3", "id4", "id5"},
		Version:      IndexedStrings{Strings: []string{"147.0"}, Values: []uint32{0, 0, 0, 0, 0}},
		OS:           IndexedStrings{Strings: []string{"Windows", "Linux"}, Values: []uint32{0, 0, 1, 0, 1}},
		OSVersion:    IndexedStrings{Strings: []string{"10.0", "6.8"}, Values: []uint32{0, 0, 1, 0, 1}},
		Arch:         IndexedStrings{Strings: []string{"x86_64"}, Values: []uint32{0, 0, 0, 0, 0}},
		Date:         IndexedStrings{Strings: []string{"2026-01-20"}, Values: []uint32{0, 0, 0, 0, 0}},
		Reason:       NullableIndexedStrings{Strings: []*string{nil}, Values: []uint32{0, 0, 0, 0, 0}},
		Type:         NullableIndexedStrings{Strings: []*string{nil}, Values: []uint32{0, 0, 0, 0, 0}},
		MinidumpHash: []*string{nil, nil, nil, nil, nil},
		StartupCrash: []*bool{nil, nil, nil, nil, nil},
		BuildID:      IndexedStrings{Strings: []string{"20260115000000"}, Values: []uint32{0, 0, 0, 0, 0}},
		Signature:    IndexedStrings{Strings: []string{"OOM | small", "setup_stack_prot"}, Values: []uint32{0, 0, 0, 1, 1}},
	}
}

func mustNew(t *testing.T, columns Columns) *RecordSet {
	t.Helper()
	records, err := New(columns)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return records
}

// fourPingPayload exercises nullable columns and the flat per-row
// arrays in wire form.
const fourPingPayload = `{
	"channel": {"strings": ["release", "beta", "nightly"], "values": [0, 0, 1, 2]},
	"process": {"strings": ["main", "content", "gpu"], "values": [0, 1, 0, 2]},
	"ipc_actor": {"strings": [null, "windows-file-dialog"], "values": [0, 1, 0, 0]},
	"clientid": {"strings": ["c1", "c2", "c3"], "values": [0, 1, 2, 2]},
	"crashid": ["a1", "a2", "a3", "a4"],
	"version": {"strings": ["147.0", "148.0"], "values": [0, 0, 1, 1]},
	"os": {"strings": ["Windows", "Linux", "Mac"], "values": [0, 0, 1, 2]},
	"osversion": {"strings": ["10.0.19045", "6.8", "15.2"], "values": [0, 0, 1, 2]},
	"arch": {"strings": ["x86_64", "aarch64"], "values": [0, 0, 0, 1]},
	"date": {"strings": ["2026-01-20"], "values": [0, 0, 0, 0]},
	"reason": {"strings": [null, "EXCEPTION_ACCESS_VIOLATION_READ"], "values": [1, 0, 1, 0]},
	"type": {"strings": [null, "SIGSEGV"], "values": [0, 0, 1, 1]},
	"minidump_sha256_hash": ["abc123", null, null, "def456"],
	"startup_crash": [false, true, null, false],
	"build_id": {"strings": ["20260115000000", "20260116000000"], "values": [0, 0, 1, 1]},
	"signature": {"strings": ["OOM | small", "setup_stack_prot", "js::gc::SomeFunc"], "values": [0, 0, 1, 2]}
}`
