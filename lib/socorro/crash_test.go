// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socorro

import (
	"errors"
	"testing"

	"github.com/bureau-foundation/crashstats/lib/stackframe"
)

const sampleCrash = `{
	"uuid": "247653e8-7a18-4836-97d1-42a720260120",
	"signature": "mozilla::AudioDecoderInputTrack::EnsureTimeStretcher",
	"product": "Fenix",
	"version": "147.0.1",
	"os_name": "Android",
	"os_version": "36",
	"build": 20260115093012,
	"crashing_thread": 1,
	"moz_crash_reason": "MOZ_RELEASE_ASSERT(mTimeStretcher->Init())",
	"android_model": "Pixel 8",
	"crash_info": {"type": "SIGSEGV", "address": "0x0", "crashing_thread": 1},
	"threads": [
		{"thread": 0, "thread_name": "MainThread", "frames": [
			{"frame": 0, "function": "main", "file": "main.cpp", "line": 10}
		]},
		{"thread": 1, "thread_name": "GraphRunner", "frames": [
			{"frame": 0, "function": "EnsureTimeStretcher", "file": "AudioDecoderInputTrack.cpp", "line": 624},
			{"frame": 1, "function": "AppendData", "file": "AudioDecoderInputTrack.cpp", "line": 423}
		]}
	]
}`

func mustDecodeCrash(t *testing.T, data string) *ProcessedCrash {
	t.Helper()
	crash, err := DecodeProcessedCrash([]byte(data))
	if err != nil {
		t.Fatalf("DecodeProcessedCrash: %v", err)
	}
	return crash
}

func TestSummary_Basic(t *testing.T) {
	summary := mustDecodeCrash(t, sampleCrash).Summary(10, false)

	if summary.CrashID != "247653e8-7a18-4836-97d1-42a720260120" {
		t.Errorf("CrashID = %q", summary.CrashID)
	}
	if summary.Signature != "mozilla::AudioDecoderInputTrack::EnsureTimeStretcher" {
		t.Errorf("Signature = %q", summary.Signature)
	}
	if summary.Product != "Fenix" || summary.Version != "147.0.1" {
		t.Errorf("product = %q %q", summary.Product, summary.Version)
	}
	if summary.Platform != "Android 36" {
		t.Errorf("Platform = %q, want Android 36", summary.Platform)
	}
	if summary.BuildID != "20260115093012" {
		t.Errorf("BuildID = %q, want numeric build rendered as text", summary.BuildID)
	}
	if summary.Reason != "SIGSEGV" || summary.Address != "0x0" || !summary.IsNullAddress() {
		t.Errorf("reason = %q @ %q", summary.Reason, summary.Address)
	}
	if summary.MozCrashReason != "MOZ_RELEASE_ASSERT(mTimeStretcher->Init())" {
		t.Errorf("MozCrashReason = %q", summary.MozCrashReason)
	}
	if summary.CrashingThreadName != "GraphRunner" {
		t.Errorf("CrashingThreadName = %q", summary.CrashingThreadName)
	}
	if len(summary.Frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(summary.Frames))
	}
	if got := stackframe.Describe(summary.Frames[0]); got != "EnsureTimeStretcher @ AudioDecoderInputTrack.cpp:624" {
		t.Errorf("frame 0 = %q", got)
	}
	if summary.AllThreads != nil {
		t.Errorf("AllThreads = %v, want nil without allThreads", summary.AllThreads)
	}
}

func TestSummary_DepthLimit(t *testing.T) {
	summary := mustDecodeCrash(t, sampleCrash).Summary(1, false)
	if len(summary.Frames) != 1 || *summary.Frames[0].Function != "EnsureTimeStretcher" {
		t.Errorf("frames = %+v, want only EnsureTimeStretcher", summary.Frames)
	}
}

func TestSummary_AllThreads(t *testing.T) {
	summary := mustDecodeCrash(t, sampleCrash).Summary(10, true)

	if len(summary.AllThreads) != 2 {
		t.Fatalf("got %d threads, want 2", len(summary.AllThreads))
	}
	if summary.AllThreads[0].IsCrashing || !summary.AllThreads[1].IsCrashing {
		t.Errorf("crashing flags = %v/%v, want false/true", summary.AllThreads[0].IsCrashing, summary.AllThreads[1].IsCrashing)
	}
	if summary.AllThreads[0].Name != "MainThread" || summary.AllThreads[1].Name != "GraphRunner" {
		t.Errorf("names = %q/%q", summary.AllThreads[0].Name, summary.AllThreads[1].Name)
	}
}

func TestSummary_CrashingThreadFromCrashInfo(t *testing.T) {
	summary := mustDecodeCrash(t, `{
		"uuid": "test-crash",
		"crash_info": {"type": "SIGSEGV", "crashing_thread": 0},
		"threads": [{"thread": 0, "thread_name": "Main", "frames": [{"frame": 0, "function": "foo"}]}]
	}`).Summary(10, false)

	if summary.CrashingThreadName != "Main" {
		t.Errorf("CrashingThreadName = %q, want Main", summary.CrashingThreadName)
	}
}

func TestSummary_FallsBackToJSONDump(t *testing.T) {
	summary := mustDecodeCrash(t, `{
		"uuid": "test-crash",
		"json_dump": {
			"crashing_thread": 0,
			"crash_info": {"type": "EXCEPTION_ACCESS_VIOLATION_READ", "address": "0xdead"},
			"threads": [{"thread": 0, "thread_name": "DumpThread", "frames": [{"frame": 0, "function": "bar"}]}]
		}
	}`).Summary(10, false)

	if summary.CrashingThreadName != "DumpThread" {
		t.Errorf("CrashingThreadName = %q, want DumpThread", summary.CrashingThreadName)
	}
	if summary.Reason != "EXCEPTION_ACCESS_VIOLATION_READ" || summary.IsNullAddress() {
		t.Errorf("reason = %q @ %q", summary.Reason, summary.Address)
	}
}

func TestSummary_MalformedJSONDumpIgnored(t *testing.T) {
	summary := mustDecodeCrash(t, `{"uuid": "x", "json_dump": {"threads": "not a list"}}`).Summary(10, false)
	if len(summary.Frames) != 0 {
		t.Errorf("frames = %v, want none", summary.Frames)
	}
}

func TestSummary_MissingOptionalFields(t *testing.T) {
	summary := mustDecodeCrash(t, `{"uuid": "minimal-crash"}`).Summary(10, false)

	if summary.CrashID != "minimal-crash" {
		t.Errorf("CrashID = %q", summary.CrashID)
	}
	if summary.Signature != Unknown || summary.Product != Unknown || summary.Platform != Unknown {
		t.Errorf("fallbacks = %q %q %q", summary.Signature, summary.Product, summary.Platform)
	}
	if summary.Frames == nil || len(summary.Frames) != 0 {
		t.Errorf("Frames = %v, want empty", summary.Frames)
	}
}

func TestExtractCrashID(t *testing.T) {
	const id = "247653e8-7a18-4836-97d1-42a720260120"
	tests := []struct {
		input string
		want  string
	}{
		{id, id},
		{"https://crash-stats.mozilla.org/report/index/" + id, id},
		{"https://crash-stats.mozilla.org/report/index/" + id + "/", id},
		{"http://crash-stats.mozilla.org/report/index/" + id, id},
	}
	for _, test := range tests {
		if got := ExtractCrashID(test.input); got != test.want {
			t.Errorf("ExtractCrashID(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestValidateCrashID(t *testing.T) {
	valid := []string{
		"247653e8-7a18-4836-97d1-42a720260120",
		"ABCDEF01-2345-6789-abcd-ef0123456789",
	}
	for _, id := range valid {
		if err := ValidateCrashID(id); err != nil {
			t.Errorf("ValidateCrashID(%q) = %v", id, err)
		}
	}

	invalid := []string{
		"invalid crash id",
		"abc123!@#$",
		"abc123; DROP TABLE crashes;",
		"abcdef01-2345-6789-abcd-ef012345678g",
		"",
	}
	for _, id := range invalid {
		err := ValidateCrashID(id)
		var invalidError *InvalidCrashIDError
		if !errors.As(err, &invalidError) {
			t.Errorf("ValidateCrashID(%q) = %v, want *InvalidCrashIDError", id, err)
		}
	}
}
