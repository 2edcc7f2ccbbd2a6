// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socorro

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/payload"
	"github.com/bureau-foundation/crashstats/lib/stackframe"
)

// Unknown is shown for identity fields missing from a report.
const Unknown = "Unknown"

// ProcessedCrash is the subset of a processed crash report that the
// summary needs. The full report is much larger; callers that want all
// of it print the raw response body.
type ProcessedCrash struct {
	UUID           string         `json:"uuid"`
	Signature      *string        `json:"signature"`
	Product        *string        `json:"product"`
	Version        *string        `json:"version"`
	OSName         *string        `json:"os_name"`
	Build          FlexibleString `json:"build"`
	ReleaseChannel *string        `json:"release_channel"`
	OSVersion      *string        `json:"os_version"`

	CrashInfo      *CrashInfo `json:"crash_info"`
	MozCrashReason *string    `json:"moz_crash_reason"`
	AbortMessage   *string    `json:"abort_message"`

	AndroidModel   *string `json:"android_model"`
	AndroidVersion *string `json:"android_version"`

	CrashingThread *int     `json:"crashing_thread"`
	Threads        []Thread `json:"threads"`

	// JSONDump is the raw minidump analysis. Older reports only carry
	// threads and crash info here; it is decoded on demand and
	// ignored when it does not have the expected shape.
	JSONDump json.RawMessage `json:"json_dump"`
}

// CrashInfo describes the exception that caused the crash.
type CrashInfo struct {
	Type           *string `json:"type"`
	Address        *string `json:"address"`
	CrashingThread *int    `json:"crashing_thread"`
}

// Thread is one thread's stack.
type Thread struct {
	Thread     *int               `json:"thread"`
	ThreadName *string            `json:"thread_name"`
	Frames     []stackframe.Frame `json:"frames"`
}

type jsonDump struct {
	CrashingThread *int       `json:"crashing_thread"`
	Threads        []Thread   `json:"threads"`
	CrashInfo      *CrashInfo `json:"crash_info"`
}

// DecodeProcessedCrash parses a processed crash report.
func DecodeProcessedCrash(data []byte) (*ProcessedCrash, error) {
	var crash ProcessedCrash
	if err := payload.Unmarshal("processed crash", data, &crash); err != nil {
		return nil, err
	}
	return &crash, nil
}

// CrashSummary is a processed crash reduced to what a reader needs to
// triage it.
type CrashSummary struct {
	CrashID        string `json:"crash_id"`
	Signature      string `json:"signature"`
	Reason         string `json:"reason,omitempty"`
	Address        string `json:"address,omitempty"`
	MozCrashReason string `json:"moz_crash_reason,omitempty"`
	AbortMessage   string `json:"abort_message,omitempty"`

	Product        string `json:"product"`
	Version        string `json:"version"`
	BuildID        string `json:"build_id,omitempty"`
	ReleaseChannel string `json:"release_channel,omitempty"`
	Platform       string `json:"platform"`

	AndroidVersion string `json:"android_version,omitempty"`
	AndroidModel   string `json:"android_model,omitempty"`

	CrashingThreadName string             `json:"crashing_thread_name,omitempty"`
	Frames             []stackframe.Frame `json:"frames"`
	AllThreads         []ThreadSummary    `json:"all_threads,omitempty"`
}

// ThreadSummary is one thread's truncated stack.
type ThreadSummary struct {
	Index      int                `json:"thread_index"`
	Name       string             `json:"thread_name,omitempty"`
	Frames     []stackframe.Frame `json:"frames"`
	IsCrashing bool               `json:"is_crashing"`
}

// IsNullAddress reports whether the crash address is a null pointer.
func (summary *CrashSummary) IsNullAddress() bool {
	return summary.Address == "0x0" || summary.Address == "0"
}

// Summary reduces the report to the crashing thread's top depth frames,
// or every thread's top depth frames when allThreads is set.
//
// The crashing thread index is taken from the report, then from
// crash_info, then from json_dump. Threads and crash info fall back to
// json_dump when the top-level fields are absent.
func (crash *ProcessedCrash) Summary(depth int, allThreads bool) CrashSummary {
	var dump jsonDump
	if len(crash.JSONDump) > 0 {
		// Malformed dumps leave dump empty, which disables the fallbacks.
		_ = json.Unmarshal(crash.JSONDump, &dump)
	}

	crashing := crash.CrashingThread
	if crashing == nil && crash.CrashInfo != nil {
		crashing = crash.CrashInfo.CrashingThread
	}
	if crashing == nil {
		crashing = dump.CrashingThread
	}

	threads := crash.Threads
	if threads == nil {
		threads = dump.Threads
	}

	crashInfo := crash.CrashInfo
	if crashInfo == nil {
		crashInfo = dump.CrashInfo
	}

	summary := CrashSummary{
		CrashID:        crash.UUID,
		Signature:      valueOr(crash.Signature, Unknown),
		MozCrashReason: valueOr(crash.MozCrashReason, ""),
		AbortMessage:   valueOr(crash.AbortMessage, ""),
		Product:        valueOr(crash.Product, Unknown),
		Version:        valueOr(crash.Version, Unknown),
		BuildID:        string(crash.Build),
		ReleaseChannel: valueOr(crash.ReleaseChannel, ""),
		Platform:       valueOr(crash.OSName, Unknown),
		AndroidVersion: valueOr(crash.AndroidVersion, ""),
		AndroidModel:   valueOr(crash.AndroidModel, ""),
		Frames:         []stackframe.Frame{},
	}
	if crash.OSVersion != nil {
		summary.Platform += " " + *crash.OSVersion
	}
	if crashInfo != nil {
		summary.Reason = valueOr(crashInfo.Type, "")
		summary.Address = valueOr(crashInfo.Address, "")
	}

	if allThreads {
		for index, thread := range threads {
			summary.AllThreads = append(summary.AllThreads, ThreadSummary{
				Index:      index,
				Name:       valueOr(thread.ThreadName, ""),
				Frames:     truncate(thread.Frames, depth),
				IsCrashing: crashing != nil && *crashing == index,
			})
		}
	}

	if crashing != nil && *crashing >= 0 && *crashing < len(threads) {
		thread := threads[*crashing]
		summary.CrashingThreadName = valueOr(thread.ThreadName, "")
		summary.Frames = truncate(thread.Frames, depth)
	}

	return summary
}

func truncate(frames []stackframe.Frame, depth int) []stackframe.Frame {
	if depth < 0 {
		depth = 0
	}
	if len(frames) > depth {
		frames = frames[:depth]
	}
	result := make([]stackframe.Frame, len(frames))
	copy(result, frames)
	return result
}

func valueOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}

// FlexibleString decodes a JSON string or number into its text form.
// Build ids are published as either.
type FlexibleString string

// UnmarshalJSON accepts a string, a number, or null.
func (flexible *FlexibleString) UnmarshalJSON(data []byte) error {
	switch {
	case string(data) == "null":
		*flexible = ""
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*flexible = FlexibleString(text)
	default:
		var number json.Number
		if err := json.Unmarshal(data, &number); err != nil {
			return fmt.Errorf("build id: want string or number, got %s", data)
		}
		*flexible = FlexibleString(number.String())
	}
	return nil
}

// ExtractCrashID accepts a bare crash id or a crash-stats report URL
// and returns the id. For URLs the id is the last non-empty path
// segment.
func ExtractCrashID(input string) string {
	if !strings.HasPrefix(input, "http://") && !strings.HasPrefix(input, "https://") {
		return input
	}
	segments := strings.Split(input, "/")
	for index := len(segments) - 1; index >= 0; index-- {
		if segments[index] != "" {
			return segments[index]
		}
	}
	return input
}

// InvalidCrashIDError reports a crash id with characters other than hex
// digits and dashes.
type InvalidCrashIDError struct {
	CrashID string
}

func (e *InvalidCrashIDError) Error() string {
	return fmt.Sprintf("invalid crash id %q: expected hex digits and dashes", e.CrashID)
}

// ValidateCrashID rejects ids that could not have been issued by the
// crash reporter. The id ends up in a query string, so this also keeps
// arbitrary input out of requests.
func ValidateCrashID(crashID string) error {
	if crashID == "" {
		return &InvalidCrashIDError{CrashID: crashID}
	}
	for _, character := range crashID {
		isHex := (character >= '0' && character <= '9') ||
			(character >= 'a' && character <= 'f') ||
			(character >= 'A' && character <= 'F')
		if !isHex && character != '-' {
			return &InvalidCrashIDError{CrashID: crashID}
		}
	}
	return nil
}
