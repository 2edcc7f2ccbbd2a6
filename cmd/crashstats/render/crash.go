// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/socorro"
)

// Crash writes a processed crash report. JSON output is the raw report.
func Crash(w io.Writer, format Format, summary *socorro.CrashSummary, raw []byte) error {
	switch format {
	case Compact:
		return writeString(w, compactCrash(summary))
	case JSON:
		return WriteRawJSON(w, raw)
	case Markdown:
		return writeString(w, markdownCrash(summary))
	}
	return unknownFormat(format)
}

func compactCrash(summary *socorro.CrashSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CRASH %s\n", summary.CrashID)
	fmt.Fprintf(&b, "sig: %s\n", summary.Signature)

	if summary.Reason != "" {
		switch {
		case summary.Address == "":
			fmt.Fprintf(&b, "reason: %s\n", summary.Reason)
		case summary.IsNullAddress():
			fmt.Fprintf(&b, "reason: %s @ %s (null ptr)\n", summary.Reason, summary.Address)
		default:
			fmt.Fprintf(&b, "reason: %s @ %s\n", summary.Reason, summary.Address)
		}
	}
	if summary.MozCrashReason != "" {
		fmt.Fprintf(&b, "moz_reason: %s\n", summary.MozCrashReason)
	}
	if summary.AbortMessage != "" {
		fmt.Fprintf(&b, "abort: %s\n", summary.AbortMessage)
	}

	device := ""
	switch {
	case summary.AndroidModel != "" && summary.AndroidVersion != "":
		device = ", " + summary.AndroidModel + " " + summary.AndroidVersion
	case summary.AndroidModel != "":
		device = ", " + summary.AndroidModel
	}
	fmt.Fprintf(&b, "product: %s %s (%s%s)\n", summary.Product, summary.Version, summary.Platform, device)
	if summary.BuildID != "" || summary.ReleaseChannel != "" {
		fmt.Fprintf(&b, "build: %s  channel: %s\n", orUnknown(summary.BuildID), orUnknown(summary.ReleaseChannel))
	}

	if len(summary.AllThreads) > 0 {
		b.WriteString("\n")
		for _, thread := range summary.AllThreads {
			marker := ""
			if thread.IsCrashing {
				marker = " [CRASHING]"
			}
			fmt.Fprintf(&b, "stack[thread %d:%s%s]:\n", thread.Index, threadName(thread.Name), marker)
			writeFrames(&b, "  ", thread.Frames)
			b.WriteString("\n")
		}
	} else if len(summary.Frames) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "stack[%s]:\n", threadName(summary.CrashingThreadName))
		writeFrames(&b, "  ", summary.Frames)
	}
	return b.String()
}

func markdownCrash(summary *socorro.CrashSummary) string {
	var b strings.Builder
	b.WriteString("# Crash Report\n\n")
	fmt.Fprintf(&b, "**Crash ID:** `%s`\n\n", summary.CrashID)
	fmt.Fprintf(&b, "**Signature:** `%s`\n\n", summary.Signature)
	b.WriteString("## Details\n\n")

	if summary.Reason != "" {
		switch {
		case summary.Address == "":
			fmt.Fprintf(&b, "- **Crash Reason:** %s\n", summary.Reason)
		case summary.IsNullAddress():
			fmt.Fprintf(&b, "- **Crash Reason:** %s at `%s` (null pointer)\n", summary.Reason, summary.Address)
		default:
			fmt.Fprintf(&b, "- **Crash Reason:** %s at `%s`\n", summary.Reason, summary.Address)
		}
	}
	if summary.MozCrashReason != "" {
		fmt.Fprintf(&b, "- **Mozilla Crash Reason:** %s\n", summary.MozCrashReason)
	}
	if summary.AbortMessage != "" {
		fmt.Fprintf(&b, "- **Abort Message:** %s\n", summary.AbortMessage)
	}

	device := ""
	switch {
	case summary.AndroidModel != "" && summary.AndroidVersion != "":
		device = fmt.Sprintf(" on %s (Android %s)", summary.AndroidModel, summary.AndroidVersion)
	case summary.AndroidModel != "":
		device = " on " + summary.AndroidModel
	}
	fmt.Fprintf(&b, "- **Product:** %s %s\n", summary.Product, summary.Version)
	if summary.BuildID != "" {
		fmt.Fprintf(&b, "- **Build ID:** %s\n", summary.BuildID)
	}
	if summary.ReleaseChannel != "" {
		fmt.Fprintf(&b, "- **Channel:** %s\n", summary.ReleaseChannel)
	}
	fmt.Fprintf(&b, "- **Platform:** %s%s\n\n", summary.Platform, device)

	if len(summary.AllThreads) > 0 {
		b.WriteString("## All Threads\n\n")
		for _, thread := range summary.AllThreads {
			marker := ""
			if thread.IsCrashing {
				marker = " **[CRASHING]**"
			}
			fmt.Fprintf(&b, "### Thread %d (%s)%s\n\n```\n", thread.Index, threadName(thread.Name), marker)
			writeFrames(&b, "", thread.Frames)
			b.WriteString("```\n\n")
		}
	} else if len(summary.Frames) > 0 {
		fmt.Fprintf(&b, "## Stack Trace (%s)\n\n```\n", threadName(summary.CrashingThreadName))
		writeFrames(&b, "", summary.Frames)
		b.WriteString("```\n")
	}
	return b.String()
}

func threadName(name string) string {
	if name == "" {
		return "unknown"
	}
	return name
}

func orUnknown(value string) string {
	if value == "" {
		return socorro.Unknown
	}
	return value
}
