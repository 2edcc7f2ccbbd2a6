// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/pings"
	"github.com/bureau-foundation/crashstats/lib/stackframe"
)

// Pings writes a facet aggregation of one day's crash pings.
func Pings(w io.Writer, format Format, summary *pings.Summary) error {
	switch format {
	case Compact:
		return writeString(w, compactPings(summary))
	case JSON:
		return WriteJSON(w, summary)
	case Markdown:
		return writeString(w, MarkdownPings(summary))
	}
	return unknownFormat(format)
}

// PingStack writes a single crash ping's symbolicated stack.
func PingStack(w io.Writer, format Format, summary *pings.StackSummary) error {
	switch format {
	case Compact:
		return writeString(w, compactPingStack(summary))
	case JSON:
		return WriteJSON(w, summary)
	case Markdown:
		return writeString(w, markdownPingStack(summary))
	}
	return unknownFormat(format)
}

func compactPings(summary *pings.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PINGS %s: %d of %d", summary.Date, summary.FilteredTotal, summary.Total)
	if summary.SignatureFilter != "" {
		fmt.Fprintf(&b, " (sig: %s)", summary.SignatureFilter)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "by %s:\n", summary.FacetName)
	if len(summary.Items) == 0 {
		b.WriteString("  (no matching pings)\n")
	}
	for _, item := range summary.Items {
		fmt.Fprintf(&b, "  %6d %5.1f%%  %s\n", item.Count, item.Percentage, item.Label)
	}
	return b.String()
}

// MarkdownPings renders a ping aggregation as a Markdown document. The
// serve command converts the same document to HTML.
func MarkdownPings(summary *pings.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Crash Pings for %s\n\n", summary.Date)
	fmt.Fprintf(&b, "- **Total pings:** %d\n", summary.Total)
	fmt.Fprintf(&b, "- **Matching filters:** %d\n", summary.FilteredTotal)
	if summary.SignatureFilter != "" {
		fmt.Fprintf(&b, "- **Signature filter:** `%s`\n", summary.SignatureFilter)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Top by %s\n\n", summary.FacetName)
	if len(summary.Items) == 0 {
		b.WriteString("No matching pings.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "| # | %s | Count | %% |\n", escapeCell(summary.FacetName))
	b.WriteString("|---|---|---:|---:|\n")
	for index, item := range summary.Items {
		fmt.Fprintf(&b, "| %d | %s | %d | %.1f%% |\n", index+1, escapeCell(item.Label), item.Count, item.Percentage)
	}
	return b.String()
}

func compactPingStack(summary *pings.StackSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PING %s (%s)\n", summary.CrashID, summary.Date)
	if len(summary.Frames) == 0 {
		b.WriteString("stack: (none)\n")
	} else {
		b.WriteString("stack:\n")
		writeFrames(&b, "  ", summary.Frames)
	}
	if len(summary.JavaException) > 0 {
		fmt.Fprintf(&b, "java_exception: %s\n", compactJSON(summary.JavaException))
	}
	return b.String()
}

func markdownPingStack(summary *pings.StackSummary) string {
	var b strings.Builder
	b.WriteString("# Crash Ping Stack\n\n")
	fmt.Fprintf(&b, "**Crash ID:** `%s`\n\n", summary.CrashID)
	fmt.Fprintf(&b, "**Date:** %s\n\n", summary.Date)
	b.WriteString("## Stack\n\n")
	if len(summary.Frames) == 0 {
		b.WriteString("No symbolicated stack.\n")
	} else {
		b.WriteString("```\n")
		writeFrames(&b, "", summary.Frames)
		b.WriteString("```\n")
	}
	if len(summary.JavaException) > 0 {
		b.WriteString("\n## Java Exception\n\n```json\n")
		b.WriteString(indentJSON(summary.JavaException))
		b.WriteString("\n```\n")
	}
	return b.String()
}

// writeFrames writes one "#N function @ file:line" line per frame.
func writeFrames(b *strings.Builder, indent string, frames []stackframe.Frame) {
	for _, frame := range frames {
		fmt.Fprintf(b, "%s#%d %s\n", indent, frame.Frame, stackframe.Describe(frame))
	}
}

// escapeCell makes text safe inside a Markdown table cell. Crash
// signatures routinely contain " | " and template brackets, which a
// Markdown renderer would otherwise take for raw HTML.
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "|", `\|`)
	text = strings.ReplaceAll(text, "<", `\<`)
	return strings.ReplaceAll(text, "\n", " ")
}

func compactJSON(raw json.RawMessage) string {
	var buffer bytes.Buffer
	if err := json.Compact(&buffer, raw); err != nil {
		return string(raw)
	}
	return buffer.String()
}

func indentJSON(raw json.RawMessage) string {
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buffer.String()
}

func writeString(w io.Writer, text string) error {
	_, err := io.WriteString(w, text)
	return err
}
