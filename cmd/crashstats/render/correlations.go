// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/correlations"
)

// Correlations writes a signature's correlation summary. JSON output
// is the upstream document itself, re-indented, so consumers see every
// field the service publishes.
func Correlations(w io.Writer, format Format, summary *correlations.Summary, raw []byte) error {
	switch format {
	case Compact:
		return writeString(w, compactCorrelations(summary))
	case JSON:
		return WriteRawJSON(w, raw)
	case Markdown:
		return writeString(w, markdownCorrelations(summary))
	}
	return unknownFormat(format)
}

func compactCorrelations(summary *correlations.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CORRELATIONS %s\n", summary.Signature)
	fmt.Fprintf(&b, "channel: %s  date: %s  sig_count: %.0f  ref_count: %d\n",
		summary.Channel, summary.Date, summary.SigCount, summary.RefCount)
	if len(summary.Items) == 0 {
		b.WriteString("\n(no correlations)\n")
		return b.String()
	}
	b.WriteString("\n sig_%   ref_%  attribute\n")
	for _, item := range summary.Items {
		fmt.Fprintf(&b, "%6.1f  %6.1f  %s\n", item.SigPct, item.RefPct, item.Label)
		if prior := item.Prior; prior != nil {
			fmt.Fprintf(&b, "%6.1f  %6.1f    prior: %s\n", prior.SigPct, prior.RefPct, prior.Label)
		}
	}
	return b.String()
}

func markdownCorrelations(summary *correlations.Summary) string {
	var b strings.Builder
	b.WriteString("# Correlations\n\n")
	fmt.Fprintf(&b, "**Signature:** `%s`\n\n", summary.Signature)
	fmt.Fprintf(&b, "- **Channel:** %s\n", summary.Channel)
	fmt.Fprintf(&b, "- **Date:** %s\n", summary.Date)
	fmt.Fprintf(&b, "- **Signature crashes:** %.0f\n", summary.SigCount)
	fmt.Fprintf(&b, "- **Channel crashes:** %d\n\n", summary.RefCount)

	if len(summary.Items) == 0 {
		b.WriteString("No correlations.\n")
		return b.String()
	}
	b.WriteString("| Signature % | Reference % | Attribute | Prior |\n")
	b.WriteString("|---:|---:|---|---|\n")
	for _, item := range summary.Items {
		prior := ""
		if item.Prior != nil {
			prior = fmt.Sprintf("%s (%.1f%% vs %.1f%%)",
				escapeCell(item.Prior.Label), item.Prior.SigPct, item.Prior.RefPct)
		}
		fmt.Fprintf(&b, "| %.1f%% | %.1f%% | %s | %s |\n",
			item.SigPct, item.RefPct, escapeCell(item.Label), prior)
	}
	return b.String()
}
