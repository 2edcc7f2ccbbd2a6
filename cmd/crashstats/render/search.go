// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/socorro"
)

// Search writes SuperSearch results. Facets print in field-name order.
func Search(w io.Writer, format Format, response *socorro.SearchResponse) error {
	switch format {
	case Compact:
		return writeString(w, compactSearch(response))
	case JSON:
		return WriteJSON(w, response)
	case Markdown:
		return writeString(w, markdownSearch(response))
	}
	return unknownFormat(format)
}

func compactSearch(response *socorro.SearchResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FOUND %d crashes\n\n", response.Total)
	for _, hit := range response.Hits {
		fmt.Fprintf(&b, "%s | %s %s | %s | %s\n",
			hit.ShortID(), hit.Product, hit.Version, hit.PlatformName(), hit.Signature)
	}

	if len(response.Facets) > 0 {
		b.WriteString("\nAGGREGATIONS:\n")
		for _, field := range facetFields(response) {
			fmt.Fprintf(&b, "\n%s:\n", field)
			for _, bucket := range response.Facets[field] {
				fmt.Fprintf(&b, "  %s (%d)\n", bucket.Term, bucket.Count)
			}
		}
	}
	return b.String()
}

func markdownSearch(response *socorro.SearchResponse) string {
	var b strings.Builder
	b.WriteString("# Search Results\n\n")
	fmt.Fprintf(&b, "Found **%d** crashes\n\n", response.Total)

	if len(response.Hits) > 0 {
		b.WriteString("## Crashes\n\n")
		b.WriteString("| Crash ID | Product | Version | Platform | Signature |\n")
		b.WriteString("|----------|---------|---------|----------|-----------|\n")
		for _, hit := range response.Hits {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
				hit.ShortID(), escapeCell(hit.Product), escapeCell(hit.Version),
				escapeCell(hit.PlatformName()), escapeCell(hit.Signature))
		}
		b.WriteString("\n")
	}

	if len(response.Facets) > 0 {
		b.WriteString("## Aggregations\n\n")
		for _, field := range facetFields(response) {
			fmt.Fprintf(&b, "### %s\n\n", field)
			for _, bucket := range response.Facets[field] {
				fmt.Fprintf(&b, "- **%s**: %d crashes\n", bucket.Term, bucket.Count)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func facetFields(response *socorro.SearchResponse) []string {
	fields := make([]string, 0, len(response.Facets))
	for field := range response.Facets {
		fields = append(fields, field)
	}
	slices.Sort(fields)
	return fields
}
