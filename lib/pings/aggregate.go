// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import "sort"

// Summary is the result of aggregating one day of pings by a facet.
type Summary struct {
	// Date is the payload's date label, carried for display.
	Date string `json:"date"`

	// Total is the number of pings in the payload.
	Total int `json:"total"`

	// FilteredTotal is the number of pings that passed the filter.
	FilteredTotal int `json:"filtered_total"`

	// SignatureFilter echoes the signature constraint, if any.
	SignatureFilter string `json:"signature_filter,omitempty"`

	// FacetName is the facet the items are grouped by.
	FacetName string `json:"facet_name"`

	// Items are ranked by count, highest first.
	Items []Item `json:"items"`
}

// Item is one facet bucket.
type Item struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Aggregate counts the rows matching filter by their facet value and
// returns the limit largest buckets. Buckets with equal counts keep the
// order in which their first row was seen. A limit of zero returns no
// items but still reports the totals. Percentages are relative to the
// filtered total and are zero when nothing matched.
func Aggregate(records *RecordSet, filter Filter, facet string, limit int, date string) *Summary {
	selected := records.Select(filter)

	counts := make(map[string]int)
	var labels []string
	rows := selected.Iterator()
	for rows.HasNext() {
		label := records.FacetValue(int(rows.Next()), facet)
		if _, seen := counts[label]; !seen {
			labels = append(labels, label)
		}
		counts[label]++
	}
	filteredTotal := int(selected.GetCardinality())

	sort.SliceStable(labels, func(i, j int) bool {
		return counts[labels[i]] > counts[labels[j]]
	})
	if limit < 0 {
		limit = 0
	}
	if len(labels) > limit {
		labels = labels[:limit]
	}

	items := make([]Item, len(labels))
	for index, label := range labels {
		items[index] = Item{
			Label:      label,
			Count:      counts[label],
			Percentage: percentage(counts[label], filteredTotal),
		}
	}

	return &Summary{
		Date:            date,
		Total:           records.RowCount(),
		FilteredTotal:   filteredTotal,
		SignatureFilter: filter.Signature,
		FacetName:       facet,
		Items:           items,
	}
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
