// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socorro

import (
	"net/url"
	"strconv"
	"time"

	"github.com/bureau-foundation/crashstats/lib/payload"
)

// searchColumns are the fields requested for every hit.
var searchColumns = []string{
	"uuid", "date", "signature", "product", "version",
	"platform", "build_id", "release_channel", "platform_version",
}

// SearchParams are the SuperSearch filters exposed by the search
// command. Empty strings are omitted from the query. String filters
// accept the service's "~" prefix for contains matching.
type SearchParams struct {
	Signature       string
	Product         string
	Version         string
	Platform        string
	CPUArch         string
	ReleaseChannel  string
	PlatformVersion string
	ProcessType     string

	// Days bounds the search to crashes submitted in the last Days
	// days.
	Days int

	// Limit is the number of hits to return. Zero returns only
	// totals and facets.
	Limit int

	Facets     []string
	FacetsSize int
	Sort       string
}

// Query builds the SuperSearch query string. now anchors the date
// window.
func (params SearchParams) Query(now time.Time) url.Values {
	query := url.Values{}
	query.Set("product", params.Product)
	query.Set("_results_number", strconv.Itoa(params.Limit))
	query.Set("_sort", params.Sort)
	for _, column := range searchColumns {
		query.Add("_columns", column)
	}
	since := now.UTC().AddDate(0, 0, -params.Days)
	query.Set("date", ">="+since.Format(time.DateOnly))

	optional := []struct {
		key   string
		value string
	}{
		{"signature", params.Signature},
		{"version", params.Version},
		{"platform", params.Platform},
		{"cpu_arch", params.CPUArch},
		{"release_channel", params.ReleaseChannel},
		{"platform_version", params.PlatformVersion},
		{"process_type", params.ProcessType},
	}
	for _, filter := range optional {
		if filter.value != "" {
			query.Set(filter.key, filter.value)
		}
	}

	for _, facet := range params.Facets {
		query.Add("_facets", facet)
	}
	if params.FacetsSize > 0 {
		query.Set("_facets_size", strconv.Itoa(params.FacetsSize))
	}
	return query
}

// SearchResponse is a SuperSearch result page.
type SearchResponse struct {
	Total  uint64                   `json:"total"`
	Hits   []CrashHit               `json:"hits"`
	Facets map[string][]FacetBucket `json:"facets"`
}

// CrashHit is one matching crash.
type CrashHit struct {
	UUID            string         `json:"uuid"`
	Date            string         `json:"date"`
	Signature       string         `json:"signature"`
	Product         string         `json:"product"`
	Version         string         `json:"version"`
	Platform        *string        `json:"platform,omitempty"`
	BuildID         FlexibleString `json:"build_id,omitempty"`
	ReleaseChannel  *string        `json:"release_channel,omitempty"`
	PlatformVersion *string        `json:"platform_version,omitempty"`
}

// ShortID returns the first eight characters of the crash id, enough
// to recognize a crash in a listing.
func (hit *CrashHit) ShortID() string {
	if len(hit.UUID) <= 8 {
		return hit.UUID
	}
	return hit.UUID[:8]
}

// PlatformName returns the platform or [Unknown].
func (hit *CrashHit) PlatformName() string {
	return valueOr(hit.Platform, Unknown)
}

// FacetBucket is one term of a facet aggregation.
type FacetBucket struct {
	Term  string `json:"term"`
	Count uint64 `json:"count"`
}

// DecodeSearchResponse parses a SuperSearch response.
func DecodeSearchResponse(data []byte) (*SearchResponse, error) {
	var response SearchResponse
	if err := payload.Unmarshal("search results", data, &response); err != nil {
		return nil, err
	}
	return &response, nil
}
