// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package pings decodes and aggregates crash ping data: the opt-out
// telemetry crash records published once per day as a single columnar
// JSON payload.
//
// The payload stores each categorical field as an [IndexedStrings]
// table (a deduplicated string pool plus one index per row) and the
// per-row scalars as flat arrays. [Decode] validates every index and
// every column length once, so the accessors on [RecordSet] never fail
// and never allocate a per-row object. A day of data is millions of
// rows; the record set is queried in place.
//
// [Aggregate] filters rows with a [Filter], groups them by a facet
// name, and returns a ranked [Summary] with per-bucket percentages.
// Unknown facet names are not errors: every row lands in a single
// "(unknown facet)" bucket so the result still renders. Callers that
// want to reject bad facet names check [ValidFacet] first.
//
// This package performs no I/O and does not log.
package pings
