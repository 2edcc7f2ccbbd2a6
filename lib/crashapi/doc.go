// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package crashapi is the HTTP client for the crash data services:
// the Socorro crash-stats API, the crash ping server, the correlations
// CDN, and the release feed used for update notices.
//
// Fetch methods return the raw response body (decompressed when it is
// gzip) so callers can cache it or print it verbatim; decoding lives
// in the pings, correlations and socorro packages. Non-success
// statuses become *APIError values whose messages are written for the
// person running the command. 429 and 5xx responses are retried after
// a backoff on the injected clock.
package crashapi
