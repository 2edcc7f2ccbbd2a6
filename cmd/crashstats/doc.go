// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Crashstats is a command-line client for Mozilla crash data. It
// aggregates the daily crash ping sample (pings), summarizes Socorro
// crash reports (crash, search), shows signature correlations
// (correlations), manages the API token (auth) and the response cache
// (cache), and serves the same queries over HTTP (serve).
package main
