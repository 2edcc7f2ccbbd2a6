// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers: channel receives with
// a timeout, TLS test servers, gzip fixtures, and crashstats config
// files pointing at a test server.
package testutil
