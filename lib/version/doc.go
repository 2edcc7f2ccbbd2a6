// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information and the semantic
// version comparison behind the update notice.
//
// Version, GitCommit and BuildTime are injected via -ldflags -X:
//
//	go build -ldflags "-X github.com/bureau-foundation/crashstats/lib/version.Version=0.4.0"
//
// Development builds report 0.1.0-dev and read the commit from the
// VCS stamp go build embeds.
// [Info], [Full] and [Short] format them for the version command.
//
// [IsNewer] compares the latest published release tag with the running
// version. The comparison is conservative: anything unparseable is
// treated as not newer.
package version
