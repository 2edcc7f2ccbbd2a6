// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package render writes crashstats results in the three output
// formats. Each result type has exactly one entry point ([Pings],
// [PingStack], [Correlations], [Crash], [Search]) that switches over
// [Format]; the domain packages under lib/ only produce
// format-agnostic summaries.
//
// Compact output is dense plain text. JSON output is pretty-printed and
// syntax highlighted when stdout is a terminal; for correlations and
// crash reports it is the upstream document itself. Markdown output is
// GitHub-flavored and is also what the serve command turns into HTML.
package render
