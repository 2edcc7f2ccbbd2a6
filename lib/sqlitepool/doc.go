// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens a small pool of SQLite connections for the
// optional SQLite cache backend.
//
// It wraps zombiezen.com/go/sqlite's sqlitex.Pool and applies the same
// pragmas to every connection:
//
//   - journal_mode=WAL so a concurrent reader never blocks the writer.
//   - synchronous=NORMAL. Cache contents can always be fetched again.
//   - busy_timeout=5000 so two crashstats processes sharing a cache
//     wait for each other instead of failing with SQLITE_BUSY.
//   - temp_store=MEMORY.
//
// Callers write SQL directly with sqlitex.Execute; there is no query
// builder.
package sqlitepool
