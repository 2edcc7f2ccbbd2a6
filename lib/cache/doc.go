// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache stores upstream response bodies so repeated queries
// for the same day of crash pings do not refetch tens of megabytes.
//
// Three backends implement [Store]:
//
//   - [FileStore] writes one file per key under a directory. File
//     names are keyed BLAKE3 hashes of the cache key, so keys may
//     contain any characters. Each file is a CBOR envelope carrying
//     the key, the compression tag, the uncompressed size, a BLAKE3
//     checksum of the uncompressed body, and the body itself.
//   - [SQLiteStore] keeps the same fields in one table.
//   - [Nop] stores nothing.
//
// Corrupt entries are misses, never errors: the caller refetches and
// overwrites them. Only successful upstream responses are stored;
// callers decide what is cacheable.
package cache
