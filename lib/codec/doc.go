// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration for on-disk cache envelopes.
//
// Cache entries wrap the raw upstream response body with metadata
// (source URL, fetch time, compression tag). The envelope is CBOR so
// the body travels as a byte string without base64 inflation, and the
// encoding is deterministic so identical fetches produce identical
// files.
//
// Types use json struct tags. fxamacker/cbor falls back to them when
// no cbor tag is present, so the same struct renders in --format json
// output and in the cache file.
package codec
