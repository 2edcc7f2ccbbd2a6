// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds and normalizes HTTP response body reads.
//
// Every body is read through a limit of MaxResponseSize so a
// misbehaving server cannot exhaust memory. Correlation data is served
// as gzip files that some CDN paths transfer without a
// Content-Encoding header, so ReadBody recognizes gzip by its magic
// bytes rather than trusting headers.
package netutil

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// MaxResponseSize bounds body reads, after decompression: 256 MB. A
// day of crash pings is tens of megabytes.
const MaxResponseSize int64 = 256 << 20

// gzipMagic is the two-byte gzip member header (RFC 1952).
var gzipMagic = []byte{0x1f, 0x8b}

// ReadResponse reads a body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ReadBody reads a body up to MaxResponseSize bytes, decompressing it
// first if it starts with the gzip magic.
func ReadBody(body io.Reader) ([]byte, error) {
	buffered := bufio.NewReader(body)
	head, err := buffered.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if !bytes.Equal(head, gzipMagic) {
		return ReadResponse(buffered)
	}

	reader, err := gzip.NewReader(buffered)
	if err != nil {
		return nil, fmt.Errorf("opening gzip response body: %w", err)
	}
	defer reader.Close()
	data, err := ReadResponse(reader)
	if err != nil {
		return nil, fmt.Errorf("decompressing gzip response body: %w", err)
	}
	return data, nil
}

// IsGzip reports whether data starts with the gzip magic.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// ErrorBody reads an error response body for a diagnostic message.
// Read errors are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := ReadResponse(body)
	return string(data)
}
