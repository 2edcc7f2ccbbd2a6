// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"strings"
)

// Format selects how a result is written to stdout.
type Format int

const (
	// Compact is dense plain text meant to be cheap to read, for
	// humans at a terminal and for agents paying per token.
	Compact Format = iota + 1

	// JSON is pretty-printed JSON.
	JSON

	// Markdown is a Markdown document with headings and tables.
	Markdown
)

// Formats lists the accepted format names in display order.
var Formats = []string{"compact", "json", "markdown"}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "compact":
		return Compact, nil
	case "json":
		return JSON, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return 0, fmt.Errorf("unknown format %q (valid: %s)", name, strings.Join(Formats, ", "))
}

// String returns the format's name, or "" for the zero value.
func (f Format) String() string {
	switch f {
	case Compact:
		return "compact"
	case JSON:
		return "json"
	case Markdown:
		return "markdown"
	}
	return ""
}

// IsSet reports whether f is one of the defined formats.
func (f Format) IsSet() bool {
	return f >= Compact && f <= Markdown
}

// Set implements pflag.Value.
func (f *Format) Set(value string) error {
	parsed, err := ParseFormat(value)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Type implements pflag.Value.
func (f *Format) Type() string { return "format" }

func unknownFormat(f Format) error {
	return fmt.Errorf("render: unsupported format %d", int(f))
}
