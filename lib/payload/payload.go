// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package payload decodes JSON payloads fetched from the crash
// reporting services. Decode failures carry a short excerpt of the
// offending bytes so a truncated or HTML error page is recognizable in
// the error message without dumping megabytes of data to the terminal.
package payload

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxExcerpt is the maximum number of payload bytes quoted in a
// ParseError.
const MaxExcerpt = 200

// ParseError reports a payload that is not valid JSON or does not have
// the expected shape.
type ParseError struct {
	// What names the payload being decoded ("crash ping data",
	// "correlation totals", ...).
	What string

	// Err is the underlying decoder error.
	Err error

	// Excerpt is at most MaxExcerpt bytes from the start of the
	// payload, trimmed back to a UTF-8 boundary.
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v: %s", e.What, e.Err, e.Excerpt)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Unmarshal decodes data into v, wrapping any failure in a *ParseError.
// required lists keys that must be present and non-null, as accepted by
// [RequireKeys]; encoding/json would otherwise leave them zero.
func Unmarshal(what string, data []byte, v any, required ...string) error {
	if len(required) > 0 {
		if err := RequireKeys(data, required...); err != nil {
			return NewParseError(what, err, data)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewParseError(what, err, data)
	}
	return nil
}

// MissingKeyError reports a required key that is absent or null. Key
// is the dotted path from the payload root.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required key %q", e.Key)
}

// RequireKeys checks that every path names a non-null value in the JSON
// object data. A path is a dotted list of object keys ("channel.values").
// Each object on the way is decoded once, shallowly.
func RequireKeys(data []byte, paths ...string) error {
	objects := make(map[string]map[string]json.RawMessage)
	for _, path := range paths {
		if err := requirePath(data, path, objects); err != nil {
			return err
		}
	}
	return nil
}

func requirePath(data []byte, path string, objects map[string]map[string]json.RawMessage) error {
	parent, raw := "", json.RawMessage(data)
	for key := range strings.SplitSeq(path, ".") {
		object, seen := objects[parent]
		if !seen {
			if err := json.Unmarshal(raw, &object); err != nil {
				if parent == "" {
					return err
				}
				return fmt.Errorf("%s: %w", parent, err)
			}
			objects[parent] = object
		}

		name := key
		if parent != "" {
			name = parent + "." + key
		}
		value, ok := object[key]
		if !ok || string(value) == "null" {
			return &MissingKeyError{Key: name}
		}
		parent, raw = name, value
	}
	return nil
}

// NewParseError builds a ParseError with an excerpt of data.
func NewParseError(what string, err error, data []byte) *ParseError {
	return &ParseError{What: what, Err: err, Excerpt: Excerpt(data)}
}

// Excerpt returns the first MaxExcerpt bytes of data as a string. A
// multi-byte character straddling the cut is dropped rather than split.
func Excerpt(data []byte) string {
	if len(data) <= MaxExcerpt {
		return strings.ToValidUTF8(string(data), "")
	}
	cut := MaxExcerpt
	for cut > 0 && !utf8.RuneStart(data[cut]) {
		cut--
	}
	return strings.ToValidUTF8(string(data[:cut]), "")
}
