// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import "fmt"

// IndexedStrings is a dictionary-encoded string column: Strings holds
// each distinct value once and Values holds, per row, an index into
// Strings.
type IndexedStrings struct {
	Strings []string `json:"strings"`
	Values  []uint32 `json:"values"`
}

// Resolve returns the string for row. The table must have passed
// Validate; an out-of-range index is a decode defect and is never
// checked here.
func (table *IndexedStrings) Resolve(row int) string {
	return table.Strings[table.Values[row]]
}

// Validate checks that the column has exactly rows entries and that
// every entry indexes into Strings. field names the column in the
// returned *DecodeError.
func (table *IndexedStrings) Validate(field string, rows int) error {
	return validateIndexes(field, table.Values, len(table.Strings), rows)
}

// NullableIndexedStrings is an IndexedStrings whose pool may contain
// null entries. A row pointing at a null entry has no value.
type NullableIndexedStrings struct {
	Strings []*string `json:"strings"`
	Values  []uint32  `json:"values"`
}

// Resolve returns the string for row and true, or "" and false when the
// row's entry is null. Substituting a display placeholder is the
// caller's job.
func (table *NullableIndexedStrings) Resolve(row int) (string, bool) {
	entry := table.Strings[table.Values[row]]
	if entry == nil {
		return "", false
	}
	return *entry, true
}

// Validate checks that the column has exactly rows entries and that
// every entry indexes into Strings.
func (table *NullableIndexedStrings) Validate(field string, rows int) error {
	return validateIndexes(field, table.Values, len(table.Strings), rows)
}

func validateIndexes(field string, values []uint32, poolSize, rows int) error {
	if len(values) != rows {
		return &DecodeError{
			Field:  field,
			Reason: fmt.Sprintf("has %d values, want %d (one per crash id)", len(values), rows),
		}
	}
	for row, index := range values {
		if int(index) >= poolSize {
			return &DecodeError{
				Field:  field,
				Reason: fmt.Sprintf("row %d references string %d but the pool has %d entries", row, index, poolSize),
			}
		}
	}
	return nil
}

// DecodeError reports a structurally invalid payload: a column whose
// length disagrees with the row count, or an index past the end of its
// string pool.
type DecodeError struct {
	// Field is the wire name of the offending column.
	Field string

	// Reason describes the defect.
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("pings: column %q %s", e.Field, e.Reason)
}
