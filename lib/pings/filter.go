// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
)

// Filter is a conjunction of optional field constraints. An empty
// field means no constraint.
//
// Channel, OS, Process and Arch match case-insensitively. Version
// matches exactly. Signature matches exactly unless it starts with "~",
// in which case the remainder is a case-insensitive substring.
type Filter struct {
	Channel   string `json:"channel,omitempty"`
	OS        string `json:"os,omitempty"`
	Process   string `json:"process,omitempty"`
	Version   string `json:"version,omitempty"`
	Signature string `json:"signature,omitempty"`
	Arch      string `json:"arch,omitempty"`
}

// IsEmpty reports whether the filter has no constraints.
func (filter Filter) IsEmpty() bool {
	return filter == Filter{}
}

// Matches reports whether row satisfies every constraint in filter.
// Constraints are checked in a fixed order (channel, os, process,
// version, signature, arch) and the first mismatch returns false.
func (records *RecordSet) Matches(row int, filter Filter) bool {
	if filter.Channel != "" && !strings.EqualFold(records.Channel(row), filter.Channel) {
		return false
	}
	if filter.OS != "" && !strings.EqualFold(records.OS(row), filter.OS) {
		return false
	}
	if filter.Process != "" && !strings.EqualFold(records.Process(row), filter.Process) {
		return false
	}
	if filter.Version != "" && records.Version(row) != filter.Version {
		return false
	}
	if filter.Signature != "" && !matchSignature(records.Signature(row), filter.Signature) {
		return false
	}
	if filter.Arch != "" && !strings.EqualFold(records.Arch(row), filter.Arch) {
		return false
	}
	return true
}

// matchSignature applies the "~" contains convention shared with the
// crash search filters.
func matchSignature(signature, pattern string) bool {
	if needle, contains := strings.CutPrefix(pattern, "~"); contains {
		return strings.Contains(strings.ToLower(signature), strings.ToLower(needle))
	}
	return signature == pattern
}

// Select returns the set of rows matching filter.
func (records *RecordSet) Select(filter Filter) *roaring.Bitmap {
	selected := roaring.New()
	if filter.IsEmpty() {
		selected.AddRange(0, uint64(records.rows))
		return selected
	}
	for row := range records.rows {
		if records.Matches(row, filter) {
			selected.Add(uint32(row))
		}
	}
	return selected
}
