// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/crashstats/lib/payload"
)

// Facet names accepted by [RecordSet.FacetValue].
const (
	FacetSignature = "signature"
	FacetChannel   = "channel"
	FacetOS        = "os"
	FacetProcess   = "process"
	FacetVersion   = "version"
	FacetArch      = "arch"
	FacetOSVersion = "osversion"
	FacetBuildID   = "build_id"
	FacetIPCActor  = "ipc_actor"
	FacetReason    = "reason"
	FacetType      = "type"
)

// Facets lists every facet name in the order shown to users.
var Facets = []string{
	FacetSignature,
	FacetChannel,
	FacetOS,
	FacetProcess,
	FacetVersion,
	FacetArch,
	FacetOSVersion,
	FacetBuildID,
	FacetIPCActor,
	FacetReason,
	FacetType,
}

// ValidFacet reports whether name is one of [Facets].
func ValidFacet(name string) bool {
	for _, facet := range Facets {
		if facet == name {
			return true
		}
	}
	return false
}

const (
	// UnknownFacet is the bucket label produced for a facet name
	// outside [Facets].
	UnknownFacet = "(unknown facet)"

	// None is the display value for a null entry in a nullable column.
	None = "(none)"
)

// Columns is the wire shape of the daily crash ping payload. It is
// exported so tests and tools can build payloads; production code goes
// through [Decode] and [New], which validate it.
type Columns struct {
	Channel      IndexedStrings         `json:"channel"`
	Process      IndexedStrings         `json:"process"`
	IPCActor     NullableIndexedStrings `json:"ipc_actor"`
	ClientID     IndexedStrings         `json:"clientid"`
	CrashID      []string               `json:"crashid"`
	Version      IndexedStrings         `json:"version"`
	OS           IndexedStrings         `json:"os"`
	OSVersion    IndexedStrings         `json:"osversion"`
	Arch         IndexedStrings         `json:"arch"`
	Date         IndexedStrings         `json:"date"`
	Reason       NullableIndexedStrings `json:"reason"`
	Type         NullableIndexedStrings `json:"type"`
	MinidumpHash []*string              `json:"minidump_sha256_hash"`
	StartupCrash []*bool                `json:"startup_crash"`
	BuildID      IndexedStrings         `json:"build_id"`
	Signature    IndexedStrings         `json:"signature"`
}

// RecordSet is a validated, read-only view over one day of crash pings.
// Rows are addressed by index in [0, RowCount()).
type RecordSet struct {
	columns Columns
	rows    int
}

// requiredKeys lists every column of the payload, and the two members
// of each dictionary-encoded column. A response without them is an
// error body or a different document, not an empty day.
var requiredKeys = func() []string {
	keys := []string{"crashid", "minidump_sha256_hash", "startup_crash"}
	for _, column := range []string{
		"channel", "process", "ipc_actor", "clientid", "version", "os",
		"osversion", "arch", "date", "reason", "type", "build_id", "signature",
	} {
		keys = append(keys, column+".strings", column+".values")
	}
	return keys
}()

// Decode parses a crash ping payload and validates it. Malformed JSON
// and missing columns yield a *payload.ParseError; structural defects
// yield a *DecodeError naming the column.
func Decode(data []byte) (*RecordSet, error) {
	var columns Columns
	if err := payload.Unmarshal("crash ping data", data, &columns, requiredKeys...); err != nil {
		return nil, err
	}
	return New(columns)
}

// New validates columns and wraps them in a RecordSet. The row count is
// the length of the crash id column; every other column must match it.
// The caller must not modify columns afterwards.
func New(columns Columns) (*RecordSet, error) {
	rows := len(columns.CrashID)

	indexed := []struct {
		field string
		table *IndexedStrings
	}{
		{"channel", &columns.Channel},
		{"process", &columns.Process},
		{"clientid", &columns.ClientID},
		{"version", &columns.Version},
		{"os", &columns.OS},
		{"osversion", &columns.OSVersion},
		{"arch", &columns.Arch},
		{"date", &columns.Date},
		{"build_id", &columns.BuildID},
		{"signature", &columns.Signature},
	}
	for _, column := range indexed {
		if err := column.table.Validate(column.field, rows); err != nil {
			return nil, err
		}
	}

	nullable := []struct {
		field string
		table *NullableIndexedStrings
	}{
		{"ipc_actor", &columns.IPCActor},
		{"reason", &columns.Reason},
		{"type", &columns.Type},
	}
	for _, column := range nullable {
		if err := column.table.Validate(column.field, rows); err != nil {
			return nil, err
		}
	}

	if len(columns.MinidumpHash) != rows {
		return nil, &DecodeError{
			Field:  "minidump_sha256_hash",
			Reason: fmt.Sprintf("has %d entries, want %d (one per crash id)", len(columns.MinidumpHash), rows),
		}
	}
	if len(columns.StartupCrash) != rows {
		return nil, &DecodeError{
			Field:  "startup_crash",
			Reason: fmt.Sprintf("has %d entries, want %d (one per crash id)", len(columns.StartupCrash), rows),
		}
	}

	return &RecordSet{columns: columns, rows: rows}, nil
}

// Encode serializes the record set back to the wire shape accepted by
// Decode.
func (records *RecordSet) Encode() ([]byte, error) {
	return json.Marshal(records.columns)
}

// RowCount returns the number of pings.
func (records *RecordSet) RowCount() int { return records.rows }

// Categorical field accessors. Rows must be in [0, RowCount()).
func (records *RecordSet) Channel(row int) string { return records.columns.Channel.Resolve(row) }
func (records *RecordSet) Process(row int) string { return records.columns.Process.Resolve(row) }
func (records *RecordSet) ClientID(row int) string { return records.columns.ClientID.Resolve(row) }
func (records *RecordSet) Version(row int) string { return records.columns.Version.Resolve(row) }
func (records *RecordSet) OS(row int) string { return records.columns.OS.Resolve(row) }
func (records *RecordSet) OSVersion(row int) string { return records.columns.OSVersion.Resolve(row) }
func (records *RecordSet) Arch(row int) string { return records.columns.Arch.Resolve(row) }
func (records *RecordSet) Date(row int) string { return records.columns.Date.Resolve(row) }
func (records *RecordSet) BuildID(row int) string { return records.columns.BuildID.Resolve(row) }
func (records *RecordSet) Signature(row int) string { return records.columns.Signature.Resolve(row) }

// CrashID returns the ping's crash id, the key for its stack.
func (records *RecordSet) CrashID(row int) string { return records.columns.CrashID[row] }

// IPCActor returns the IPC actor or [None].
func (records *RecordSet) IPCActor(row int) string {
	return orNone(records.columns.IPCActor.Resolve(row))
}

// Reason returns the crash reason or [None].
func (records *RecordSet) Reason(row int) string {
	return orNone(records.columns.Reason.Resolve(row))
}

// Type returns the crash type or [None].
func (records *RecordSet) Type(row int) string {
	return orNone(records.columns.Type.Resolve(row))
}

// MinidumpHash returns the minidump's SHA-256, if one was submitted.
func (records *RecordSet) MinidumpHash(row int) (string, bool) {
	hash := records.columns.MinidumpHash[row]
	if hash == nil {
		return "", false
	}
	return *hash, true
}

// StartupCrash reports whether the crash happened during startup. The
// second result is false when the ping did not record it.
func (records *RecordSet) StartupCrash(row int) (bool, bool) {
	startup := records.columns.StartupCrash[row]
	if startup == nil {
		return false, false
	}
	return *startup, true
}

// FacetValue returns the grouping key of row for the named facet, or
// [UnknownFacet] when the name is not one of [Facets].
func (records *RecordSet) FacetValue(row int, facet string) string {
	switch facet {
	case FacetSignature:
		return records.Signature(row)
	case FacetChannel:
		return records.Channel(row)
	case FacetOS:
		return records.OS(row)
	case FacetProcess:
		return records.Process(row)
	case FacetVersion:
		return records.Version(row)
	case FacetArch:
		return records.Arch(row)
	case FacetOSVersion:
		return records.OSVersion(row)
	case FacetBuildID:
		return records.BuildID(row)
	case FacetIPCActor:
		return records.IPCActor(row)
	case FacetReason:
		return records.Reason(row)
	case FacetType:
		return records.Type(row)
	default:
		return UnknownFacet
	}
}

func orNone(value string, ok bool) string {
	if !ok {
		return None
	}
	return value
}
