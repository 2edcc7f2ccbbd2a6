// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// ToolAnnotations describes behavioral properties of a command.
// "crashstats tools" publishes them so wrappers that expose commands
// as agent tools use these to decide which commands are safe to call
// freely.
//
// All fields are pointers. A nil field means "unspecified".
type ToolAnnotations struct {
	// ReadOnly is true when the command only reads state.
	ReadOnly *bool `json:"readOnlyHint,omitempty"`

	// Destructive is true when the command may irreversibly remove data.
	Destructive *bool `json:"destructiveHint,omitempty"`

	// Idempotent is true when repeated calls with identical arguments
	// produce the same result.
	Idempotent *bool `json:"idempotentHint,omitempty"`

	// OpenWorld is true when the command talks to services beyond the
	// local machine. Every query command is open-world.
	OpenWorld *bool `json:"openWorldHint,omitempty"`
}

// ReadOnly returns annotations for commands that query remote crash
// data without modifying anything beyond the local response cache.
func ReadOnly() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(true),
		Destructive: boolPtr(false),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(true),
	}
}

// LocalReadOnly returns annotations for commands that only inspect
// local state: cache list, auth status, version.
func LocalReadOnly() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(true),
		Destructive: boolPtr(false),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(false),
	}
}

// Idempotent returns annotations for commands that modify local state
// but converge when repeated: auth login.
func Idempotent() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(false),
		Destructive: boolPtr(false),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(false),
	}
}

// Destructive returns annotations for commands that remove local
// state: auth logout, cache clear.
func Destructive() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(false),
		Destructive: boolPtr(true),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(false),
	}
}

func boolPtr(value bool) *bool {
	return &value
}
