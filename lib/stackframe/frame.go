// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stackframe

import (
	"encoding/json"
	"strconv"
)

// Frame is one stack frame as reported by the crash ping stack endpoint
// and by processed crash reports. Every field except Frame is optional
// on the wire and decodes to nil when absent or null.
type Frame struct {
	// Frame is the frame's position in the stack, 0 for the
	// innermost frame.
	Frame uint32 `json:"frame"`

	Function       *string `json:"function,omitempty"`
	FunctionOffset *string `json:"function_offset,omitempty"`
	File           *string `json:"file,omitempty"`
	Line           *uint32 `json:"line,omitempty"`
	Module         *string `json:"module,omitempty"`
	ModuleOffset   *string `json:"module_offset,omitempty"`
	Offset         *string `json:"offset,omitempty"`

	// Omitted is passed through uninterpreted. The stack walker uses
	// it to mark ranges of frames dropped from long stacks.
	Omitted json.RawMessage `json:"omitted,omitempty"`

	// Error describes a symbolication failure for this frame.
	Error *string `json:"error,omitempty"`
}

// FunctionLabel returns the symbolicated function name. Unsymbolicated
// frames fall back to "offset (module)", then the bare offset, and
// finally "???" when neither is known.
func FunctionLabel(frame Frame) string {
	if frame.Function != nil {
		return *frame.Function
	}
	if frame.Offset == nil {
		return "???"
	}
	if frame.Module != nil {
		return *frame.Offset + " (" + *frame.Module + ")"
	}
	return *frame.Offset
}

// LocationSuffix returns " @ file:line", " @ file" when the line is
// unknown, or the empty string when the frame has no source file.
func LocationSuffix(frame Frame) string {
	if frame.File == nil {
		return ""
	}
	if frame.Line == nil {
		return " @ " + *frame.File
	}
	return " @ " + *frame.File + ":" + strconv.FormatUint(uint64(*frame.Line), 10)
}

// Describe is FunctionLabel followed by LocationSuffix.
func Describe(frame Frame) string {
	return FunctionLabel(frame) + LocationSuffix(frame)
}
