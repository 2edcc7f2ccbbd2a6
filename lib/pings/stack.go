// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package pings

import (
	"encoding/json"

	"github.com/bureau-foundation/crashstats/lib/payload"
	"github.com/bureau-foundation/crashstats/lib/stackframe"
)

// StackResponse is the payload of the per-ping stack endpoint.
type StackResponse struct {
	// Stack is nil when the ping carried no symbolicated stack.
	Stack []stackframe.Frame `json:"stack"`

	// JavaException is the raw exception object for Java crashes on
	// Android. Its shape is not interpreted.
	JavaException json.RawMessage `json:"java_exception"`
}

// DecodeStack parses a stack payload.
func DecodeStack(data []byte) (*StackResponse, error) {
	var response StackResponse
	if err := payload.Unmarshal("crash ping stack", data, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// StackSummary is a single ping's stack prepared for rendering.
type StackSummary struct {
	CrashID       string             `json:"crash_id"`
	Date          string             `json:"date"`
	Frames        []stackframe.Frame `json:"frames"`
	JavaException json.RawMessage    `json:"java_exception,omitempty"`
}

// Summarize pairs the response with the ping it belongs to. A missing
// stack becomes an empty frame list and a JSON null exception is
// dropped.
func (response *StackResponse) Summarize(crashID, date string) *StackSummary {
	frames := response.Stack
	if frames == nil {
		frames = []stackframe.Frame{}
	}
	summary := &StackSummary{CrashID: crashID, Date: date, Frames: frames}
	if len(response.JavaException) > 0 && string(response.JavaException) != "null" {
		summary.JavaException = response.JavaException
	}
	return summary
}
