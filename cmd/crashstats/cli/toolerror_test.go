// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestToolError_ErrorWithoutHint(t *testing.T) {
	err := Validation("unknown facet %q", "colour")
	if err.Error() != `unknown facet "colour"` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestToolError_ErrorWithHint(t *testing.T) {
	err := NotFound("no data").WithHint("Try an earlier date.")
	want := "no data\n\nTry an earlier date."
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestToolError_UnwrapAndCategoryOf(t *testing.T) {
	inner := errors.New("connection reset")
	wrapped := fmt.Errorf("fetching pings: %w", Transient("upstream: %w", inner))

	if !errors.Is(wrapped, inner) {
		t.Error("errors.Is should reach the inner error through ToolError")
	}
	if got := CategoryOf(wrapped); got != CategoryTransient {
		t.Errorf("CategoryOf = %q, want transient", got)
	}
	if got := CategoryOf(errors.New("plain")); got != CategoryInternal {
		t.Errorf("CategoryOf(plain) = %q, want internal", got)
	}
}

func TestToolError_StatusCode(t *testing.T) {
	tests := []struct {
		err  *ToolError
		want int
	}{
		{Validation("x"), 2},
		{NotFound("x"), 3},
		{Forbidden("x"), 4},
		{Transient("x"), 5},
		{Internal("x"), 1},
		{&ToolError{Category: "other", Err: errors.New("x")}, 1},
	}
	for _, test := range tests {
		if got := test.err.StatusCode(); got != test.want {
			t.Errorf("%s: StatusCode() = %d, want %d", test.err.Category, got, test.want)
		}
	}
}

func TestExitError(t *testing.T) {
	var err error = &ExitError{Code: 3}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatal("ExitError does not expose ExitCode")
	}
	if coder.ExitCode() != 3 || err.Error() != "exit code 3" {
		t.Errorf("ExitCode() = %d, Error() = %q", coder.ExitCode(), err.Error())
	}
}
