// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package stackframe holds the symbolicated stack frame shared by crash
// ping stacks and processed crash reports, and the pure functions that
// turn one frame into a display string.
//
// Every output style (compact, JSON, Markdown) calls [Describe] so that
// a frame renders byte-identically regardless of the format chosen.
package stackframe
