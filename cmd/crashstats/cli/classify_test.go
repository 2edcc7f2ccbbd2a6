// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bureau-foundation/crashstats/lib/correlations"
	"github.com/bureau-foundation/crashstats/lib/crashapi"
	"github.com/bureau-foundation/crashstats/lib/payload"
	"github.com/bureau-foundation/crashstats/lib/socorro"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"unknown channel", &correlations.UnknownChannelError{Channel: "aurora"}, CategoryValidation},
		{"bad crash id", fmt.Errorf("crash: %w", &socorro.InvalidCrashIDError{CrashID: "x;y"}), CategoryValidation},
		{"404", &crashapi.APIError{StatusCode: 404}, CategoryNotFound},
		{"202", &crashapi.APIError{StatusCode: 202}, CategoryTransient},
		{"429", &crashapi.APIError{StatusCode: 429}, CategoryTransient},
		{"503", &crashapi.APIError{StatusCode: 503}, CategoryTransient},
		{"401", &crashapi.APIError{StatusCode: 401}, CategoryForbidden},
		{"parse", payload.NewParseError("crash ping data", errors.New("unexpected EOF"), []byte("{")), CategoryInternal},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), CategoryTransient},
		{"already categorized", NotFound("gone"), CategoryNotFound},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Classify(test.err)
			var toolError *ToolError
			if !errors.As(err, &toolError) {
				t.Fatalf("Classify(%v) = %T, want *ToolError", test.err, err)
			}
			if toolError.Category != test.want {
				t.Errorf("category = %q, want %q", toolError.Category, test.want)
			}
			if !errors.Is(err, test.err) {
				t.Error("classified error no longer wraps the original")
			}
		})
	}
}

func TestClassify_PassesThroughUnknown(t *testing.T) {
	if Classify(nil) != nil {
		t.Error("Classify(nil) != nil")
	}
	plain := errors.New("plain")
	if Classify(plain) != plain {
		t.Error("unrecognized errors should be returned unchanged")
	}
}

func TestClassify_RateLimitHint(t *testing.T) {
	err := Classify(&crashapi.APIError{StatusCode: 429, Message: crashapi.RateLimitedMessage})
	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Hint == "" {
		t.Errorf("rate limit error has no hint: %v", err)
	}
}
