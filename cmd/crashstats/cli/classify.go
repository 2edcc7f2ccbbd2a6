// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/bureau-foundation/crashstats/lib/correlations"
	"github.com/bureau-foundation/crashstats/lib/crashapi"
	"github.com/bureau-foundation/crashstats/lib/payload"
	"github.com/bureau-foundation/crashstats/lib/pings"
	"github.com/bureau-foundation/crashstats/lib/socorro"
)

// Classify wraps err in a [ToolError] whose category follows from the
// errors in its chain. Errors that are already categorized, and errors
// nothing recognizes, are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var toolError *ToolError
	if errors.As(err, &toolError) {
		return err
	}

	var (
		channelError *correlations.UnknownChannelError
		crashIDError *socorro.InvalidCrashIDError
		parseError   *payload.ParseError
		decodeError  *pings.DecodeError
		apiError     *crashapi.APIError
	)
	switch {
	case errors.As(err, &channelError), errors.As(err, &crashIDError):
		return &ToolError{Category: CategoryValidation, Err: err}
	case crashapi.IsNotFound(err):
		return &ToolError{Category: CategoryNotFound, Err: err}
	case crashapi.IsRateLimited(err):
		return &ToolError{Category: CategoryTransient, Err: err,
			Hint: "A token with no permissions raises the rate limit: https://crash-stats.mozilla.org/api/tokens/"}
	case crashapi.IsNotYetAvailable(err), crashapi.IsServerError(err):
		return &ToolError{Category: CategoryTransient, Err: err}
	case errors.As(err, &apiError) &&
		(apiError.StatusCode == http.StatusUnauthorized || apiError.StatusCode == http.StatusForbidden):
		return &ToolError{Category: CategoryForbidden, Err: err,
			Hint: "Check the stored token with 'crashstats auth status'."}
	case errors.As(err, &parseError), errors.As(err, &decodeError):
		return &ToolError{Category: CategoryInternal, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &ToolError{Category: CategoryTransient, Err: err}
	}
	return err
}
