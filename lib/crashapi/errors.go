// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crashapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bureau-foundation/crashstats/lib/payload"
)

// RateLimitedMessage is shown when Socorro answers 429. Anonymous
// requests share a low limit; a token without permissions lifts it.
const RateLimitedMessage = "Rate limited. Ask a human to run 'crashstats auth login' to store an API token that has no permissions attached to it."

// Status classifies an upstream HTTP status.
type Status int

const (
	StatusOK Status = iota

	// StatusNotYetAvailable is the ping server's 202: the day's data
	// has not been published yet.
	StatusNotYetAvailable

	StatusNotFound
	StatusOther
)

// Classify maps an HTTP status code to a Status.
func Classify(code int) Status {
	switch code {
	case http.StatusOK:
		return StatusOK
	case http.StatusAccepted:
		return StatusNotYetAvailable
	case http.StatusNotFound:
		return StatusNotFound
	default:
		return StatusOther
	}
}

// APIError is a non-success response. Message, when set, is the
// user-facing explanation; otherwise Error reports the status and a
// body excerpt.
type APIError struct {
	StatusCode int
	URL        string
	Message    string
	Body       string
}

func (err *APIError) Error() string {
	if err.Message != "" {
		return err.Message
	}
	excerpt := payload.Excerpt([]byte(err.Body))
	if excerpt == "" {
		return fmt.Sprintf("HTTP %d from %s", err.StatusCode, err.URL)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", err.StatusCode, err.URL, excerpt)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && Classify(apiError.StatusCode) == StatusNotFound
}

// IsNotYetAvailable reports whether err is a 202 response from the
// ping server.
func IsNotYetAvailable(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && Classify(apiError.StatusCode) == StatusNotYetAvailable
}

// IsRateLimited reports whether err is a 429 response.
func IsRateLimited(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusTooManyRequests
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode >= 500
}
