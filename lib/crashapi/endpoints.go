// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crashapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/bureau-foundation/crashstats/lib/correlations"
	"github.com/bureau-foundation/crashstats/lib/socorro"
)

// PingData fetches one UTC day of crash pings in columnar form.
func (client *Client) PingData(ctx context.Context, date string) ([]byte, error) {
	target := client.pingsURL + "/ping_data/" + url.PathEscape(date)
	body, status, err := client.get(ctx, request{url: target})
	if err != nil {
		return nil, err
	}

	switch Classify(status) {
	case StatusOK:
		return body, nil
	case StatusNotYetAvailable:
		return nil, &APIError{StatusCode: status, URL: target, Message: fmt.Sprintf(
			"Crash ping data for %s is not available (HTTP 202). "+
				"Today's data typically appears around 04:00 UTC. "+
				"Older dates may also be unavailable.", date)}
	case StatusNotFound:
		return nil, &APIError{StatusCode: status, URL: target, Message: fmt.Sprintf(
			"No crash ping data for date %s. Data is available from September 2024 onwards.", date)}
	default:
		return nil, unexpected(status, target, body)
	}
}

// PingStack fetches the symbolicated stack of one crash ping.
func (client *Client) PingStack(ctx context.Context, date, crashID string) ([]byte, error) {
	target := client.pingsURL + "/stack/" + url.PathEscape(date) + "/" + url.PathEscape(crashID)
	body, status, err := client.get(ctx, request{url: target})
	if err != nil {
		return nil, err
	}

	switch Classify(status) {
	case StatusOK:
		return body, nil
	case StatusNotFound:
		return nil, &APIError{StatusCode: status, URL: target, Message: fmt.Sprintf(
			"Stack not found for crash ping %s on %s", crashID, date)}
	default:
		return nil, unexpected(status, target, body)
	}
}

// CorrelationTotals fetches the per-channel crash totals that
// correlation percentages are computed against.
func (client *Client) CorrelationTotals(ctx context.Context) ([]byte, error) {
	target := client.correlationsURL + "/all.json.gz"
	body, status, err := client.get(ctx, request{url: target})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, unexpected(status, target, body)
	}
	return body, nil
}

// SignatureCorrelations fetches the correlation report for one
// signature on one channel. The channel must already be validated.
func (client *Client) SignatureCorrelations(ctx context.Context, channel, signature string) ([]byte, error) {
	target := client.correlationsURL + "/" + url.PathEscape(channel) + "/" + correlations.SignatureHash(signature) + ".json.gz"
	body, status, err := client.get(ctx, request{url: target})
	if err != nil {
		return nil, err
	}

	switch Classify(status) {
	case StatusOK:
		return body, nil
	case StatusNotFound:
		return nil, &APIError{StatusCode: status, URL: target, Message: fmt.Sprintf(
			"No correlation data for signature %q on channel %s. "+
				"Correlations are only available for the top ~200 signatures per channel.",
			signature, channel)}
	default:
		return nil, unexpected(status, target, body)
	}
}

// ProcessedCrash fetches a processed crash report. useAuth attaches the
// stored API token, which unlocks protected fields and a higher rate
// limit.
func (client *Client) ProcessedCrash(ctx context.Context, crashID string, useAuth bool) ([]byte, error) {
	if err := socorro.ValidateCrashID(crashID); err != nil {
		return nil, err
	}

	target := client.socorroURL + "/ProcessedCrash/"
	body, status, err := client.get(ctx, request{
		url:   target,
		query: url.Values{"crash_id": {crashID}},
		auth:  useAuth,
	})
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusOK:
		return body, nil
	case status == http.StatusNotFound:
		return nil, &APIError{StatusCode: status, URL: target, Message: "Crash not found: " + crashID}
	case status == http.StatusTooManyRequests:
		return nil, &APIError{StatusCode: status, URL: target, Message: RateLimitedMessage}
	default:
		return nil, unexpected(status, target, body)
	}
}

// Search runs a SuperSearch query. The date window is anchored to the
// client's clock.
func (client *Client) Search(ctx context.Context, params socorro.SearchParams) ([]byte, error) {
	target := client.socorroURL + "/SuperSearch/"
	body, status, err := client.get(ctx, request{
		url:   target,
		query: params.Query(client.clock.Now()),
		auth:  true,
	})
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		return body, nil
	case http.StatusTooManyRequests:
		return nil, &APIError{StatusCode: status, URL: target, Message: RateLimitedMessage}
	default:
		return nil, unexpected(status, target, body)
	}
}
