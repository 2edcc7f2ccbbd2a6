// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package crashapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/crashstats/lib/clock"
	"github.com/bureau-foundation/crashstats/lib/credential"
	"github.com/bureau-foundation/crashstats/lib/netutil"
)

// Default service roots.
const (
	DefaultSocorroURL      = "https://crash-stats.mozilla.org/api"
	DefaultPingsURL        = "https://crash-pings.mozilla.org"
	DefaultCorrelationsURL = "https://analysis-output.telemetry.mozilla.org/top-signatures-correlations/data"
	DefaultReleasesURL     = "https://api.github.com/repos/bureau-foundation/crashstats/releases/latest"
)

// defaultRetryDelay is the backoff when a retryable response carries
// no Retry-After header.
const defaultRetryDelay = time.Second

// Config holds configuration for creating a Client. Every URL must use
// HTTPS; empty URLs take the defaults above.
type Config struct {
	SocorroURL      string
	PingsURL        string
	CorrelationsURL string
	ReleasesURL     string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Tokens supplies the Socorro API token. Nil means anonymous.
	Tokens credential.Reader

	// UserAgent is sent on every request. Defaults to "crashstats".
	UserAgent string

	// Retries is how many times a 429 or 5xx response is retried.
	Retries int

	// Clock times retry backoff. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client fetches crash data. It is safe for concurrent use.
type Client struct {
	socorroURL      string
	pingsURL        string
	correlationsURL string
	releasesURL     string
	httpClient      *http.Client
	tokens          credential.Reader
	userAgent       string
	retries         int
	clock           clock.Clock
	logger          *slog.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	roots := []struct {
		name     string
		value    *string
		fallback string
	}{
		{"Socorro", &cfg.SocorroURL, DefaultSocorroURL},
		{"pings", &cfg.PingsURL, DefaultPingsURL},
		{"correlations", &cfg.CorrelationsURL, DefaultCorrelationsURL},
		{"releases", &cfg.ReleasesURL, DefaultReleasesURL},
	}
	for _, root := range roots {
		if *root.value == "" {
			*root.value = root.fallback
		}
		*root.value = strings.TrimRight(*root.value, "/")
		if !strings.HasPrefix(*root.value, "https://") {
			return nil, fmt.Errorf("crashapi: %s URL must use HTTPS (got %q)", root.name, *root.value)
		}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "crashstats"
	}
	if cfg.Retries < 0 {
		return nil, fmt.Errorf("crashapi: Retries must not be negative (got %d)", cfg.Retries)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		socorroURL:      cfg.SocorroURL,
		pingsURL:        cfg.PingsURL,
		correlationsURL: cfg.CorrelationsURL,
		releasesURL:     cfg.ReleasesURL,
		httpClient:      httpClient,
		tokens:          cfg.Tokens,
		userAgent:       userAgent,
		retries:         cfg.Retries,
		clock:           clk,
		logger:          logger,
	}, nil
}

// Now returns the client's clock time. Search date windows are
// anchored to it.
func (client *Client) Now() time.Time { return client.clock.Now() }

// request describes one GET.
type request struct {
	url   string
	query url.Values
	auth  bool
}

// get performs the request, retrying 429 and 5xx responses, and
// returns the body and final status code. Non-2xx statuses are not
// errors here; callers classify them.
func (client *Client) get(ctx context.Context, req request) ([]byte, int, error) {
	target := req.url
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	token := ""
	if req.auth {
		token = client.token()
	}

	for attempt := 0; ; attempt++ {
		body, status, header, err := client.once(ctx, target, token)
		if err != nil {
			return nil, 0, err
		}
		retryable := status == http.StatusTooManyRequests || status >= 500
		if !retryable || attempt >= client.retries {
			return body, status, nil
		}

		delay := retryAfter(header)
		client.logger.Info("retrying after upstream error",
			"status", status,
			"url", req.url,
			"delay", delay,
			"attempt", attempt+1,
		)
		select {
		case <-client.clock.After(delay):
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
}

func (client *Client) once(ctx context.Context, target, token string) ([]byte, int, http.Header, error) {
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("crashapi: creating request: %w", err)
	}
	httpRequest.Header.Set("User-Agent", client.userAgent)
	httpRequest.Header.Set("Accept", "application/json")
	if token != "" {
		httpRequest.Header.Set("Auth-Token", token)
	}

	started := client.clock.Now()
	response, err := client.httpClient.Do(httpRequest)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("crashapi: GET %s: %w", redact(target), err)
	}
	defer response.Body.Close()

	body, err := netutil.ReadBody(response.Body)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("crashapi: GET %s: %w", redact(target), err)
	}
	client.logger.Debug("fetched",
		"url", redact(target),
		"status", response.StatusCode,
		"bytes", len(body),
		"elapsed", client.clock.Now().Sub(started),
	)
	return body, response.StatusCode, response.Header, nil
}

// token returns the stored API token, or "" to proceed anonymously.
func (client *Client) token() string {
	if client.tokens == nil {
		return ""
	}
	token, err := client.tokens.Token()
	if err != nil {
		client.logger.Debug("proceeding without API token", "reason", err)
		return ""
	}
	return token
}

// retryAfter reads a Retry-After header in seconds.
func retryAfter(header http.Header) time.Duration {
	if value := header.Get("Retry-After"); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryDelay
}

// redact drops the query string, which may carry search terms, from
// logged URLs.
func redact(target string) string {
	base, _, _ := strings.Cut(target, "?")
	return base
}

func unexpected(status int, target string, body []byte) *APIError {
	return &APIError{StatusCode: status, URL: target, Body: string(body)}
}

// LatestVersion returns the tag of the newest published release.
func (client *Client) LatestVersion(ctx context.Context) (string, error) {
	body, status, err := client.get(ctx, request{url: client.releasesURL})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", unexpected(status, client.releasesURL, body)
	}
	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal(body, &release); err != nil {
		return "", fmt.Errorf("crashapi: decoding release: %w", err)
	}
	if release.TagName == "" {
		return "", fmt.Errorf("crashapi: release has no tag_name")
	}
	return release.TagName, nil
}
