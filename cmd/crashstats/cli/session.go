// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
	"github.com/bureau-foundation/crashstats/lib/cache"
	"github.com/bureau-foundation/crashstats/lib/clock"
	"github.com/bureau-foundation/crashstats/lib/config"
	"github.com/bureau-foundation/crashstats/lib/crashapi"
	"github.com/bureau-foundation/crashstats/lib/credential"
)

// Session holds the flags every crashstats command shares (--config
// and --format) and builds the collaborators a command needs from the
// resolved configuration. Embed it in a params struct:
//
//	type pingsParams struct {
//	    cli.Session
//	    Date string `flag:"date" desc:"..."`
//	}
//
// The exported override fields have no flags. Tests set them to point
// a command at an httptest server or an in-memory credential.
type Session struct {
	ConfigPath string
	Format     render.Format

	// HTTPClient replaces the client built from the http config section.
	HTTPClient *http.Client

	// Clock replaces the real clock for date defaults and retry backoff.
	Clock clock.Clock

	// Tokens replaces the keyring and token-file chain.
	Tokens credential.Reader

	// Keyring replaces the system keychain for the auth commands.
	Keyring credential.Store

	// CacheStore replaces the configured response cache.
	CacheStore cache.Store

	loaded *config.Config
}

// AddFlags registers --config and --format.
func (s *Session) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&s.ConfigPath, "config", "",
		"config file (YAML, or JSON with comments for .json/.jsonc); defaults to $"+config.EnvironmentVariable)
	flagSet.Var(&s.Format, "format",
		"output format: "+strings.Join(render.Formats, ", ")+" (default from config, else compact)")
}

// Config loads and validates the configuration once.
func (s *Session) Config() (*config.Config, error) {
	if s.loaded != nil {
		return s.loaded, nil
	}
	loaded, err := config.Load(s.ConfigPath)
	if err != nil {
		return nil, Validation("%w", err)
	}
	if err := loaded.Validate(); err != nil {
		return nil, Validation("invalid configuration:\n%w", err)
	}
	s.loaded = loaded
	return loaded, nil
}

// OutputFormat returns --format, falling back to output.format from
// the configuration.
func (s *Session) OutputFormat() (render.Format, error) {
	if s.Format.IsSet() {
		return s.Format, nil
	}
	cfg, err := s.Config()
	if err != nil {
		return 0, err
	}
	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return 0, Validation("output.format: %w", err)
	}
	return format, nil
}

// TimeSource returns the session clock, defaulting to the real clock.
func (s *Session) TimeSource() clock.Clock {
	if s.Clock == nil {
		return clock.Real()
	}
	return s.Clock
}

// KeyringStore returns the credential store used by the auth commands.
func (s *Session) KeyringStore() credential.Store {
	if s.Keyring != nil {
		return s.Keyring
	}
	return credential.NewKeyring()
}

// TokenFile returns the token-file fallback from the configuration.
func (s *Session) TokenFile() (*credential.File, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	return &credential.File{Path: cfg.Auth.TokenPath}, nil
}

// Credentials returns the token sources in lookup order: the keychain
// when enabled, then the token file.
func (s *Session) Credentials() (credential.Reader, error) {
	if s.Tokens != nil {
		return s.Tokens, nil
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	var chain credential.Chain
	if cfg.Auth.Keyring {
		chain = append(chain, s.KeyringStore())
	}
	chain = append(chain, &credential.File{Path: cfg.Auth.TokenPath})
	return chain, nil
}

// Client builds the API client from the endpoints and http sections.
func (s *Session) Client(logger *slog.Logger) (*crashapi.Client, error) {
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	tokens, err := s.Credentials()
	if err != nil {
		return nil, err
	}

	httpClient := s.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout()}
	}

	client, err := crashapi.NewClient(crashapi.Config{
		SocorroURL:      cfg.Endpoints.Socorro,
		PingsURL:        cfg.Endpoints.Pings,
		CorrelationsURL: cfg.Endpoints.Correlations,
		ReleasesURL:     cfg.Endpoints.Releases,
		HTTPClient:      httpClient,
		Tokens:          tokens,
		UserAgent:       cfg.HTTP.UserAgent,
		Retries:         cfg.HTTP.Retries,
		Clock:           s.TimeSource(),
		Logger:          logger,
	})
	if err != nil {
		return nil, Validation("%w", err)
	}
	return client, nil
}

// Cache opens the configured response cache. The caller closes it.
func (s *Session) Cache(logger *slog.Logger) (cache.Store, error) {
	if s.CacheStore != nil {
		return s.CacheStore, nil
	}
	cfg, err := s.Config()
	if err != nil {
		return nil, err
	}
	compression, err := cache.ParseCompression(cfg.Cache.Compression)
	if err != nil {
		return nil, Validation("cache.compression: %w", err)
	}
	store, err := cache.Open(cache.Config{
		Backend:     cfg.Cache.Backend,
		Dir:         cfg.Cache.Dir,
		Compression: compression,
		Clock:       s.TimeSource(),
		Logger:      logger,
	})
	if err != nil {
		return nil, Internal("opening cache: %w", err)
	}
	return store, nil
}

// StartVersionCheck begins the background release lookup when
// version_check.enabled is set. Call Warn on the result after the
// command's output is written.
func (s *Session) StartVersionCheck(ctx context.Context, logger *slog.Logger) *VersionCheck {
	cfg, err := s.Config()
	if err != nil || !cfg.VersionCheck.Enabled {
		return StartVersionCheck(ctx, nil, logger)
	}
	client, err := s.Client(logger)
	if err != nil {
		return StartVersionCheck(ctx, nil, logger)
	}
	return StartVersionCheck(ctx, client, logger)
}
