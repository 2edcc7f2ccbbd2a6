// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/crashstats/lib/crashapi"
)

// EnvironmentVariable names the config file when --config is not given.
const EnvironmentVariable = "CRASHSTATS_CONFIG"

// Cache backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Backends lists the accepted cache.backend values.
var Backends = []string{BackendFile, BackendSQLite, BackendNone}

// Compressions lists the accepted cache.compression values.
var Compressions = []string{"none", "lz4", "zstd"}

// Formats lists the accepted output.format values.
var Formats = []string{"compact", "json", "markdown"}

// Config is the crashstats configuration.
type Config struct {
	Endpoints    EndpointsConfig    `yaml:"endpoints" json:"endpoints"`
	HTTP         HTTPConfig         `yaml:"http" json:"http"`
	Cache        CacheConfig        `yaml:"cache" json:"cache"`
	Auth         AuthConfig         `yaml:"auth" json:"auth"`
	Output       OutputConfig       `yaml:"output" json:"output"`
	VersionCheck VersionCheckConfig `yaml:"version_check" json:"version_check"`
	Serve        ServeConfig        `yaml:"serve" json:"serve"`
}

// EndpointsConfig holds upstream base URLs. All must be HTTPS.
type EndpointsConfig struct {
	// Socorro is the crash-stats API root, e.g.
	// https://crash-stats.mozilla.org/api.
	Socorro string `yaml:"socorro" json:"socorro"`

	// Pings serves /ping_data/{date} and /stack/{date}/{id}.
	Pings string `yaml:"pings" json:"pings"`

	// Correlations serves all.json.gz and {channel}/{sha1}.json.gz.
	Correlations string `yaml:"correlations" json:"correlations"`

	// Releases returns the latest release as {"tag_name": "vX.Y.Z"}.
	Releases string `yaml:"releases" json:"releases"`
}

// HTTPConfig tunes the API client.
type HTTPConfig struct {
	// Timeout is a Go duration string. Default: 60s.
	Timeout string `yaml:"timeout" json:"timeout"`

	UserAgent string `yaml:"user_agent" json:"user_agent"`

	// Retries is the number of retries after a 429 or 5xx.
	// Default: 1.
	Retries int `yaml:"retries" json:"retries"`
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend     string `yaml:"backend" json:"backend"`
	Dir         string `yaml:"dir" json:"dir"`
	Compression string `yaml:"compression" json:"compression"`
}

// AuthConfig locates the Socorro API token.
type AuthConfig struct {
	// Keyring enables the system keychain. Disable on headless hosts
	// without a secret service.
	Keyring bool `yaml:"keyring" json:"keyring"`

	// TokenPath is a file holding the token, read when the keychain
	// has none. Default: ${SOCORRO_API_TOKEN_PATH}.
	TokenPath string `yaml:"token_path" json:"token_path"`
}

// OutputConfig sets output defaults.
type OutputConfig struct {
	Format string `yaml:"format" json:"format"`
}

// VersionCheckConfig controls the update notice.
type VersionCheckConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Listen string `yaml:"listen" json:"listen"`
}

// Default returns the configuration used when no file is given. Files
// are merged over it, so a file only needs the fields it changes.
func Default() *Config {
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		cacheRoot = filepath.Join(os.TempDir(), "cache")
	}

	cfg := &Config{
		Endpoints: EndpointsConfig{
			Socorro:      crashapi.DefaultSocorroURL,
			Pings:        crashapi.DefaultPingsURL,
			Correlations: crashapi.DefaultCorrelationsURL,
			Releases:     crashapi.DefaultReleasesURL,
		},
		HTTP: HTTPConfig{
			Timeout:   "60s",
			UserAgent: "crashstats",
			Retries:   1,
		},
		Cache: CacheConfig{
			Backend:     BackendFile,
			Dir:         filepath.Join(cacheRoot, "crashstats"),
			Compression: "zstd",
		},
		Auth: AuthConfig{
			Keyring:   true,
			TokenPath: "${SOCORRO_API_TOKEN_PATH}",
		},
		Output:       OutputConfig{Format: "compact"},
		VersionCheck: VersionCheckConfig{Enabled: true},
		Serve:        ServeConfig{Listen: "127.0.0.1:8089"},
	}
	cfg.expandVariables()
	return cfg
}

// Load resolves the configuration file: flagPath if set, else
// $CRASHSTATS_CONFIG, else no file. Without a file Default() is used.
func Load(flagPath string) (*Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile merges the file at path over Default(). Files ending in
// .json or .jsonc are parsed as JSON with comments and trailing commas;
// anything else as YAML.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		err = json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	if cacheRoot, err := os.UserCacheDir(); err == nil {
		vars["CACHE_HOME"] = cacheRoot
	}

	c.Cache.Dir = expandVars(c.Cache.Dir, vars)
	c.Auth.TokenPath = expandVars(c.Auth.TokenPath, vars)
	c.Serve.Listen = expandVars(c.Serve.Listen, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Provided vars first, then the environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Timeout returns the parsed HTTP timeout. Call Validate first; an
// invalid value yields zero, which disables the timeout.
func (c *Config) Timeout() time.Duration {
	timeout, _ := time.ParseDuration(c.HTTP.Timeout)
	return timeout
}

// Validate checks the configuration, reporting every problem at once.
func (c *Config) Validate() error {
	var errs []error

	endpoints := []struct {
		name  string
		value string
	}{
		{"endpoints.socorro", c.Endpoints.Socorro},
		{"endpoints.pings", c.Endpoints.Pings},
		{"endpoints.correlations", c.Endpoints.Correlations},
		{"endpoints.releases", c.Endpoints.Releases},
	}
	for _, endpoint := range endpoints {
		parsed, err := url.Parse(endpoint.value)
		if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an https URL, got %q", endpoint.name, endpoint.value))
		}
	}

	if timeout, err := time.ParseDuration(c.HTTP.Timeout); err != nil || timeout < 0 {
		errs = append(errs, fmt.Errorf("http.timeout must be a non-negative duration, got %q", c.HTTP.Timeout))
	}
	if c.HTTP.Retries < 0 {
		errs = append(errs, fmt.Errorf("http.retries must not be negative, got %d", c.HTTP.Retries))
	}

	if !slices.Contains(Backends, c.Cache.Backend) {
		errs = append(errs, fmt.Errorf("cache.backend must be one of: %v", Backends))
	}
	if c.Cache.Backend != BackendNone && c.Cache.Dir == "" {
		errs = append(errs, fmt.Errorf("cache.dir is required for the %s backend", c.Cache.Backend))
	}
	if !slices.Contains(Compressions, c.Cache.Compression) {
		errs = append(errs, fmt.Errorf("cache.compression must be one of: %v", Compressions))
	}

	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("output.format must be one of: %v", Formats))
	}

	if c.Serve.Listen == "" {
		errs = append(errs, fmt.Errorf("serve.listen is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
