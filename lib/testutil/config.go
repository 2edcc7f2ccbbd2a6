// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// ServerConfig writes a crashstats config file that routes every
// endpoint to server and disables the keychain, the response cache and
// the version check. extra is appended verbatim and may only add
// top-level sections not listed here (output, serve).
// Returns the file's path.
//
// Endpoints are laid out like the production hosts: Socorro under
// /api, pings at the root, correlations under /correlations and the
// release lookup at /releases/latest.
func ServerConfig(t *testing.T, server *httptest.Server, extra string) string {
	t.Helper()
	contents := fmt.Sprintf(`endpoints:
  socorro: %[1]s/api
  pings: %[1]s
  correlations: %[1]s/correlations
  releases: %[1]s/releases/latest
http:
  retries: 0
cache:
  backend: none
auth:
  keyring: false
  token_path: ""
version_check:
  enabled: false
%[2]s`, server.URL, extra)

	path := filepath.Join(t.TempDir(), "crashstats.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
