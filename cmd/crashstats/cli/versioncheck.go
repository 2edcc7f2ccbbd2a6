// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/bureau-foundation/crashstats/lib/version"
)

// versionCheckTimeout bounds how long a command's exit can be delayed
// waiting for the release lookup.
const versionCheckTimeout = 2 * time.Second

// LatestVersionSource reports the newest published release tag.
type LatestVersionSource interface {
	LatestVersion(ctx context.Context) (string, error)
}

// VersionCheck looks up the latest release while a command runs.
type VersionCheck struct {
	wait   conc.WaitGroup
	latest string
}

// StartVersionCheck begins a background release lookup. A nil source
// returns a check that never warns. Lookup failures are logged at
// Debug and otherwise ignored.
func StartVersionCheck(ctx context.Context, source LatestVersionSource, logger *slog.Logger) *VersionCheck {
	check := &VersionCheck{}
	if source == nil {
		return check
	}
	check.wait.Go(func() {
		ctx, cancel := context.WithTimeout(ctx, versionCheckTimeout)
		defer cancel()
		latest, err := source.LatestVersion(ctx)
		if err != nil {
			logger.Debug("version check failed", "error", err)
			return
		}
		check.latest = latest
	})
	return check
}

// Warn waits for the lookup and writes a notice to w when the latest
// release is newer than the running binary.
func (check *VersionCheck) Warn(w io.Writer) {
	check.wait.Wait()
	if check.latest == "" || !version.IsNewer(check.latest, version.Version) {
		return
	}
	fmt.Fprintf(w, "\nA newer crashstats is available: %s (running %s).\n", check.latest, version.Short())
}
