// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Set with -ldflags -X for release builds.
var (
	// Version is the released semantic version of crashstats.
	Version = "0.1.0-dev"

	// GitCommit is the short SHA. Empty means read it from build info.
	GitCommit = ""

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the version number alone.
func Short() string {
	return Version
}

// Info returns the version with the commit, marking builds from a
// modified tree.
func Info() string {
	commit, dirty := revision()
	if dirty {
		commit += "-dirty"
	}
	return fmt.Sprintf("%s (%s, %s)", Version, commit, BuildTime)
}

// Full returns Info plus the Go toolchain and platform, for the
// version command.
func Full() string {
	return fmt.Sprintf("%s\n  go: %s\n  platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// revision prefers the -ldflags commit and falls back to the VCS
// stamp go build records in the binary.
func revision() (string, bool) {
	if GitCommit != "" {
		return GitCommit, false
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown", false
	}
	commit, dirty := "unknown", false
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			commit = setting.Value
			if len(commit) > 12 {
				commit = commit[:12]
			}
		case "vcs.modified":
			dirty = strings.EqualFold(setting.Value, "true")
		}
	}
	return commit, dirty
}
