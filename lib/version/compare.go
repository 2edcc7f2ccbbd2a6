// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Semver is a parsed MAJOR.MINOR.PATCH[-PRERELEASE] version. Build
// metadata after "+" is discarded.
type Semver struct {
	Major, Minor, Patch int
	Prerelease          string
}

// Parse parses a semantic version. A leading "v" is accepted so
// release tags parse directly.
func Parse(text string) (Semver, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(text), "v")
	trimmed, _, _ = strings.Cut(trimmed, "+")
	core, prerelease, _ := strings.Cut(trimmed, "-")

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return Semver{}, fmt.Errorf("version %q: want MAJOR.MINOR.PATCH", text)
	}
	var numbers [3]int
	for index, part := range parts {
		number, err := strconv.Atoi(part)
		if err != nil || number < 0 {
			return Semver{}, fmt.Errorf("version %q: component %q is not a non-negative integer", text, part)
		}
		numbers[index] = number
	}
	return Semver{Major: numbers[0], Minor: numbers[1], Patch: numbers[2], Prerelease: prerelease}, nil
}

// Compare returns -1, 0 or 1 as a is older than, equal to, or newer
// than b. A prerelease sorts before its release; two prereleases
// compare as strings.
func (a Semver) Compare(b Semver) int {
	for _, pair := range [][2]int{{a.Major, b.Major}, {a.Minor, b.Minor}, {a.Patch, b.Patch}} {
		if pair[0] != pair[1] {
			if pair[0] < pair[1] {
				return -1
			}
			return 1
		}
	}
	switch {
	case a.Prerelease == b.Prerelease:
		return 0
	case a.Prerelease == "":
		return 1
	case b.Prerelease == "":
		return -1
	case a.Prerelease < b.Prerelease:
		return -1
	default:
		return 1
	}
}

func (v Semver) String() string {
	text := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		text += "-" + v.Prerelease
	}
	return text
}

// IsNewer reports whether latest is a newer release than current.
// Unparseable versions are never newer, so a development build or a
// malformed upstream tag produces no update notice.
func IsNewer(latest, current string) bool {
	latestVersion, err := Parse(latest)
	if err != nil {
		return false
	}
	currentVersion, err := Parse(current)
	if err != nil {
		return false
	}
	return latestVersion.Compare(currentVersion) > 0
}
