// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package socorro models the crash-stats (Socorro) API responses used
// by the crash and search commands: processed crash reports and
// SuperSearch results.
package socorro
