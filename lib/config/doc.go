// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads crashstats configuration.
//
// The file is named by the --config flag or the CRASHSTATS_CONFIG
// environment variable. Without either, built-in defaults that talk to
// the public Mozilla endpoints are used. A file is merged over the
// defaults, so it only lists what it changes:
//
//	cache:
//	  backend: sqlite
//	  dir: ${CACHE_HOME}/crashstats
//	  compression: lz4
//	version_check:
//	  enabled: false
//
// Files with a .json or .jsonc extension are parsed as JSON with
// comments. ${VAR} and ${VAR:-default} are expanded in path fields.
package config
