// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package credential stores and retrieves the Socorro API token.
//
// Interactive users keep the token in the system keychain ([Keyring]).
// CI and headless hosts without a secret service point
// SOCORRO_API_TOKEN_PATH (or auth.token_path in the config) at a file
// holding the token ([File]). [Chain] reads from each source in order.
//
// The token file should live outside any directory an automated agent
// can read. Only the auth command writes tokens, and only to the
// keychain.
package credential
