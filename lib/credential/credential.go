// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// Keychain entry coordinates. Shared with other Socorro tools so a
// token stored by one is visible to all.
const (
	KeyringService = "socorro-cli"
	KeyringUser    = "api-token"
)

// ErrNoToken is returned when a source holds no token.
var ErrNoToken = errors.New("no API token stored")

// Reader is a source of the API token.
type Reader interface {
	// Token returns the stored token, or an error wrapping ErrNoToken.
	Token() (string, error)
}

// Store is a token source that can also be written.
type Store interface {
	Reader
	Set(token string) error
	Delete() error
}

// Keyring is the system keychain entry for the token.
type Keyring struct {
	Service string
	User    string
}

// NewKeyring returns the standard keychain entry.
func NewKeyring() *Keyring {
	return &Keyring{Service: KeyringService, User: KeyringUser}
}

// Token reads the keychain entry.
func (k *Keyring) Token() (string, error) {
	token, err := keyring.Get(k.Service, k.User)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading keychain: %w", err)
	}
	return token, nil
}

// Set stores token and reads it back. Some keychain backends accept a
// write they do not persist; the read-back turns that into an error.
func (k *Keyring) Set(token string) error {
	if err := keyring.Set(k.Service, k.User, token); err != nil {
		return fmt.Errorf("storing token in keychain: %w", err)
	}
	stored, err := keyring.Get(k.Service, k.User)
	if err != nil {
		return fmt.Errorf("storing token in keychain: write appeared to succeed but read-back failed: %w", err)
	}
	if stored != token {
		return fmt.Errorf("storing token in keychain: token mismatch after storage")
	}
	return nil
}

// Delete removes the entry. Deleting an absent entry succeeds.
func (k *Keyring) Delete() error {
	err := keyring.Delete(k.Service, k.User)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("removing token from keychain: %w", err)
	}
	return nil
}

// KeyringState classifies a keychain probe.
type KeyringState int

const (
	KeyringHasToken KeyringState = iota
	KeyringNoToken
	KeyringError
)

// KeyringStatus is the result of probing the keychain. Err is set
// when State is KeyringError.
type KeyringStatus struct {
	State KeyringState
	Err   error
}

// Status probes the keychain without returning the token.
func (k *Keyring) Status() KeyringStatus {
	return Probe(k)
}

// Probe classifies a token source by attempting a read.
func Probe(reader Reader) KeyringStatus {
	_, err := reader.Token()
	switch {
	case err == nil:
		return KeyringStatus{State: KeyringHasToken}
	case errors.Is(err, ErrNoToken):
		return KeyringStatus{State: KeyringNoToken}
	default:
		return KeyringStatus{State: KeyringError, Err: err}
	}
}

// File reads the token from a file. The contents are trimmed; a file
// with only whitespace holds no token. An empty Path disables it.
type File struct {
	Path string
}

// Token reads and trims the file.
func (f *File) Token() (string, error) {
	if f.Path == "" {
		return "", ErrNoToken
	}
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("reading token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Describe reports whether the token file is configured and present,
// for auth status. It returns "" when no path is configured.
func (f *File) Describe() string {
	if f.Path == "" {
		return ""
	}
	if _, err := os.Stat(f.Path); err != nil {
		return fmt.Sprintf("Token file is set but does not exist: %s", f.Path)
	}
	return fmt.Sprintf("Token file is set and exists (CI fallback): %s", f.Path)
}

// Chain reads from each source in order and returns the first token
// found. Source errors other than ErrNoToken do not stop the search
// (a headless host has no keychain); they are joined into the final
// error if no source has a token.
type Chain []Reader

// Token returns the first token found.
func (chain Chain) Token() (string, error) {
	errs := []error{ErrNoToken}
	for _, source := range chain {
		token, err := source.Token()
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, ErrNoToken) {
			errs = append(errs, err)
		}
	}
	return "", errors.Join(errs...)
}

// Has reports whether any source holds a token.
func (chain Chain) Has() bool {
	_, err := chain.Token()
	return err == nil
}
