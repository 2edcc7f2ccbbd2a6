// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"bufio"
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/lib/credential"
)

// memoryStore is a credential.Store held in memory.
type memoryStore struct {
	token   string
	readErr error
	deletes int
}

func (m *memoryStore) Token() (string, error) {
	if m.readErr != nil {
		return "", m.readErr
	}
	if m.token == "" {
		return "", credential.ErrNoToken
	}
	return m.token, nil
}

func (m *memoryStore) Set(token string) error {
	m.token = token
	return nil
}

func (m *memoryStore) Delete() error {
	m.deletes++
	m.token = ""
	return nil
}

func scripted(input string) (*prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return &prompter{in: bufio.NewReader(strings.NewReader(input)), out: &out}, &out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		input     string
		wantToken string
		wantOut   string
	}{
		{
			name:      "first token",
			input:     "  abc123  \n",
			wantToken: "abc123",
			wantOut:   "Enter your Socorro API token: Token stored in system keychain.\n",
		},
		{
			name:      "replace confirmed",
			stored:    "old",
			input:     "y\nnew\n",
			wantToken: "new",
			wantOut:   "A token is already stored. Replace it? [y/N] Enter your Socorro API token: Token stored in system keychain.\n",
		},
		{
			name:      "replace declined",
			stored:    "old",
			input:     "\n",
			wantToken: "old",
			wantOut:   "A token is already stored. Replace it? [y/N] Cancelled.\n",
		},
		{
			name:      "empty token",
			input:     "\n",
			wantToken: "",
			wantOut:   "Enter your Socorro API token: No token provided. Cancelled.\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := &memoryStore{token: test.stored}
			prompt, out := scripted(test.input)
			if err := login(store, prompt, discardLogger()); err != nil {
				t.Fatalf("login: %v", err)
			}
			if store.token != test.wantToken {
				t.Errorf("stored token = %q, want %q", store.token, test.wantToken)
			}
			if out.String() != test.wantOut {
				t.Errorf("output = %q, want %q", out.String(), test.wantOut)
			}
		})
	}
}

func TestLoginUsesSecretReader(t *testing.T) {
	store := &memoryStore{}
	prompt, _ := scripted("")
	prompt.readSecret = func() (string, error) { return "hidden\n", nil }
	if err := login(store, prompt, discardLogger()); err != nil {
		t.Fatalf("login: %v", err)
	}
	if store.token != "hidden" {
		t.Errorf("stored token = %q, want hidden", store.token)
	}
}

func TestLogout(t *testing.T) {
	store := &memoryStore{token: "abc"}
	var out bytes.Buffer
	if err := logout(store, &out, discardLogger()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if out.String() != "Token removed from system keychain.\n" || store.token != "" {
		t.Errorf("output = %q, token = %q", out.String(), store.token)
	}

	out.Reset()
	if err := logout(store, &out, discardLogger()); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if out.String() != "No token stored.\n" || store.deletes != 1 {
		t.Errorf("output = %q, deletes = %d", out.String(), store.deletes)
	}
}

func writeConfig(t *testing.T, keyring bool, tokenPath string) string {
	t.Helper()
	contents := "auth:\n  keyring: " + map[bool]string{true: "true", false: "false"}[keyring] +
		"\n  token_path: \"" + tokenPath + "\"\nversion_check:\n  enabled: false\n"
	path := filepath.Join(t.TempDir(), "crashstats.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestStatus(t *testing.T) {
	directory := t.TempDir()
	presentFile := filepath.Join(directory, "token")
	if err := os.WriteFile(presentFile, []byte("file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	missingFile := filepath.Join(directory, "missing")

	tests := []struct {
		name      string
		keyring   bool
		store     *memoryStore
		tokenPath string
		wantOut   string
		wantExit  bool
	}{
		{
			name:    "keychain token",
			keyring: true,
			store:   &memoryStore{token: "abc"},
			wantOut: "Token is stored in system keychain.\n",
		},
		{
			name:      "file fallback",
			keyring:   true,
			store:     &memoryStore{},
			tokenPath: presentFile,
			wantOut:   "No token stored in keychain.\nToken file is set and exists (CI fallback): " + presentFile + "\n",
		},
		{
			name:      "missing file",
			keyring:   true,
			store:     &memoryStore{},
			tokenPath: missingFile,
			wantOut:   "No token stored in keychain.\nToken file is set but does not exist: " + missingFile + "\n",
			wantExit:  true,
		},
		{
			name:      "keychain error",
			keyring:   true,
			store:     &memoryStore{readErr: errors.New("secret service unavailable")},
			tokenPath: presentFile,
			wantOut:   "Keychain error: secret service unavailable\nToken file is set and exists (CI fallback): " + presentFile + "\n",
		},
		{
			name:     "keychain disabled",
			keyring:  false,
			store:    &memoryStore{token: "ignored"},
			wantOut:  "Keychain lookup is disabled (auth.keyring: false).\n",
			wantExit: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			params := authParams{Session: cli.Session{
				ConfigPath: writeConfig(t, test.keyring, test.tokenPath),
				Keyring:    test.store,
			}}
			var out bytes.Buffer
			err := status(&params, &out)

			if out.String() != test.wantOut {
				t.Errorf("output:\n%q\nwant:\n%q", out.String(), test.wantOut)
			}
			var exitErr *cli.ExitError
			gotExit := errors.As(err, &exitErr)
			if gotExit != test.wantExit {
				t.Errorf("err = %v, want exit error %v", err, test.wantExit)
			}
			if gotExit && exitErr.ExitCode() != 1 {
				t.Errorf("exit code = %d, want 1", exitErr.ExitCode())
			}
			if !gotExit && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSubcommandAnnotations(t *testing.T) {
	for _, sub := range Command().Subcommands {
		if sub.Annotations == nil {
			t.Errorf("auth %s has no annotations", sub.Name)
		}
	}
}
