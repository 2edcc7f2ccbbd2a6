// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/lib/credential"
)

// Command returns the "auth" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "auth",
		Summary: "Manage the Socorro API token",
		Description: `Store, remove or inspect the Socorro API token.

The token lives in the system keychain. On hosts without a keychain
(CI), point auth.token_path in the config, or SOCORRO_API_TOKEN_PATH,
at a file holding the token.

Create tokens at https://crash-stats.mozilla.org/api/tokens/ and give
them NO permissions. A token without permissions still raises the rate
limit, and one with permissions could expose protected crash data.`,
		Subcommands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			statusCommand(),
		},
	}
}

type authParams struct {
	cli.Session
}

func loginCommand() *cli.Command {
	var params authParams

	return &cli.Command{
		Name:    "login",
		Summary: "Store an API token in the system keychain",
		Description: `Prompt for a Socorro API token and store it in the system keychain.
The token is read without echo when stdin is a terminal, otherwise one
line is read from stdin.`,
		Usage: "crashstats auth login",
		Examples: []cli.Example{
			{Description: "Store a token interactively", Command: "crashstats auth login"},
		},
		Params:      func() any { return &params },
		Annotations: cli.Idempotent(),
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return login(params.KeyringStore(), terminalPrompter(), logger)
		},
	}
}

func logoutCommand() *cli.Command {
	var params authParams

	return &cli.Command{
		Name:        "logout",
		Summary:     "Remove the API token from the system keychain",
		Usage:       "crashstats auth logout",
		Params:      func() any { return &params },
		Annotations: cli.Destructive(),
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return logout(params.KeyringStore(), os.Stdout, logger)
		},
	}
}

func statusCommand() *cli.Command {
	var params authParams

	return &cli.Command{
		Name:    "status",
		Summary: "Report where the API token comes from",
		Description: `Report whether a token is stored in the keychain and whether the
token file fallback is configured. Exits 1 when no source holds a
token.`,
		Usage:       "crashstats auth status",
		Params:      func() any { return &params },
		Annotations: cli.LocalReadOnly(),
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return status(&params, os.Stdout)
		},
	}
}

func login(store credential.Store, prompt *prompter, logger *slog.Logger) error {
	if _, err := store.Token(); err == nil {
		answer, err := prompt.line("A token is already stored. Replace it? [y/N] ")
		if err != nil {
			return cli.Internal("reading answer: %w", err)
		}
		if answer != "y" && answer != "Y" {
			prompt.say("Cancelled.")
			return nil
		}
	}

	token, err := prompt.secret("Enter your Socorro API token: ")
	if err != nil {
		return cli.Internal("reading token: %w", err)
	}
	if token == "" {
		prompt.say("No token provided. Cancelled.")
		return nil
	}

	if err := store.Set(token); err != nil {
		return cli.Internal("%w", err).WithHint(
			"On hosts without a keychain, write the token to a file and set SOCORRO_API_TOKEN_PATH.")
	}
	logger.Debug("token stored", "length", len(token))
	prompt.say("Token stored in system keychain.")
	return nil
}

func logout(store credential.Store, out io.Writer, logger *slog.Logger) error {
	if _, err := store.Token(); err != nil {
		logger.Debug("no token to remove", "error", err)
		fmt.Fprintln(out, "No token stored.")
		return nil
	}
	if err := store.Delete(); err != nil {
		return cli.Internal("%w", err)
	}
	fmt.Fprintln(out, "Token removed from system keychain.")
	return nil
}

func status(params *authParams, out io.Writer) error {
	cfg, err := params.Config()
	if err != nil {
		return err
	}
	file, err := params.TokenFile()
	if err != nil {
		return err
	}

	describeFile := func() {
		if line := file.Describe(); line != "" {
			fmt.Fprintln(out, line)
		}
	}

	if !cfg.Auth.Keyring {
		fmt.Fprintln(out, "Keychain lookup is disabled (auth.keyring: false).")
		describeFile()
	} else {
		probe := credential.Probe(params.KeyringStore())
		switch probe.State {
		case credential.KeyringHasToken:
			fmt.Fprintln(out, "Token is stored in system keychain.")
		case credential.KeyringNoToken:
			fmt.Fprintln(out, "No token stored in keychain.")
			describeFile()
		default:
			fmt.Fprintf(out, "Keychain error: %v\n", probe.Err)
			describeFile()
		}
	}

	tokens, err := params.Credentials()
	if err != nil {
		return err
	}
	if credential.Probe(tokens).State != credential.KeyringHasToken {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
