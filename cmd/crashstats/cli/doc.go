// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for crashstats.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a Params struct whose tagged fields
// become flags (see [BindFlags]), and a Run function that receives a
// context, the positional args and a logger. [Command.Execute] handles
// flag parsing, subcommand routing and structured help output.
//
// Unknown subcommands and flags get a Levenshtein suggestion
// (distance <= 3) in the error message.
//
// [Session] carries the flags shared by every command (--config,
// --format) and builds the API client, response cache and credential
// chain from the resolved configuration. [Classify] maps library
// errors to [ToolError] categories, which main turns into exit codes.
package cli
