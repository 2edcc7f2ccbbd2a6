// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
	"github.com/bureau-foundation/crashstats/cmd/crashstats/render"
)

// Tool describes one runnable command.
type Tool struct {
	Name        string               `json:"name"`
	Command     string               `json:"command"`
	Summary     string               `json:"summary"`
	Annotations *cli.ToolAnnotations `json:"annotations"`
	Flags       []ToolFlag           `json:"flags"`
}

// ToolFlag is one flag of a Tool.
type ToolFlag struct {
	Name        string `json:"name"`
	Shorthand   string `json:"shorthand,omitempty"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

func toolsCommand(root *cli.Command) *cli.Command {
	return &cli.Command{
		Name:    "tools",
		Summary: "Describe every command as JSON",
		Description: `Print every runnable command with its flags and behavior annotations
(read-only, destructive, idempotent, open-world) as a JSON array.
Wrappers that expose crashstats to agents use this to decide which
commands are safe to call without confirmation.`,
		Usage:       "crashstats tools",
		Annotations: cli.LocalReadOnly(),
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return render.WriteJSON(os.Stdout, Tools(root))
		},
	}
}

// Tools walks the tree under root and describes each command that has
// a Run function, in tree order.
func Tools(root *cli.Command) []Tool {
	var tools []Tool
	var walk func(command *cli.Command, path []string)
	walk = func(command *cli.Command, path []string) {
		if command.Run != nil {
			tools = append(tools, describe(command, path))
		}
		for _, sub := range command.Subcommands {
			walk(sub, append(append([]string(nil), path...), sub.Name))
		}
	}
	walk(root, nil)
	return tools
}

func describe(command *cli.Command, path []string) Tool {
	tool := Tool{
		Name:        strings.Join(path, "_"),
		Command:     strings.Join(append([]string{"crashstats"}, path...), " "),
		Summary:     command.Summary,
		Annotations: command.Annotations,
		Flags:       []ToolFlag{},
	}
	if command.Params == nil {
		return tool
	}
	cli.FlagsFromParams(command.Name, command.Params()).VisitAll(func(flag *pflag.Flag) {
		tool.Flags = append(tool.Flags, ToolFlag{
			Name:        flag.Name,
			Shorthand:   flag.Shorthand,
			Type:        flag.Value.Type(),
			Default:     flag.DefValue,
			Description: flag.Usage,
		})
	})
	return tool
}
