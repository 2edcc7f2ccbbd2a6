// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter asks questions on out and reads answers from in. Secrets
// come from readSecret when set, otherwise from in like any other line.
type prompter struct {
	in         *bufio.Reader
	out        io.Writer
	readSecret func() (string, error)
}

// terminalPrompter reads from stdin, with echo disabled for secrets
// when stdin is a terminal.
func terminalPrompter() *prompter {
	prompt := &prompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	stdinFileDescriptor := int(os.Stdin.Fd())
	if term.IsTerminal(stdinFileDescriptor) {
		prompt.readSecret = func() (string, error) {
			secret, err := term.ReadPassword(stdinFileDescriptor)
			fmt.Fprintln(os.Stdout)
			return string(secret), err
		}
	}
	return prompt
}

// line prints question and returns the trimmed answer. End of input
// is an empty answer.
func (p *prompter) line(question string) (string, error) {
	fmt.Fprint(p.out, question)
	answer, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (p *prompter) secret(question string) (string, error) {
	if p.readSecret == nil {
		return p.line(question)
	}
	fmt.Fprint(p.out, question)
	secret, err := p.readSecret()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

func (p *prompter) say(message string) {
	fmt.Fprintln(p.out, message)
}
