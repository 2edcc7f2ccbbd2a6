// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"
)

// WriteJSON writes value as indented JSON. Output to a terminal is
// syntax highlighted.
func WriteJSON(w io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return writeHighlighted(w, append(data, '\n'))
}

// WriteRawJSON re-indents an upstream JSON document without decoding
// it into Go types, so fields this tool does not model survive.
func WriteRawJSON(w io.Writer, data []byte) error {
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, bytes.TrimSpace(data), "", "  "); err != nil {
		return err
	}
	buffer.WriteByte('\n')
	return writeHighlighted(w, buffer.Bytes())
}

func writeHighlighted(w io.Writer, data []byte) error {
	if isTerminal(w) {
		if err := quick.Highlight(w, string(data), "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := w.Write(data)
	return err
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
