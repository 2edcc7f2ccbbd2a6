// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// The converter configuration never changes and goldmark.Markdown is
// safe for concurrent use.
var (
	markdownInstance goldmark.Markdown
	markdownOnce     sync.Once
)

// MarkdownParser returns the shared goldmark instance with the GFM
// extensions the renderers rely on (tables in particular).
func MarkdownParser() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdownInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return markdownInstance
}

// HTMLPage converts a Markdown document to a standalone HTML page.
func HTMLPage(w io.Writer, title, markdown string) error {
	var body bytes.Buffer
	if err := MarkdownParser().Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("converting markdown: %w", err)
	}
	_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; }
code, pre { font-family: monospace; }
</style>
</head>
<body>
%s</body>
</html>
`, html.EscapeString(title), body.String())
	return err
}
