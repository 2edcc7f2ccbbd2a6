// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestHTMLPage(t *testing.T) {
	var out bytes.Buffer
	if err := HTMLPage(&out, "Pings <2026-02-12>", MarkdownPings(sampleSummary())); err != nil {
		t.Fatalf("HTMLPage: %v", err)
	}
	page := out.String()
	for _, want := range []string{
		"<title>Pings &lt;2026-02-12&gt;</title>",
		"<h1>Crash Pings for 2026-02-12</h1>",
		"<table>",
		"<td>OOM | small</td>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q:\n%s", want, page)
		}
	}
}

func TestHTMLPageKeepsTemplateSignatures(t *testing.T) {
	summary := sampleSummary()
	summary.Items[0].Label = "mozilla::Maybe<int>::emplace"

	var out bytes.Buffer
	if err := HTMLPage(&out, "Pings", MarkdownPings(summary)); err != nil {
		t.Fatalf("HTMLPage: %v", err)
	}
	if !strings.Contains(out.String(), "<td>mozilla::Maybe&lt;int&gt;::emplace</td>") {
		t.Errorf("template signature lost:\n%s", out.String())
	}
}
