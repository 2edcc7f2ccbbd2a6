// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buffer bytes.Buffer
	writer := gzip.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buffer.Bytes()
}

func TestReadResponse(t *testing.T) {
	t.Run("normal body", func(t *testing.T) {
		data, err := ReadResponse(bytes.NewReader([]byte(`{"status":"ok"}`)))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(data) != `{"status":"ok"}` {
			t.Fatalf("got %q, want %q", data, `{"status":"ok"}`)
		}
	})

	t.Run("read error propagates", func(t *testing.T) {
		if _, err := ReadResponse(&failReader{}); err == nil {
			t.Fatal("expected error from failing reader")
		}
	})
}

func TestReadBody(t *testing.T) {
	const plain = `{"date":"2026-01-20","release":{"total":1000}}`

	tests := []struct {
		name string
		body []byte
		want string
	}{
		{"plain", []byte(plain), plain},
		{"gzip", gzipBytes(t, []byte(plain)), plain},
		{"empty", nil, ""},
		{"single byte", []byte{0x1f}, "\x1f"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := ReadBody(bytes.NewReader(test.body))
			if err != nil {
				t.Fatalf("ReadBody: %v", err)
			}
			if string(data) != test.want {
				t.Errorf("got %q, want %q", data, test.want)
			}
		})
	}

	t.Run("truncated gzip", func(t *testing.T) {
		compressed := gzipBytes(t, []byte(plain))
		if _, err := ReadBody(bytes.NewReader(compressed[:len(compressed)/2])); err == nil {
			t.Fatal("expected error for truncated gzip stream")
		}
	})
}

func TestIsGzip(t *testing.T) {
	if !IsGzip(gzipBytes(t, []byte("x"))) {
		t.Error("IsGzip(gzip data) = false")
	}
	if IsGzip([]byte(`{}`)) || IsGzip(nil) {
		t.Error("IsGzip(plain) = true")
	}
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(bytes.NewReader([]byte(`{"error":"not found"}`))); got != `{"error":"not found"}` {
		t.Fatalf("got %q", got)
	}
	if got := ErrorBody(&failReader{}); got != "" {
		t.Fatalf("expected empty from failing reader, got %q", got)
	}
}

type failReader struct{}

func (*failReader) Read([]byte) (int, error) {
	return 0, fmt.Errorf("simulated read failure")
}
