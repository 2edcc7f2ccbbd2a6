// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"bytes"
	"fmt"
	"time"
)

// envelope is the stored form of an entry. FileStore writes it as
// CBOR; SQLiteStore maps its fields to columns.
type envelope struct {
	Key         string      `json:"key"`
	Compression Compression `json:"compression"`
	Size        int64       `json:"size"`
	Checksum    []byte      `json:"checksum"`
	StoredAt    int64       `json:"stored_at"`
	Data        []byte      `json:"data"`
}

func seal(key string, data []byte, compression Compression, now time.Time) (*envelope, error) {
	stored, used, err := Compress(data, compression)
	if err != nil {
		return nil, fmt.Errorf("compressing %s: %w", key, err)
	}
	return &envelope{
		Key:         key,
		Compression: used,
		Size:        int64(len(data)),
		Checksum:    checksum(data),
		StoredAt:    now.Unix(),
		Data:        stored,
	}, nil
}

// open decompresses and verifies the body. Any failure means the
// entry is corrupt.
func (e *envelope) open(key string) ([]byte, error) {
	if e.Key != key {
		return nil, fmt.Errorf("entry holds key %q, want %q", e.Key, key)
	}
	data, err := Decompress(e.Data, e.Compression, int(e.Size))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(checksum(data), e.Checksum) {
		return nil, fmt.Errorf("checksum mismatch for %q", key)
	}
	return data, nil
}

func (e *envelope) entry() Entry {
	return Entry{
		Key:         e.Key,
		Size:        e.Size,
		StoredSize:  int64(len(e.Data)),
		Compression: e.Compression,
		StoredAt:    time.Unix(e.StoredAt, 0).UTC(),
	}
}
