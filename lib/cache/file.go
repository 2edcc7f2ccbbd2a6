// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bureau-foundation/crashstats/lib/clock"
	"github.com/bureau-foundation/crashstats/lib/codec"
)

const entryExtension = ".cbor"

// FileStore keeps one CBOR envelope file per key in a directory.
// Writes go through a temporary file and a rename, so a concurrent
// reader sees either the old entry or the new one.
type FileStore struct {
	dir         string
	compression Compression
	clock       clock.Clock
	logger      *slog.Logger
}

// NewFileStore creates cfg.Dir if needed.
func NewFileStore(cfg Config) (*FileStore, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("cache: directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("cache: creating %s: %w", cfg.Dir, err)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &FileStore{
		dir:         cfg.Dir,
		compression: cfg.Compression,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, keyName(key)+entryExtension)
}

// Get reads and verifies the entry. Unreadable entries are removed and
// reported as misses.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	path := s.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: reading %s: %w", key, err)
	}

	var stored envelope
	if len(raw) == 0 {
		err = errors.New("empty entry file")
	} else {
		err = codec.Unmarshal(raw, &stored)
	}
	var data []byte
	if err == nil {
		data, err = stored.open(key)
	}
	if err != nil {
		s.logger.Debug("discarding corrupt cache entry", "key", key, "path", path, "error", err)
		_ = os.Remove(path)
		return nil, ErrMiss
	}
	return data, nil
}

// Put writes the entry atomically.
func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	sealed, err := seal(key, data, s.compression, s.clock.Now())
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	encoded, err := codec.Marshal(sealed)
	if err != nil {
		return fmt.Errorf("cache: encoding %s: %w", key, err)
	}

	temporary, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	temporaryPath := temporary.Name()
	if _, err := temporary.Write(encoded); err != nil {
		temporary.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("cache: writing %s: %w", key, err)
	}
	if err := os.Rename(temporaryPath, s.path(key)); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("cache: storing %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("cache: deleting %s: %w", key, err)
	}
	return nil
}

// List decodes every entry file. Files that fail to decode are
// skipped.
func (s *FileStore) List(_ context.Context) ([]Entry, error) {
	paths, err := s.entryPaths()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var stored envelope
		if err := codec.Unmarshal(raw, &stored); err != nil {
			s.logger.Debug("skipping unreadable cache file", "path", path, "error", err)
			continue
		}
		entries = append(entries, stored.entry())
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Clear removes every entry file, readable or not.
func (s *FileStore) Clear(_ context.Context) (int, error) {
	paths, err := s.entryPaths()
	if err != nil {
		return 0, err
	}
	removed := 0
	var errs []error
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("cache: clearing: %w", errors.Join(errs...))
	}
	return removed, nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) entryPaths() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("cache: reading %s: %w", s.dir, err)
	}
	var paths []string
	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), entryExtension) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, dirEntry.Name()))
	}
	return paths, nil
}
