// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bureau-foundation/crashstats/lib/clock"
)

// ErrMiss is returned by Get when the key is absent or its entry is
// unreadable.
var ErrMiss = errors.New("cache miss")

// Store is a key-value store for response bodies.
type Store interface {
	// Get returns the body stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any existing entry.
	Put(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error

	// List describes every readable entry, sorted by key.
	List(ctx context.Context) ([]Entry, error)

	// Clear removes every entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)

	Close() error
}

// Entry describes a stored body.
type Entry struct {
	Key         string      `json:"key"`
	Size        int64       `json:"size" desc:"uncompressed body size in bytes"`
	StoredSize  int64       `json:"stored_size" desc:"bytes on disk after compression"`
	Compression Compression `json:"compression"`
	StoredAt    time.Time   `json:"stored_at"`
}

// Config selects and configures a backend.
type Config struct {
	// Backend is "file", "sqlite" or "none".
	Backend string

	// Dir holds the cache files or the SQLite database.
	Dir string

	// Compression is applied to new entries. Existing entries keep
	// whatever compression they were written with.
	Compression Compression

	Clock  clock.Clock
	Logger *slog.Logger
}

// Open returns the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	switch cfg.Backend {
	case "file":
		return NewFileStore(cfg)
	case "sqlite":
		return NewSQLiteStore(cfg)
	case "none":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Through returns the decoded body for key, from store when cached or
// from fetch otherwise. A body is stored only after decode accepts it,
// and a cached body decode rejects is deleted and fetched again. Cache
// failures are logged and otherwise ignored: a broken cache never fails
// a query. fetch and decode errors are returned unchanged.
func Through[T any](
	ctx context.Context,
	store Store,
	key string,
	logger *slog.Logger,
	fetch func(context.Context) ([]byte, error),
	decode func([]byte) (T, error),
) (T, error) {
	data, err := store.Get(ctx, key)
	switch {
	case err == nil:
		value, decodeErr := decode(data)
		if decodeErr == nil {
			logger.Debug("cache hit", "key", key, "bytes", len(data))
			return value, nil
		}
		logger.Warn("discarding undecodable cache entry", "key", key, "error", decodeErr)
		if err := store.Delete(ctx, key); err != nil {
			logger.Warn("cache delete failed", "key", key, "error", err)
		}
	case !errors.Is(err, ErrMiss):
		logger.Warn("cache read failed", "key", key, "error", err)
	}

	var zero T
	data, err = fetch(ctx)
	if err != nil {
		return zero, err
	}
	value, err := decode(data)
	if err != nil {
		return zero, err
	}
	if err := store.Put(ctx, key, data); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
	return value, nil
}

// Nop is a Store that stores nothing. Every Get misses.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (Nop) Put(context.Context, string, []byte) error { return nil }
func (Nop) Delete(context.Context, string) error { return nil }
func (Nop) List(context.Context) ([]Entry, error) { return nil, nil }
func (Nop) Clear(context.Context) (int, error) { return 0, nil }
func (Nop) Close() error { return nil }
