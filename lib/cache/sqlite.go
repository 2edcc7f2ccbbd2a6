// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/crashstats/lib/clock"
	"github.com/bureau-foundation/crashstats/lib/sqlitepool"
)

// DatabaseName is the SQLite file created in the cache directory.
const DatabaseName = "cache.db"

const schema = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key         TEXT PRIMARY KEY,
	compression TEXT NOT NULL,
	size        INTEGER NOT NULL,
	checksum    BLOB NOT NULL,
	stored_at   INTEGER NOT NULL,
	data        BLOB NOT NULL
) WITHOUT ROWID;
`

// SQLiteStore keeps entries in a single SQLite table. Useful when the
// cache directory is on a filesystem where many small files are slow.
type SQLiteStore struct {
	pool        *sqlitepool.Pool
	compression Compression
	clock       clock.Clock
	logger      *slog.Logger
}

// NewSQLiteStore opens (creating if needed) cfg.Dir/cache.db.
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
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

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   filepath.Join(cfg.Dir, DatabaseName),
		Logger: cfg.Logger,
		OnConnect: func(conn *sqlite.Conn) error {
			return sqlitex.ExecuteScript(conn, schema, nil)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	return &SQLiteStore{
		pool:        pool,
		compression: cfg.Compression,
		clock:       cfg.Clock,
		logger:      cfg.Logger,
	}, nil
}

// Get reads and verifies the entry. Rows that fail verification are
// deleted and reported as misses.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	defer s.pool.Put(conn)

	var stored *envelope
	err = sqlitex.Execute(conn,
		"SELECT key, compression, size, checksum, stored_at, data FROM cache_entries WHERE key = ?",
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stored = scanEnvelope(stmt)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("cache: reading %s: %w", key, err)
	}
	if stored == nil {
		return nil, ErrMiss
	}

	data, err := stored.open(key)
	if err != nil {
		s.logger.Debug("discarding corrupt cache entry", "key", key, "error", err)
		if deleteErr := deleteKey(conn, key); deleteErr != nil {
			s.logger.Warn("deleting corrupt cache entry failed", "key", key, "error", deleteErr)
		}
		return nil, ErrMiss
	}
	return data, nil
}

// Put inserts or replaces the entry.
func (s *SQLiteStore) Put(ctx context.Context, key string, data []byte) error {
	sealed, err := seal(key, data, s.compression, s.clock.Now())
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn,
		`INSERT OR REPLACE INTO cache_entries (key, compression, size, checksum, stored_at, data)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{
				sealed.Key, string(sealed.Compression), sealed.Size,
				sealed.Checksum, sealed.StoredAt, sealed.Data,
			},
		})
	if err != nil {
		return fmt.Errorf("cache: storing %s: %w", key, err)
	}
	return nil
}

// Delete removes the entry for key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer s.pool.Put(conn)

	if err := deleteKey(conn, key); err != nil {
		return fmt.Errorf("cache: deleting %s: %w", key, err)
	}
	return nil
}

// List describes every row, sorted by key.
func (s *SQLiteStore) List(ctx context.Context) ([]Entry, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	defer s.pool.Put(conn)

	entries := []Entry{}
	err = sqlitex.Execute(conn,
		"SELECT key, compression, size, stored_at, length(data) FROM cache_entries ORDER BY key",
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				stored := envelope{
					Key:         stmt.ColumnText(0),
					Compression: Compression(stmt.ColumnText(1)),
					Size:        stmt.ColumnInt64(2),
					StoredAt:    stmt.ColumnInt64(3),
				}
				entry := stored.entry()
				entry.StoredSize = stmt.ColumnInt64(4)
				entries = append(entries, entry)
				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("cache: listing: %w", err)
	}
	return entries, nil
}

// Clear deletes every row.
func (s *SQLiteStore) Clear(ctx context.Context) (int, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return 0, fmt.Errorf("cache: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM cache_entries", nil); err != nil {
		return 0, fmt.Errorf("cache: clearing: %w", err)
	}
	return conn.Changes(), nil
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}

func scanEnvelope(stmt *sqlite.Stmt) *envelope {
	stored := &envelope{
		Key:         stmt.ColumnText(0),
		Compression: Compression(stmt.ColumnText(1)),
		Size:        stmt.ColumnInt64(2),
		StoredAt:    stmt.ColumnInt64(4),
	}
	stored.Checksum = make([]byte, stmt.ColumnLen(3))
	stmt.ColumnBytes(3, stored.Checksum)
	stored.Data = make([]byte, stmt.ColumnLen(5))
	stmt.ColumnBytes(5, stored.Data)
	return stored
}

func deleteKey(conn *sqlite.Conn, key string) error {
	return sqlitex.Execute(conn, "DELETE FROM cache_entries WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key},
	})
}
