// Package localstore is the namespaced key-value persistence layer used
// when the app operates offline. Values are JSON documents keyed by
// (namespace, key) in a local SQLite file; reads are defensive, writes
// are last-write-wins.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open creates the database file (and its directory) if needed, runs the
// schema migrations and returns a ready store.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping store: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get loads the JSON value stored under namespace/key into out. A missing
// or malformed entry leaves out untouched, so callers pass their default
// in out and keep it on any failure. Reports whether out was populated.
func (s *Store) Get(ctx context.Context, namespace, key string, out any) bool {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv WHERE namespace = ? AND k = ?`,
		namespace, key,
	).Scan(&raw)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.DebugContext(ctx, "Store read failed", "namespace", namespace, "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		slog.WarnContext(ctx, "Discarding malformed store entry", "namespace", namespace, "key", key, "error", err)
		return false
	}
	return true
}

// Set serializes value as JSON and upserts it under namespace/key.
func (s *Store) Set(ctx context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal store value: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO kv (namespace, k, value) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, k) DO UPDATE
		 SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		namespace, key, string(raw),
	)
	if err != nil {
		return fmt.Errorf("write store entry: %w", err)
	}
	return nil
}

// Delete removes the entry under namespace/key; absent entries are a no-op.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM kv WHERE namespace = ? AND k = ?`, namespace, key,
	); err != nil {
		return fmt.Errorf("delete store entry: %w", err)
	}
	return nil
}
