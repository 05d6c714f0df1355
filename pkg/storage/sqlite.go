package storage

import (
	"context"
	"database/sql"
	"errors"
)

// SQLite is a storage facility persisted in a local SQLite database.
// Several facilities may share one database; rows are partitioned by namespace.
// The schema lives in pkg/storage/migrations and is applied by pkg/db.MigrateSQLite.
type SQLite struct {
	db        *sql.DB
	namespace string
}

// NewSQLite creates a SQLite-backed facility over an open, migrated database.
// An empty namespace falls back to "finboard:durable".
func NewSQLite(db *sql.DB, namespace string) *SQLite {
	if namespace == "" {
		namespace = DefaultNamespace + ":" + string(ScopeDurable)
	}
	return &SQLite{db: db, namespace: namespace}
}

// Get returns the value stored under key.
func (s *SQLite) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM storage_items WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrReadFailed, err)
	}
	return v, nil
}

// Set upserts value under key. An existing key keeps its index position.
func (s *SQLite) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO storage_items (namespace, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = excluded.value`,
		s.namespace, key, value,
	)
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Remove deletes key.
func (s *SQLite) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM storage_items WHERE namespace = ? AND key = ?`,
		s.namespace, key,
	)
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Clear deletes every row of the namespace.
func (s *SQLite) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM storage_items WHERE namespace = ?`, s.namespace)
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Key returns the key at position index in insertion order.
func (s *SQLite) Key(ctx context.Context, index int) (string, error) {
	if index < 0 {
		return "", ErrNotFound
	}

	var k string
	err := s.db.QueryRowContext(ctx,
		`SELECT key FROM storage_items WHERE namespace = ? ORDER BY rowid LIMIT 1 OFFSET ?`,
		s.namespace, index,
	).Scan(&k)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrListFailed, err)
	}
	return k, nil
}

// Len returns the number of keys in the namespace.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM storage_items WHERE namespace = ?`,
		s.namespace,
	).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrListFailed, err)
	}
	return n, nil
}

// Close closes the underlying database handle.
func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ Storage = (*SQLite)(nil)
