package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a storage facility persisted in PostgreSQL.
// The pool should come from pkg/db.Connect and be migrated with
// pkg/db.MigratePostgres using the migrations.PostgresDir scripts.
type Postgres struct {
	pool      *pgxpool.Pool
	namespace string
}

// NewPostgres creates a Postgres-backed facility.
// An empty namespace falls back to "finboard:durable".
func NewPostgres(pool *pgxpool.Pool, namespace string) *Postgres {
	if namespace == "" {
		namespace = DefaultNamespace + ":" + string(ScopeDurable)
	}
	return &Postgres{pool: pool, namespace: namespace}
}

// Get returns the value stored under key.
func (p *Postgres) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM storage_items WHERE namespace = $1 AND key = $2`,
		p.namespace, key,
	).Scan(&v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrReadFailed, err)
	}
	return v, nil
}

// Set upserts value under key.
func (p *Postgres) Set(ctx context.Context, key, value string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO storage_items (namespace, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value`,
		p.namespace, key, value,
	)
	if err != nil {
		return errors.Join(ErrWriteFailed, err)
	}
	return nil
}

// Remove deletes key.
func (p *Postgres) Remove(ctx context.Context, key string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM storage_items WHERE namespace = $1 AND key = $2`,
		p.namespace, key,
	)
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Clear deletes every row of the namespace.
func (p *Postgres) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM storage_items WHERE namespace = $1`, p.namespace)
	if err != nil {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Key returns the key at position index in insertion order.
func (p *Postgres) Key(ctx context.Context, index int) (string, error) {
	if index < 0 {
		return "", ErrNotFound
	}

	var k string
	err := p.pool.QueryRow(ctx,
		`SELECT key FROM storage_items WHERE namespace = $1 ORDER BY id LIMIT 1 OFFSET $2`,
		p.namespace, index,
	).Scan(&k)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", errors.Join(ErrListFailed, err)
	}
	return k, nil
}

// Len returns the number of keys in the namespace.
func (p *Postgres) Len(ctx context.Context) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM storage_items WHERE namespace = $1`,
		p.namespace,
	).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrListFailed, err)
	}
	return n, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	if p == nil || p.pool == nil {
		return nil
	}
	p.pool.Close()
	return nil
}

var _ Storage = (*Postgres)(nil)
