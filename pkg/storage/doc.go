// Package storage provides the key-value storage facilities a finboard process
// persists its state in, plus the Guard that guarantees both facilities exist.
//
// # Interface
//
// Every backend implements [Storage]:
//
//   - Get(ctx, key) (string, error): read a value, [ErrNotFound] when absent
//   - Set(ctx, key, value) error: write a value
//   - Remove(ctx, key) error: delete a key
//   - Clear(ctx) error: delete every key of the facility
//   - Key(ctx, index) (string, error): enumerate keys by position
//   - Len(ctx) (int, error): number of keys
//
// # Backends
//
//   - [Memory]: in-process map; the substitute installed by the Guard
//   - [SQLite]: local file via modernc.org/sqlite, the default durable backend
//   - [Redis]: one hash per namespace
//   - [Postgres]: shared table partitioned by namespace
//   - [S3]: one object per key under a namespace prefix
//
// # Guard
//
// A process owns two facilities: durable (survives restarts) and session-scoped.
// [Guard] opens the configured backend for each, probes it, and substitutes a
// [Memory] facility when the backend is missing or broken:
//
//	g := storage.NewGuard(
//	    func(ctx context.Context) (storage.Storage, error) { return openSQLite(ctx) },
//	    storage.Static(storage.NewMemory()),
//	    storage.WithGuardLogger(log),
//	)
//	facilities := g.Resolve(ctx)
//	defer facilities.Close()
//
// Resolve runs once; the result is meant to be injected into whatever needs
// storage. Nothing in this package keeps global state.
//
// # Error Handling
//
// The package defines sentinel errors:
//
//   - [ErrNotFound]: key does not exist or index out of range
//   - [ErrUnavailable]: facility missing or failed its probe
//   - [ErrQuotaExceeded]: write exceeds the Memory quota
//   - [ErrReadFailed], [ErrWriteFailed], [ErrDeleteFailed], [ErrListFailed]: backend failures
//
// Use [errors.Is] to check.
package storage
