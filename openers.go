package finboard

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/finboard/internal/config"
	"github.com/dmitrymomot/finboard/pkg/db"
	"github.com/dmitrymomot/finboard/pkg/health"
	"github.com/dmitrymomot/finboard/pkg/redis"
	"github.com/dmitrymomot/finboard/pkg/storage"
	"github.com/dmitrymomot/finboard/pkg/storage/migrations"
)

// opener builds the host opener for one facility from its configuration.
// A networked backend also records a connection check for its scope. New
// registers it with the readiness probe only if the guard keeps the backend.
func (a *App) opener(scope storage.Scope, cfg config.FacilityConfig) storage.Opener {
	log := a.logger.With(slog.String("scope", string(scope)), slog.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverMemory:
		return storage.Static(storage.NewMemory())

	case config.DriverSQLite:
		return func(ctx context.Context) (storage.Storage, error) {
			sqlDB, err := db.OpenSQLite(ctx, cfg.SQLite)
			if err != nil {
				return nil, err
			}
			if err := db.MigrateSQLite(ctx, sqlDB, migrations.FS, migrations.SQLiteDir, log); err != nil {
				return nil, errors.Join(err, sqlDB.Close())
			}
			return storage.NewSQLite(sqlDB, cfg.Namespace), nil
		}

	case config.DriverPostgres:
		return func(ctx context.Context) (storage.Storage, error) {
			pool, err := db.Connect(ctx, cfg.Postgres)
			if err != nil {
				return nil, err
			}
			if err := db.MigratePostgres(ctx, pool, migrations.FS, migrations.PostgresDir, cfg.Postgres.MigrationsTable, log); err != nil {
				pool.Close()
				return nil, err
			}
			a.addBackendCheck(scope, "postgres", db.Healthcheck(pool))
			return storage.NewPostgres(pool, cfg.Namespace), nil
		}

	case config.DriverRedis:
		return func(ctx context.Context) (storage.Storage, error) {
			client, err := redis.Connect(ctx, cfg.Redis)
			if err != nil {
				return nil, err
			}
			a.addBackendCheck(scope, "redis", redis.Healthcheck(client))
			return storage.NewRedis(client,
				storage.WithNamespace(cfg.Namespace),
				storage.WithExpiration(cfg.Expiration),
				storage.WithOwnedClient(),
			), nil
		}

	case config.DriverS3:
		return func(context.Context) (storage.Storage, error) {
			return storage.NewS3(cfg.S3, cfg.Namespace)
		}

	default:
		return nil
	}
}

func (a *App) addBackendCheck(scope storage.Scope, driver string, check health.CheckFunc) {
	if a.backendChecks[scope] == nil {
		a.backendChecks[scope] = make(health.Checks)
	}
	a.backendChecks[scope][string(scope)+":"+driver] = check
}
