package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// goose keeps its dialect, table and filesystem in package globals.
var gooseMu sync.Mutex

// Migrate applies the goose migrations found in dir of migrations.
// dialect is a goose dialect name such as "postgres" or "sqlite3".
func Migrate(ctx context.Context, db *sql.DB, dialect string, migrations fs.FS, dir, table string, log *slog.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if table == "" {
		table = DefaultConfig().MigrationsTable
	}

	goose.SetBaseFS(migrations)
	goose.SetLogger(&gooseLoggerAdapter{log})
	goose.SetTableName(table)

	if err := goose.SetDialect(dialect); err != nil {
		return errors.Join(ErrSetDialect, err)
	}

	if err := goose.UpContext(ctx, db, dir); err != nil {
		return errors.Join(ErrMigrate, err)
	}

	return nil
}

// MigratePostgres bridges the pgx pool to database/sql for goose.
// The bridge shares the pool's connections, so it is not closed here.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, dir, table string, log *slog.Logger) error {
	return Migrate(ctx, stdlib.OpenDBFromPool(pool), "postgres", migrations, dir, table, log)
}

// MigrateSQLite applies migrations to a database opened with OpenSQLite.
func MigrateSQLite(ctx context.Context, db *sql.DB, migrations fs.FS, dir string, log *slog.Logger) error {
	return Migrate(ctx, db, "sqlite3", migrations, dir, "", log)
}

type gooseLoggerAdapter struct {
	log *slog.Logger
}

func (g *gooseLoggerAdapter) Printf(format string, args ...any) {
	g.log.Debug(fmt.Sprintf(format, args...))
}

func (g *gooseLoggerAdapter) Fatalf(format string, args ...any) {
	// goose returns the error as well; never exit the process from here.
	g.log.Error(fmt.Sprintf(format, args...))
}
