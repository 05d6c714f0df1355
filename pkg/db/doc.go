// Package db opens the SQL databases behind the SQL storage facilities.
//
// PostgreSQL pools are created with [Connect], which wraps
// [github.com/jackc/pgx/v5/pgxpool] with retry and backoff. Local databases are
// opened with [OpenSQLite] on top of the pure-Go driver [modernc.org/sqlite].
// Schemas are applied with [github.com/pressly/goose/v3]:
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	if err := db.MigratePostgres(ctx, pool, migrations.FS, migrations.PostgresDir, "", log); err != nil {
//		return err
//	}
//
//	sqlDB, err := db.OpenSQLite(ctx, db.SQLiteConfig{Path: "/var/lib/finboard/finboard.db"})
//	if err != nil {
//		return err
//	}
//	if err := db.MigrateSQLite(ctx, sqlDB, migrations.FS, migrations.SQLiteDir, log); err != nil {
//		return err
//	}
//
// # Configuration
//
// [Config] and [SQLiteConfig] carry env and yaml tags without defaults; the
// application config embeds them under a prefix (for example DURABLE_POSTGRES_URL).
// Zero values fall back to [DefaultConfig] and [DefaultSQLiteConfig].
package db
