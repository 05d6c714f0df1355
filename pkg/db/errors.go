package db

import "errors"

var (
	ErrInvalidDSN = errors.New("db: invalid postgres connection string")
	ErrOpen       = errors.New("db: cannot open database")
	ErrEmptyPath  = errors.New("db: sqlite path is required")
	ErrUnhealthy  = errors.New("db: healthcheck failed")
	ErrSetDialect = errors.New("db: unsupported migration dialect")
	ErrMigrate    = errors.New("db: migrations failed")
)
