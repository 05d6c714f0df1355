package redis

import "errors"

var (
	ErrEmptyURL   = errors.New("redis: connection url is required")
	ErrInvalidURL = errors.New("redis: invalid connection url")
	ErrConnect    = errors.New("redis: server did not answer ping")
	ErrUnhealthy  = errors.New("redis: healthcheck failed")
)
