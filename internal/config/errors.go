package config

import "errors"

var (
	ErrReadFile           = errors.New("config: failed to read file")
	ErrParseFile          = errors.New("config: failed to parse file")
	ErrParseEnv           = errors.New("config: failed to parse environment")
	ErrUnknownDriver      = errors.New("config: unknown storage driver")
	ErrMissingSetting     = errors.New("config: missing required setting")
	ErrInvalidLogoutScope = errors.New("config: invalid logout scope")
	ErrEmptyAddr          = errors.New("config: empty HTTP address")
)
