package storage

import (
	"context"
)

// Storage is the key-value contract shared by the durable and session-scoped
// facilities. Values are plain strings; callers serialize structured data
// themselves.
type Storage interface {
	// Get returns the value stored under key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error

	// Clear removes every key in the facility's namespace.
	Clear(ctx context.Context) error

	// Key returns the name of the key at position index.
	// Returns ErrNotFound if index is out of range.
	Key(ctx context.Context, index int) (string, error)

	// Len returns the number of stored keys.
	Len(ctx context.Context) (int, error)
}

// DefaultNamespace prefixes the namespaces of all backends unless configured otherwise.
const DefaultNamespace = "finboard"

// Scope identifies one of the two storage facilities a process owns.
type Scope string

const (
	// ScopeDurable survives process restarts.
	ScopeDurable Scope = "durable"

	// ScopeSession lives only as long as the browsing context (the process
	// or whatever the backend's expiration is configured to).
	ScopeSession Scope = "session"
)

// Opener opens a host-provided storage backend.
// A nil Opener means the host offers no backend for that scope.
type Opener func(ctx context.Context) (Storage, error)

// Static returns an Opener that hands out an already constructed backend.
func Static(s Storage) Opener {
	return func(context.Context) (Storage, error) {
		return s, nil
	}
}

// Keys enumerates all keys of s in index order.
func Keys(ctx context.Context, s Storage) ([]string, error) {
	n, err := s.Len(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, n)
	for i := range n {
		k, err := s.Key(ctx, i)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
