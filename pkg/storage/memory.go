package storage

import (
	"context"
	"slices"
	"sync"
)

// Memory is an in-process storage facility. It is the substitute the Guard
// installs when the host backend is missing or broken, and the default
// session-scoped facility.
//
// Keys are indexed in insertion order; overwriting a key keeps its position.
type Memory struct {
	items map[string]string
	order []string
	opts  *memoryOptions
	size  int
	mu    sync.RWMutex
}

// NewMemory creates an empty in-memory facility.
//
// Example:
//
//	s := storage.NewMemory(storage.WithQuota(5 << 20))
//	_ = s.Set(ctx, "user", `{"id":"u1"}`)
func NewMemory(opts ...MemoryOption) *Memory {
	o := defaultMemoryOptions()
	for _, opt := range opts {
		opt(o)
	}

	return &Memory{
		items: make(map[string]string),
		opts:  o,
	}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set stores value under key.
// Returns ErrQuotaExceeded if a quota is configured and the write would exceed it.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, exists := m.items[key]

	size := m.size + len(key) + len(value)
	if exists {
		size -= len(key) + len(old)
	}
	if m.opts.quota > 0 && size > m.opts.quota {
		return ErrQuotaExceeded
	}

	if !exists {
		m.order = append(m.order, key)
	}
	m.items[key] = value
	m.size = size

	return nil
}

// Remove deletes key.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.items[key]
	if !ok {
		return nil
	}

	delete(m.items, key)
	m.size -= len(key) + len(v)
	if i := slices.Index(m.order, key); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}

	return nil
}

// Clear removes all keys.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = make(map[string]string)
	m.order = nil
	m.size = 0

	return nil
}

// Key returns the key at position index in insertion order.
func (m *Memory) Key(_ context.Context, index int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if index < 0 || index >= len(m.order) {
		return "", ErrNotFound
	}
	return m.order[index], nil
}

// Len returns the number of stored keys.
func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.order), nil
}

var _ Storage = (*Memory)(nil)
