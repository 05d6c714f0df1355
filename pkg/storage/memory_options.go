package storage

// MemoryOption configures the in-memory facility.
type MemoryOption func(*memoryOptions)

type memoryOptions struct {
	quota int
}

func defaultMemoryOptions() *memoryOptions {
	return &memoryOptions{
		quota: 0, // 0 = unlimited
	}
}

// WithQuota limits the total size in bytes of all keys and values.
// Writes that would exceed the limit fail with ErrQuotaExceeded.
// Zero means unlimited.
// Default: 0 (unlimited).
func WithQuota(bytes int) MemoryOption {
	return func(o *memoryOptions) {
		o.quota = bytes
	}
}
