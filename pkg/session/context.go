package session

import "context"

type storeKey struct{}

// WithStore returns a copy of ctx carrying s.
func WithStore[P any](ctx context.Context, s *Store[P]) context.Context {
	return context.WithValue(ctx, storeKey{}, s)
}

// FromContext returns the store provisioned for ctx.
// Returns ErrNotProvided when ctx was never wrapped by WithStore (or the
// session middleware), or when the provisioned store has another principal type.
func FromContext[P any](ctx context.Context) (*Store[P], error) {
	s, ok := ctx.Value(storeKey{}).(*Store[P])
	if !ok || s == nil {
		return nil, ErrNotProvided
	}
	return s, nil
}
