package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/dmitrymomot/finboard/pkg/storage"
)

// Keys of the persisted session record in the durable facility.
const (
	TokenKey     = "accessToken"
	PrincipalKey = "user"
)

// Store is the single owner of "who is logged in" for the lifetime of a
// process. Principal and token are always set or cleared together.
//
// In-memory state is authoritative. The durable facility is read once in New
// and written on every mutation; write failures degrade the session to
// memory-only without failing the mutation.
type Store[P any] struct {
	durable   storage.Storage
	codec     Codec[P]
	opts      *options
	restore   Outcome
	principal P
	token     string
	mu        sync.RWMutex
	authed    bool
}

// New creates a store and restores any session persisted in durable.
// durable should come from storage.Guard so it is guaranteed usable.
// A nil codec selects JSON.
//
// New never fails: an unreadable or malformed record leaves the store
// anonymous and is reported by RestoreOutcome.
func New[P any](ctx context.Context, durable storage.Storage, codec Codec[P], opts ...Option) *Store[P] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if codec == nil {
		codec = jsonCodec[P]{}
	}

	s := &Store[P]{
		durable: durable,
		codec:   codec,
		opts:    o,
	}
	s.restore = s.load(ctx)

	return s
}

// Principal returns the authenticated principal.
// ok is false when the session is anonymous.
func (s *Store[P]) Principal() (p P, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.principal, s.authed
}

// Token returns the credential token.
// ok is false when the session is anonymous.
func (s *Store[P]) Token() (token string, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token, s.authed
}

// State returns the current state of the session.
func (s *Store[P]) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.authed {
		return Authenticated
	}
	return Anonymous
}

// Snapshot returns principal, token and state read under one lock.
func (s *Store[P]) Snapshot() Snapshot[P] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.authed {
		return Snapshot[P]{State: Anonymous}
	}
	return Snapshot[P]{Principal: s.principal, Token: s.token, State: Authenticated}
}

// RestoreOutcome reports how reading the persisted record in New went.
func (s *Store[P]) RestoreOutcome() Outcome {
	return s.restore
}

// Login replaces the session with (principal, token) and persists it.
//
// An empty token or nil principal is a usage fault: the error is returned and
// the session is unchanged. Otherwise the in-memory session is always updated;
// persistence problems are reported in the Outcome only. When persisting
// fails, any previously persisted record is removed so a restart cannot
// restore a different principal.
func (s *Store[P]) Login(ctx context.Context, principal P, token string) (Outcome, error) {
	if token == "" {
		return Outcome{Op: OpPersist}, ErrEmptyToken
	}
	if isNil(principal) {
		return Outcome{Op: OpPersist}, ErrNilPrincipal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.principal, s.token, s.authed = principal, token, true

	err := s.safely(func() error {
		text, err := s.codec.Encode(principal)
		if err != nil {
			return wrap(ErrEncode, err)
		}
		if err := s.durable.Set(ctx, PrincipalKey, text); err != nil {
			return err
		}
		return s.durable.Set(ctx, TokenKey, token)
	})
	if err == nil {
		return Outcome{Op: OpPersist}, nil
	}

	if !errors.Is(err, ErrEncode) {
		err = wrap(ErrPersist, err)
	}
	_ = s.safely(func() error {
		return errors.Join(
			s.durable.Remove(ctx, PrincipalKey),
			s.durable.Remove(ctx, TokenKey),
		)
	})

	return s.report(ctx, OpPersist, err), nil
}

// Logout clears the session and erases it from the durable facility.
// The in-memory session is cleared even when erasing fails. Logging out an
// anonymous session is a no-op apart from the erase.
func (s *Store[P]) Logout(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero P
	s.principal, s.token, s.authed = zero, "", false

	err := s.safely(func() error {
		if s.opts.logoutScope == LogoutKeysOnly {
			return errors.Join(
				s.durable.Remove(ctx, PrincipalKey),
				s.durable.Remove(ctx, TokenKey),
			)
		}
		return s.durable.Clear(ctx)
	})
	if err != nil {
		return s.report(ctx, OpErase, wrap(ErrErase, err))
	}

	return Outcome{Op: OpErase}
}

// load reads the persisted record. Called once from New.
func (s *Store[P]) load(ctx context.Context) Outcome {
	var (
		token, text       string
		hasToken, hasText bool
	)

	err := s.safely(func() error {
		var err error
		if token, hasToken, err = lookup(ctx, s.durable, TokenKey); err != nil {
			return err
		}
		text, hasText, err = lookup(ctx, s.durable, PrincipalKey)
		return err
	})
	if err != nil {
		return s.report(ctx, OpRestore, wrap(ErrRestore, err))
	}

	switch {
	case !hasToken && !hasText:
		return Outcome{Op: OpRestore}
	case !hasToken || !hasText || token == "":
		return s.report(ctx, OpRestore, ErrIncompleteRecord)
	}

	var p P
	err = s.safely(func() error {
		var err error
		p, err = s.codec.Decode(text)
		return err
	})
	if err != nil {
		return s.report(ctx, OpRestore, wrap(ErrDecode, err))
	}
	if isNil(p) {
		return s.report(ctx, OpRestore, wrap(ErrDecode, ErrNilPrincipal))
	}

	s.principal, s.token, s.authed = p, token, true
	s.opts.logger.DebugContext(ctx, "session restored")

	return Outcome{Op: OpRestore}
}

// report logs a persistence failure and turns it into an Outcome.
func (s *Store[P]) report(ctx context.Context, op Op, err error) Outcome {
	s.opts.logger.WarnContext(ctx, "session persistence failed",
		slog.String("op", string(op)),
		slog.Any("error", err),
	)
	return Outcome{Op: op, Err: err}
}

// safely runs fn and converts a panic from the storage facility or codec into an error.
func (s *Store[P]) safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrStoragePanic, r)
		}
	}()
	return fn()
}

// lookup reads key, mapping storage.ErrNotFound to found == false.
func lookup(ctx context.Context, s storage.Storage, key string) (value string, found bool, err error) {
	value, err = s.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// wrap joins sentinel onto err unless err already matches it.
func wrap(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return errors.Join(sentinel, err)
}

// isNil reports whether v is nil or a nil pointer, map, slice, func, chan or interface.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
