package session

import "errors"

// Usage faults. These are returned to callers; they signal a bug in the
// consuming code, not a storage problem.
var (
	// ErrNotProvided is returned by FromContext when no store was provisioned
	// for the context. It is distinct from an anonymous session.
	ErrNotProvided = errors.New("session: store not provided")

	// ErrEmptyToken is returned by Login when the token is empty.
	ErrEmptyToken = errors.New("session: empty token")

	// ErrNilPrincipal is returned by Login when the principal is nil.
	ErrNilPrincipal = errors.New("session: nil principal")
)

// Persistence failures. These never escape as errors; they are reported in
// an Outcome and logged.
var (
	// ErrEncode is reported when the principal cannot be serialized.
	ErrEncode = errors.New("session: failed to encode principal")

	// ErrDecode is reported when the persisted principal cannot be deserialized.
	ErrDecode = errors.New("session: failed to decode principal")

	// ErrPersist is reported when writing the session record fails.
	ErrPersist = errors.New("session: failed to persist session")

	// ErrRestore is reported when reading the session record fails.
	ErrRestore = errors.New("session: failed to restore session")

	// ErrErase is reported when clearing the session record fails.
	ErrErase = errors.New("session: failed to erase session")

	// ErrIncompleteRecord is reported when only one of the two session keys is persisted.
	ErrIncompleteRecord = errors.New("session: incomplete persisted record")

	// ErrStoragePanic is reported when the storage facility panics.
	ErrStoragePanic = errors.New("session: storage facility panicked")
)
