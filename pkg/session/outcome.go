package session

// Op names the persistence step an Outcome describes.
type Op string

const (
	OpRestore Op = "restore"
	OpPersist Op = "persist"
	OpErase   Op = "erase"
)

// Outcome reports how a best-effort persistence step went.
// A failed Outcome never means the in-memory state change failed.
type Outcome struct {
	Err error
	Op  Op
}

// OK reports whether the durable facility reflects the in-memory state.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// State of the session state machine.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// MarshalText encodes the state as its name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is a consistent view of the session at one instant.
// Principal and Token are zero values when State is Anonymous.
type Snapshot[P any] struct {
	Principal P      `json:"user"`
	Token     string `json:"token,omitempty"`
	State     State  `json:"state"`
}

// Authenticated reports whether the snapshot holds a principal and token.
func (s Snapshot[P]) Authenticated() bool {
	return s.State == Authenticated
}
