// Package session holds the authenticated principal and credential token of a
// finboard process and mirrors them into the durable storage facility so a
// restarted process resumes the session without re-authenticating.
//
// # Lifecycle
//
// A process resolves its storage facilities first, then creates exactly one
// store over the durable facility:
//
//	facilities := storage.NewGuard(openDurable, openSession).Resolve(ctx)
//	store := session.New[User](ctx, facilities.Durable, nil, session.WithLogger(log))
//
// New restores a previously persisted session when both keys ("user" and
// "accessToken") are present and the principal decodes. Anything else leaves
// the store anonymous.
//
// # Mutations
//
//	outcome, err := store.Login(ctx, user, "tok-123")
//	if err != nil {
//		// usage fault: empty token or nil principal
//	}
//	if !outcome.OK() {
//		// session works for this process but will not survive a restart
//	}
//
//	store.Logout(ctx) // always anonymous afterwards
//
// Login and Logout never fail because of storage. Persistence problems are
// reported in the returned [Outcome] and logged; the in-memory session is the
// authoritative result either way.
//
// By default Logout clears the whole durable namespace, not only the two
// session keys. Use [WithLogoutScope] with [LogoutKeysOnly] to narrow it.
//
// # Provisioning
//
// Consumers never reach the store through a global. It is injected into
// request contexts by middlewares.Session, or directly with [WithStore]:
//
//	s, err := session.FromContext[User](r.Context())
//	if errors.Is(err, session.ErrNotProvided) {
//		// wiring bug: handler mounted outside the session middleware
//	}
package session
