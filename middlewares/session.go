package middlewares

import (
	"net/http"

	"github.com/dmitrymomot/finboard/pkg/session"
)

// Session returns middleware that provisions store into every request
// context. Handlers read it back with session.FromContext; handlers mounted
// outside this middleware get session.ErrNotProvided.
func Session[P any](store *session.Store[P]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(session.WithStore(r.Context(), store)))
		})
	}
}
