// Package middlewares provides net/http middleware for the finboard API.
// Every middleware has the func(http.Handler) http.Handler shape and plugs
// straight into chi.
//
// # Request ID
//
// RequestID keeps an upstream X-Request-ID (or X-Correlation-ID) and otherwise
// generates a UUID. Pair it with RequestIDExtractor so every log line written
// with the request context carries request_id:
//
//	log := logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())
//	r.Use(middlewares.RequestID())
//
// # Recover
//
// Recover converts a handler panic into a 500 JSON response and logs the
// panic value and stack:
//
//	r.Use(middlewares.Recover(middlewares.WithRecoverLogger(log)))
//
// # Session
//
// Session provisions the process's session store into each request context:
//
//	r.Use(middlewares.Session(store))
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		s, err := session.FromContext[dashboard.User](r.Context())
//		...
//	}
package middlewares
