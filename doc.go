// Package finboard wires the session subsystem of the financial dashboard
// into a runnable service.
//
// New resolves the durable and session-scoped storage facilities through
// storage.Guard, restores any persisted session into a session.Store and
// mounts the dashboard API on a chi router:
//
//	cfg, err := config.Load("finboard.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	app := finboard.New(
//	    finboard.WithLogger(logger.New(cfg.Log, os.Stdout, middlewares.RequestIDExtractor())),
//	    finboard.WithConfig(cfg),
//	)
//
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Routes
//
//	GET    /api/session   current session
//	POST   /api/session   log in: {"user":{...},"token":"..."}
//	DELETE /api/session   log out
//	GET    /health/live   liveness
//	GET    /health/ready  readiness of both storage facilities
//
// # Storage
//
// The facilities come from WithStorage openers or, with WithConfig, from the
// configured drivers (memory, sqlite, redis, postgres, s3, none). A backend
// that cannot be opened or probed is replaced by an in-memory facility; the
// service still starts and sessions then last only as long as the process.
//
// # Lifecycle
//
// Run blocks until SIGINT, SIGTERM or Stop, then shuts the server down, runs
// the shutdown hooks and closes the facilities. Close does the same for an
// App that never served.
package finboard
