// Package health provides HTTP handlers for liveness and readiness probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] in parallel under a shared
// timeout and answers 503 when any of them fails.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"durable": storage.Healthcheck(facilities.Durable),
//		"session": storage.Healthcheck(facilities.Session),
//	}, health.WithLogger(log)))
//
// Responses are plain text ("OK" or "Service Unavailable") unless the client
// sends Accept: application/json or ?format=json:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "durable": {"status": "healthy"},
//	    "session": {"status": "unhealthy", "error": "storage: read failed"}
//	  }
//	}
//
// A check that panics or exceeds the timeout is reported as unhealthy.
package health
