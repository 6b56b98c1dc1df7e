// Package health serves the liveness, readiness and version endpoints.
//
//   - /health: the process is up. Always 200.
//   - /ready: every registered check passes. 503 otherwise.
//   - /version: build information.
//
// Readiness checks run concurrently, each bounded by the checker's timeout.
// The gateway registers a credential check so an instance without a places
// API key is reported as not ready instead of answering every search with
// a configuration error.
//
//	checker := health.New(2 * time.Second)
//	checker.RegisterCheck("places_credential", health.CredentialCheck(client))
//	health.Register(router, checker, version.Info())
package health
