// Package logging builds the process logger.
//
// New returns a *slog.Logger whose handler chain adds request-scoped fields
// from the context (request_id, caller, trace_id) and scrubs credentials
// from attribute values before they reach the JSON or text encoder. The
// places API key travels in a query string, so any URL that ends up in a
// log line has its key= parameter masked.
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", RedactSecrets: true})
//	slog.SetDefault(logger)
//
//	ctx = logging.WithRequestID(ctx, id)
//	logger.InfoContext(ctx, "search served", "cache", "hit")
package logging
