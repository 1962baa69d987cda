// Package transport defines the storage-facing handler contracts and the
// HTTP middleware chain shared by the catalog server.
//
// # Middleware
//
// Middleware wraps an http.Handler with cross-cutting behavior. Chain
// composes middleware so that the first element is the outermost wrapper.
// Built-in middleware provides panic recovery, request ID assignment
// (X-Request-ID), and structured request logging via log/slog.
//
// # Errors
//
// Handlers report failures as *api.APIError values. WriteAPIError derives
// the HTTP status from the error type and writes the JSON error envelope.
package transport
