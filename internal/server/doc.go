// Package server provides the HTTP plumbing of the local OAuth2 redirect listener.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first).
// [Logging] records each request without its query string.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Callback Handler
//
// [CallbackHandler] accepts exactly one redirect, hands its URL to the waiting caller and
// answers with a static page. Later requests are refused with 409 Conflict.
// The token acquirer in package auth owns the listener lifecycle and the code exchange.
package server
