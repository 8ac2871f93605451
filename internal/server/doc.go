// Package server exposes the session controller as a JSON HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns ("POST /api/login") internally.
//
// # API Handler
//
// [APIHandler] implements [Handler] and serves every /api route. Login registers the new session in a
// [session.Registry] and returns its ID; protected routes read the X-Session-ID header and resolve it
// back to the session before calling the controller.
//
// Errors map to status codes: 400 invalid input, 401 not authenticated or bad credentials, 404 no
// match, 409 duplicate, 502 provider failure, 500 otherwise. Bodies are {"error": "..."}.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
