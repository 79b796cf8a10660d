// Package middleware stores global and route-specific middleware and the
// terminal error handler.
//
// Every error a handler returns ends in the handler built by
// NewErrorHandler. The middleware around it handles cross-cutting concerns
// such as request IDs, request logging, tracing, CORS, rate limiting and
// panic recovery.
package middleware
