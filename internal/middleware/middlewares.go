package middleware

import (
	"github.com/deppfellow/errfunnel/internal/server"
)

// Middlewares groups every middleware component used by the HTTP server so
// they are built once from the application container.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// terminal error handler.
	Global *GlobalMiddlewares

	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware
	RateLimit       *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. Tracing becomes a
// no-op when New Relic is not configured.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
