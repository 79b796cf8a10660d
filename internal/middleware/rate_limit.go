package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/deppfellow/errfunnel/internal/errs"
	"github.com/deppfellow/errfunnel/internal/server"
)

// RateLimitMiddleware limits requests per client IP. Rejections are
// operational 429 errors handled by the terminal error handler, and each hit
// is recorded as a New Relic custom event when New Relic is on.
type RateLimitMiddleware struct {
	server *server.Server
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server: s,
	}
}

// Limit returns the limiter, or a pass-through when Server.RateLimit is 0.
func (r *RateLimitMiddleware) Limit() echo.MiddlewareFunc {
	perSecond := r.server.Config.Server.RateLimit
	if perSecond <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	store := middleware.NewRateLimiterMemoryStore(rate.Limit(perSecond))

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errs.NewForbiddenError("Could not identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			r.RecordRateLimitHit(c.Path())
			return errs.NewAppError("Too many requests, please try again later.", http.StatusTooManyRequests, nil, "", "TOO_MANY_REQUESTS")
		},
	})
}

// RecordRateLimitHit records a RateLimitHit custom event for endpoint.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if app := r.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("RateLimitHit", map[string]any{
			"endpoint": endpoint,
		})
	}
}
