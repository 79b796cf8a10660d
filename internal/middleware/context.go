package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/deppfellow/errfunnel/internal/logger"
	"github.com/deppfellow/errfunnel/internal/server"
)

type contextKey string

// LoggerKey stores the request-scoped logger in Echo context and in the
// request's context.Context.
const LoggerKey = "logger"

const loggerCtxKey contextKey = LoggerKey

// ContextEnhancer builds a request-scoped logger carrying request_id,
// method, path, ip and, when New Relic is on, trace.id/span.id.
type ContextEnhancer struct {
	server *server.Server
}

func NewContextEnhancer(s *server.Server) *ContextEnhancer {
	return &ContextEnhancer{server: s}
}

// EnhanceContext stores the request logger in both the Echo context and the
// request context so code that only sees a context.Context can log too.
// It must run after RequestID.
func (ce *ContextEnhancer) EnhanceContext() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			contextLogger := ce.server.Logger.With().
				Str("request_id", GetRequestID(c)).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Str("ip", c.RealIP()).
				Logger()

			if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
				contextLogger = logger.WithTraceContext(contextLogger, txn)
			}

			c.Set(LoggerKey, &contextLogger)

			ctx := context.WithValue(c.Request().Context(), loggerCtxKey, &contextLogger)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// GetLogger retrieves the request-scoped logger from Echo context, or a
// no-op logger when EnhanceContext did not run.
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(LoggerKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}

// LoggerFromContext is GetLogger for code that only has a context.Context.
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerCtxKey).(*zerolog.Logger); ok {
		return logger
	}

	logger := zerolog.Nop()
	return &logger
}
