package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/deppfellow/errfunnel/internal/logger"
	"github.com/deppfellow/errfunnel/internal/server"
)

// GlobalMiddlewares groups "global" middleware and the terminal error
// handler, so they can all read config and the logger from *server.Server.
type GlobalMiddlewares struct {
	server *server.Server
	funnel *errorFunnel
}

// NewGlobalMiddlewares constructs the middleware bundle. The terminal error
// handler is configured here, once, from the server config.
func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
		funnel: newErrorFunnel(ErrorHandlerConfig{
			Sink:         logger.NewZerologSink(*s.Logger),
			IsProduction: s.Config.IsProduction(),
			APIPrefix:    s.Config.Errors.APIPrefix,
			ErrorView:    s.Config.Errors.ErrorView,
		}),
	}
}

// ErrorHandler returns the terminal error handler to install on Echo.
func (global *GlobalMiddlewares) ErrorHandler() echo.HTTPErrorHandler {
	return global.funnel.handle
}

// CORS returns Echo's CORS middleware configured from the server config.
func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger returns Echo's request logger middleware with a custom
// LogValuesFunc writing one "API" line per request through the
// request-scoped zerolog logger. Severity follows the status: 5xx at error,
// 4xx at warn, everything else at info.
//
// Status quirk: when the handler returned an error, the logger runs before
// Echo calls the terminal error handler, so v.Status is still 200. The
// status logged is instead the one the terminal handler is going to send,
// computed by the same decision (funnel.status) without writing anything.
// Calling c.Error here would also fix the status but would log the error
// twice.
// Reference: https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status
			if v.Error != nil {
				statusCode = global.funnel.status(v.Error, c)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

// Recover turns panics that escape handlers into errors for the terminal
// handler. Handlers wrapped by handler.CatchAsync never get here.
func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisablePrintStack: true,
	})
}

// Secure returns Echo's secure headers middleware.
func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}
