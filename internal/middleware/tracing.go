package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware owns New Relic related Echo middleware.
//
// nrApp is nil when New Relic is not configured; both layers then pass the
// request through unchanged.
//
// This middleware has two layers:
//  1. NewRelicMiddleware()  -> installs New Relic transaction handling into Echo
//  2. EnhanceTracing()      -> adds custom attributes and notices failures
type TracingMiddleware struct {
	nrApp *newrelic.Application
}

func NewTracingMiddleware(nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{nrApp: nrApp}
}

// NewRelicMiddleware returns the New Relic Echo middleware.
//
// What it does:
//   - If nrApp is nil, return a no-op middleware.
//   - Otherwise return nrecho.Middleware(tm.nrApp), which starts a
//     transaction for each request, stores it in the request context and
//     records timing and status codes.
//
// This middleware is what makes newrelic.FromContext(...) work later.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing adds custom attributes to New Relic transactions.
//
// It assumes NewRelicMiddleware() already ran so a transaction exists in
// the request context.
//
// What it adds:
//   - client IP, user agent and request id
//   - error.name, error.operational and error.status_code when the handler
//     returned an error, classified the same way the terminal handler does
//   - response status code (after the handler)
//
// Only non-operational failures are sent to NoticeError. A 404 or a
// validation failure is an expected outcome and would only inflate the
// error rate.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("http.user_agent", c.Request().UserAgent())
			if requestID := GetRequestID(c); requestID != "" {
				txn.AddAttribute("request.id", requestID)
			}

			err := next(c)

			// The response is not written yet when err != nil; the terminal
			// handler runs after this middleware returns.
			if err != nil {
				desc := writable(Resolve(err).Describe().Normalized())
				txn.AddAttribute("error.name", desc.Name)
				txn.AddAttribute("error.operational", desc.IsOperational)
				txn.AddAttribute("error.status_code", desc.StatusCode)

				if !desc.IsOperational {
					txn.NoticeError(nrpkgerrors.Wrap(err))
				}
			}

			txn.AddAttribute("http.status_code", c.Response().Status)

			return err
		}
	}
}
