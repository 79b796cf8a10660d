// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares, installs the terminal error handler and the
// view renderer, and maps the route groups to their handlers.
package router

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/errfunnel/internal/handler"
	"github.com/deppfellow/errfunnel/internal/middleware"
	"github.com/deppfellow/errfunnel/internal/render"
	"github.com/deppfellow/errfunnel/internal/server"
)

// NewRouter builds the Echo instance serving s.
//
// Middleware order (outermost first):
//  1. RequestID: every later layer reads the id.
//  2. NewRelicMiddleware, EnhanceTracing: the transaction must exist before
//     the request-scoped logger is built, so log lines carry trace ids.
//  3. EnhanceContext: request-scoped logger.
//  4. RequestLogger: sees the error a handler returned, before Echo hands it
//     to the terminal handler.
//  5. Recover: inside the logger, so a recovered panic is logged with the
//     500 it turns into.
//  6. Secure, CORS.
//
// The terminal error handler itself is not a middleware. Echo calls it after
// the whole chain returned, outside Recover, so it must never panic.
func NewRouter(s *server.Server, h *handler.Handlers) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	renderer, err := render.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.Renderer = renderer
	router.HTTPErrorHandler = middlewares.Global.ErrorHandler()

	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, h)

	api := router.Group(s.Config.Errors.APIPrefix, middlewares.RateLimit.Limit())
	registerEchoRoutes(api.Group("/v1"), h)

	return router, nil
}

func registerEchoRoutes(r *echo.Group, h *handler.Handlers) {
	e := h.Echo

	r.GET("/echo", handler.CatchAsync(e.List))
	r.POST("/echo", handler.Handle(e.Handler, e.Create, http.StatusCreated, &handler.CreateEchoRequest{}))
	r.GET("/echo/:id", handler.Handle(e.Handler, e.Get, http.StatusOK, &handler.GetEchoRequest{}))
	r.DELETE("/echo/:id", handler.HandleNoContent(e.Handler, e.Delete, http.StatusNoContent, &handler.GetEchoRequest{}))
}
