package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/errfunnel/internal/handler"
)

// registerSystemRoutes registers endpoints that sit outside the API prefix.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", handler.CatchAsync(h.Health.CheckHealth))
}
