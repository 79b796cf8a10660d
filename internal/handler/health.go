package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/errfunnel/internal/middleware"
	"github.com/deppfellow/errfunnel/internal/server"
)

// HealthHandler exposes the endpoint load balancers and uptime monitors use
// to verify the service is alive.
type HealthHandler struct {
	Handler
	startedAt time.Time
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler:   NewHandler(s),
		startedAt: time.Now(),
	}
}

// HealthResponse is the body of GET /status.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
	Uptime      string    `json:"uptime"`
	NewRelic    bool      `json:"newRelic"`
}

// CheckHealth always answers 200 while the process can serve requests.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Uptime:      time.Since(h.startedAt).Round(time.Second).String(),
		NewRelic:    h.server.LoggerService.GetApplication() != nil,
	}

	if err := c.JSON(http.StatusOK, response); err != nil {
		logger.Error().Err(err).Msg("failed to write JSON response")
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	logger.Debug().Msg("health check passed")
	return nil
}
