package handler

import (
	"github.com/deppfellow/errfunnel/internal/server"
)

// Handlers groups all HTTP handlers so router setup takes one value.
type Handlers struct {
	Health *HealthHandler
	Echo   *EchoHandler
}

func NewHandlers(s *server.Server) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(s),
		Echo:   NewEchoHandler(s),
	}
}
