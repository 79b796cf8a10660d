// Package server defines the core Server struct that composes the app's main
// dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - http.Server
//
// It provides constructors and start/shutdown logic to run the application
// cleanly.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/errfunnel/internal/config"
	loggerPkg "github.com/deppfellow/errfunnel/internal/logger"
)

// Server is the application container that holds shared resources.
//
// It is not the HTTP server itself; that one is configured in
// SetupHTTPServer and started in Start.
type Server struct {
	Config *config.Config

	// Logger is the application's main structured logger.
	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	httpServer *http.Server
}

// New constructs a Server. It does not start listening.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
// Config timeouts are seconds.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start runs the HTTP server and blocks until it stops. It requires
// SetupHTTPServer to be called first.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the application.
//
// Order:
//  1. Stop accepting connections and wait for in-flight requests until ctx
//     expires. Their errors still go through the terminal handler and reach
//     the logs.
//  2. Flush and stop New Relic, so the last transactions and forwarded log
//     lines are sent.
//
// A failed HTTP shutdown returns early and leaves New Relic to the process
// exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown()

	return nil
}
