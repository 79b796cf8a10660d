package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/deppfellow/errfunnel/internal/config"
	"github.com/deppfellow/errfunnel/internal/handler"
	"github.com/deppfellow/errfunnel/internal/logger"
	"github.com/deppfellow/errfunnel/internal/router"
	"github.com/deppfellow/errfunnel/internal/server"
)

const DefaultContextTimeout = 30

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		bootLog.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService := logger.NewLoggerService(cfg.Observability)

	log := logger.NewLogger(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	handlers := handler.NewHandlers(srv)

	r, err := router.NewRouter(srv, handlers)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize router")
	}

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server exited properly")
}
