// Package logger configures the application's logging and monitoring.
//
// It uses *zerolog* for logging and integrates with *New Relic* to forward
// logs and traces when a license key is configured. It also provides Sink,
// the minimal diagnostic channel the terminal error handler writes to.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"

	"github.com/deppfellow/errfunnel/internal/config"
)

// LoggerService owns the optional New Relic application.
type LoggerService struct {
	nrApp *newrelic.Application
}

// NewLoggerService starts New Relic when a license key is configured. A
// failure to start is reported on stderr and the service continues without
// it.
func NewLoggerService(cfg *config.ObservabilityConfig) *LoggerService {
	service := &LoggerService{}

	if !cfg.NewRelicEnabled() {
		fmt.Fprintln(os.Stderr, "New Relic license key not provided, skipping initialization")
		return service
	}

	configOptions := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
	}
	if cfg.NewRelic.DebugLogging {
		configOptions = append(configOptions, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(configOptions...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize New Relic: %v\n", err)
		return service
	}

	service.nrApp = app
	fmt.Fprintf(os.Stdout, "New Relic initialized for app: %s\n", cfg.ServiceName)
	return service
}

// Shutdown flushes and stops New Relic. Safe to call when it never started.
func (ls *LoggerService) Shutdown() {
	if ls == nil || ls.nrApp == nil {
		return
	}
	ls.nrApp.Shutdown(10 * time.Second)
}

// GetApplication returns the New Relic application, or nil.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// NewLogger builds the application logger. Production output is JSON
// (forwarded to New Relic when enabled); development may use the console
// writer.
func NewLogger(cfg *config.ObservabilityConfig, loggerService *LoggerService) zerolog.Logger {
	var out io.Writer = os.Stdout

	if app := loggerService.GetApplication(); app != nil {
		nrWriter := zerologWriter.New(os.Stdout, app)
		out = nrWriter
	}

	return newLogger(cfg, out)
}

func newLogger(cfg *config.ObservabilityConfig, out io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	zerolog.TimeFieldFormat = "2006-01-02 15:04:05"
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	if cfg.Logging.Format == "console" && !cfg.IsProduction() {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "2006-01-02 15:04:05"}
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	if !cfg.IsProduction() {
		logger = logger.With().Stack().Logger()
	}

	return logger
}

// WithTraceContext adds New Relic trace and span ids to the logger when the
// transaction carries them.
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}

	metadata := txn.GetTraceMetadata()
	if metadata.TraceID == "" {
		return logger
	}

	return logger.With().
		Str("trace.id", metadata.TraceID).
		Str("span.id", metadata.SpanID).
		Logger()
}
