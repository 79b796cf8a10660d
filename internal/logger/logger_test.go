package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/errfunnel/internal/config"
)

func TestNewLoggerService_WithoutLicense(t *testing.T) {
	svc := NewLoggerService(config.DefaultObservabilityConfig())

	assert.Nil(t, svc.GetApplication())
	assert.NotPanics(t, svc.Shutdown)

	var nilSvc *LoggerService
	assert.Nil(t, nilSvc.GetApplication())
	assert.NotPanics(t, nilSvc.Shutdown)
}

func TestNewLogger_JSONFields(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Environment = config.EnvProduction

	var buf bytes.Buffer
	log := newLogger(cfg, &buf)
	log.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "errfunnel", entry["service"])
	assert.Equal(t, config.EnvProduction, entry["environment"])
}

func TestNewLogger_Level(t *testing.T) {
	cfg := config.DefaultObservabilityConfig()
	cfg.Logging.Level = "warn"

	var buf bytes.Buffer
	log := newLogger(cfg, &buf)
	log.Info().Msg("dropped")

	assert.Empty(t, buf.String())
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())
}

func TestZerologSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewZerologSink(zerolog.New(&buf))

	sink.Error("💥 boom")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "💥 boom", entry["message"])
}

func TestWithTraceContext_NilTransaction(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	log := WithTraceContext(base, nil)
	log.Info().Msg("x")

	assert.NotContains(t, buf.String(), "trace.id")
}
