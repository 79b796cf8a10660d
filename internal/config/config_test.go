package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Primary.Env)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/api", cfg.Errors.APIPrefix)
	assert.Equal(t, "error", cfg.Errors.ErrorView)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, "errfunnel", cfg.Observability.ServiceName)
	assert.Equal(t, EnvDevelopment, cfg.Observability.Environment)
	assert.False(t, cfg.Observability.NewRelicEnabled())
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ERRFUNNEL_PRIMARY__ENV", "production")
	t.Setenv("ERRFUNNEL_SERVER__PORT", "9090")
	t.Setenv("ERRFUNNEL_SERVER__CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("ERRFUNNEL_ERRORS__API_PREFIX", "/v2")
	t.Setenv("ERRFUNNEL_ERRORS__ERROR_VIEW", "oops")
	t.Setenv("ERRFUNNEL_OBSERVABILITY__LOGGING__LEVEL", "warn")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "/v2", cfg.Errors.APIPrefix)
	assert.Equal(t, "oops", cfg.Errors.ErrorView)

	// Untouched observability fields keep their defaults.
	assert.Equal(t, "warn", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
	assert.Equal(t, EnvProduction, cfg.Observability.Environment)
	assert.True(t, cfg.Observability.IsProduction())
}

func TestLoadConfig_CORSOrigins(t *testing.T) {
	tests := []struct {
		value string
		want  []string
	}{
		{"https://a.example", []string{"https://a.example"}},
		{"https://a.example,https://b.example,https://c.example", []string{"https://a.example", "https://b.example", "https://c.example"}},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("ERRFUNNEL_SERVER__CORS_ALLOWED_ORIGINS", tt.value)

			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Server.CORSAllowedOrigins)
		})
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown env", "ERRFUNNEL_PRIMARY__ENV", "staging"},
		{"api prefix without slash", "ERRFUNNEL_ERRORS__API_PREFIX", "api"},
		{"bad log level", "ERRFUNNEL_OBSERVABILITY__LOGGING__LEVEL", "verbose"},
		{"bad log format", "ERRFUNNEL_OBSERVABILITY__LOGGING__FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "errors.api_prefix", envKey("ERRFUNNEL_ERRORS__API_PREFIX"))
	assert.Equal(t, "observability.new_relic.license_key", envKey("ERRFUNNEL_OBSERVABILITY__NEW_RELIC__LICENSE_KEY"))
	assert.Equal(t, "primary.env", envKey("ERRFUNNEL_PRIMARY__ENV"))
}

func TestObservabilityConfig_GetLogLevel(t *testing.T) {
	c := DefaultObservabilityConfig()
	c.Logging.Level = ""

	assert.Equal(t, "debug", c.GetLogLevel())

	c.Environment = EnvProduction
	assert.Equal(t, "info", c.GetLogLevel())

	c.Logging.Level = "error"
	assert.Equal(t, "error", c.GetLogLevel())
}
