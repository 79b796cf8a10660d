package config

import (
	"fmt"
)

// ObservabilityConfig groups all configuration related to telemetry and
// runtime visibility: logging and the New Relic APM integration.
//
// It is embedded under Config.Observability. ServiceName and Environment are
// overwritten in LoadConfig.
type ObservabilityConfig struct {
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment splits telemetry by environment (production, development).
	Environment string `koanf:"environment" validate:"required"`

	Logging  LoggingConfig  `koanf:"logging" validate:"required"`
	NewRelic NewRelicConfig `koanf:"new_relic"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level"`

	// Format is "json" or "console".
	Format string `koanf:"format" validate:"required,oneof=json console"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
//
// An empty LicenseKey means New Relic is not configured; the logger and the
// tracing middleware then run without it.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`

	// DebugLogging enables agent debug output. Off by default to avoid mixed
	// log formats.
	DebugLogging bool `koanf:"debug_logging"`
}

// DefaultObservabilityConfig provides the defaults used when nothing is set
// in the environment.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		ServiceName: "errfunnel",
		Environment: EnvDevelopment,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		NewRelic: NewRelicConfig{
			LicenseKey:                "",
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false,
		},
	}
}

// Validate applies the rules that go beyond struct tags.
//
// LoadConfig calls it after filling ServiceName and Environment. Rules:
//   - ServiceName must not be empty.
//   - Logging.Level may be empty (GetLogLevel then picks one from the
//     environment) or one of debug, info, warn, error.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"":      true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	return nil
}

// GetLogLevel returns the effective log level: the configured one, or
// "info" in production and "debug" elsewhere when none is set.
func (c *ObservabilityConfig) GetLogLevel() string {
	if c.Logging.Level != "" {
		return c.Logging.Level
	}
	if c.IsProduction() {
		return "info"
	}
	return "debug"
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == EnvProduction
}

// NewRelicEnabled reports whether a New Relic license key is configured.
func (c *ObservabilityConfig) NewRelicEnabled() bool {
	return c.NewRelic.LicenseKey != ""
}
