// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, applies defaults and
// validates the result so the values can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad config.
//   - Provide defaults for every optional block.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the ERRFUNNEL_ prefix. Keys are lowercased, the
	prefix is removed and a double underscore marks one level of nesting:

	  ERRFUNNEL_SERVER__PORT        -> server.port        -> Config.Server.Port
	  ERRFUNNEL_ERRORS__API_PREFIX  -> errors.api_prefix  -> Config.Errors.APIPrefix

	A single underscore stays part of the key so snake_case names survive.
*/

const (
	envPrefix    = "ERRFUNNEL_"
	envSeparator = "__"

	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Errors        ErrorsConfig         `koanf:"errors" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=development production test"`
}

// ServerConfig groups settings for the HTTP server runtime. Timeouts are in
// seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// RateLimit is the sustained requests per second allowed per client IP
	// on the API. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// ErrorsConfig controls how the terminal error handler shapes responses.
//
// Requests whose path starts with APIPrefix get JSON in production; every
// other request gets ErrorView rendered.
type ErrorsConfig struct {
	APIPrefix string `koanf:"api_prefix" validate:"required,startswith=/"`
	ErrorView string `koanf:"error_view" validate:"required"`
}

// DefaultConfig returns a configuration that runs a development server on
// :8080 without any environment set.
func DefaultConfig() *Config {
	return &Config{
		Primary: Primary{
			Env: EnvDevelopment,
		},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: []string{"*"},
		},
		Errors: ErrorsConfig{
			APIPrefix: "/api",
			ErrorView: "error",
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// envKey maps ERRFUNNEL_ERRORS__API_PREFIX to errors.api_prefix.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return strings.ReplaceAll(key, envSeparator, ".")
}

// unmarshalConf decodes with the koanf tag. Comma separated env values fill
// slice fields, so ERRFUNNEL_SERVER__CORS_ALLOWED_ORIGINS="https://a,https://b"
// yields two origins instead of one.
func unmarshalConf(out *Config) koanf.UnmarshalConf {
	return koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           out,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
}

// LoadConfig loads configuration from environment variables on top of
// DefaultConfig, validates it and fills in observability defaults.
//
// Observability.ServiceName is always "errfunnel" and
// Observability.Environment always follows Primary.Env so logs and traces
// agree on naming.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := DefaultConfig()
	if err := k.UnmarshalWithConf("", mainConfig, unmarshalConf(mainConfig)); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	mainConfig.Observability.ServiceName = "errfunnel"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// IsProduction reports whether the terminal error handler should hide
// internals from clients.
func (c *Config) IsProduction() bool {
	return c.Primary.Env == EnvProduction
}
