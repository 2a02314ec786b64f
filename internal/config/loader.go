package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// envPrefix namespaces ambient settings, e.g. RESTDEMO_LOG_LEVEL.
	envPrefix = "RESTDEMO_"
	// configPathEnv points at an optional YAML file.
	configPathEnv = envPrefix + "CONFIG"
	maxPort       = 65535
)

// plainEnv maps the unprefixed variables the services have always read.
var plainEnv = map[string]string{
	"PORT":          "port",
	"DEBUG":         "debug",
	"ENVIRONMENT":   "environment",
	"HOSTNAME":      "hostname",
	"POD_NAMESPACE": "pod_namespace",
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(opts...))
//  2. file (YAML) if RESTDEMO_CONFIG is set
//  3. env with prefix RESTDEMO_
//  4. PORT, DEBUG, ENVIRONMENT, HOSTNAME, POD_NAMESPACE
func Load(_ context.Context, opts ...Option) (*Config, error) {
	base := New(opts...)
	k := koanf.New(".")

	if path := os.Getenv(configPathEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	// RESTDEMO_RATE_LIMIT_RPS -> rate_limit_rps (flat keys, underscores kept).
	prefixed := env.Provider(envPrefix, ".", func(s string) string {
		if s == configPathEnv {
			return ""
		}
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	plain := env.ProviderWithValue("", ".", plainEnvValue)
	if err := k.Load(plain, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// plainEnvValue keeps only the unprefixed variables. DEBUG is true only for
// a case-insensitive "true"; anything else, "1" included, is false.
func plainEnvValue(key, value string) (string, any) {
	name, ok := plainEnv[key]
	if !ok {
		return "", nil
	}
	if name == "debug" {
		return name, strings.EqualFold(value, "true")
	}
	return name, value
}

// Validate reports whether the configuration can be served.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Host) == "":
		return fmt.Errorf("%w: host must not be empty", ErrInvalidConfig)
	case c.Port <= 0 || c.Port > maxPort:
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	case c.RateLimitRPS < 0:
		return fmt.Errorf("%w: rate_limit_rps must not be negative", ErrInvalidConfig)
	case c.RateLimitRPS > 0 && c.RateLimitBurst <= 0:
		return fmt.Errorf("%w: rate_limit_burst must be positive when rate limiting", ErrInvalidConfig)
	case c.ShutdownTimeoutSec <= 0:
		return fmt.Errorf("%w: shutdown_timeout_sec must be positive", ErrInvalidConfig)
	}
	return nil
}
