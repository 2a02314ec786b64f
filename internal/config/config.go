// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...Option) initializer to build a Config with defaults.
// - All loading functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"net"
	"strconv"
	"time"
)

// Default values shared by both services.
const (
	DefaultHost               = "0.0.0.0"
	DefaultEnvironment        = "development"
	DefaultUnknown            = "unknown"
	DefaultShutdownTimeoutSec = 30
	DefaultRateLimitBurst     = 20
)

// Default listen ports per service.
const (
	UserAPIPort   = 5000
	BookstorePort = 8000
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`
	// Host is the interface the HTTP server binds to.
	Host string `koanf:"host"`
	// Port is the TCP port the HTTP server listens on (PORT).
	Port int `koanf:"port"`
	// Debug turns on debug logging and access logs (DEBUG).
	Debug bool `koanf:"debug"`
	// Environment names the deployment environment (ENVIRONMENT).
	Environment string `koanf:"environment"`
	// PodName identifies the running pod (HOSTNAME).
	PodName string `koanf:"hostname"`
	// Namespace is the Kubernetes namespace (POD_NAMESPACE).
	Namespace string `koanf:"pod_namespace"`
	// RateLimitRPS is the per-client request rate; 0 disables limiting.
	RateLimitRPS float64 `koanf:"rate_limit_rps"`
	// RateLimitBurst is the per-client bucket size.
	RateLimitBurst int `koanf:"rate_limit_burst"`
	// ShutdownTimeoutSec bounds graceful shutdown.
	ShutdownTimeoutSec int `koanf:"shutdown_timeout_sec"`
}

// Option mutates the defaults before file and env layers apply.
type Option func(*Config)

// WithPort sets the default listen port.
func WithPort(port int) Option {
	return func(c *Config) {
		if port > 0 {
			c.Port = port
		}
	}
}

// WithLogLevel sets the default log level.
func WithLogLevel(level string) Option {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = level
		}
	}
}

// New creates a Config populated with defaults and the given options.
func New(opts ...Option) *Config {
	c := &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Host:               DefaultHost,
		Port:               UserAPIPort,
		Environment:        DefaultEnvironment,
		PodName:            DefaultUnknown,
		Namespace:          DefaultUnknown,
		RateLimitBurst:     DefaultRateLimitBurst,
		ShutdownTimeoutSec: DefaultShutdownTimeoutSec,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ShutdownTimeout returns the graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSec) * time.Second
}

// EffectiveLogLevel returns debug when Debug is set, else LogLevel.
func (c *Config) EffectiveLogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.LogLevel
}
