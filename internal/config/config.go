// Package config loads and validates the prompt optimizer configuration.
//
// DESIGN: Configuration comes from one YAML file (the embedded default or a
// user-supplied path). Loading happens in three passes:
//
//  1. ${VAR} and ${VAR:-default} references in the YAML are expanded
//  2. well-known environment variables override individual fields (env.go)
//  3. Validate() rejects incomplete or out-of-range settings
//
// FILES:
//   - config.go:     Root Config struct, Load(), Validate()
//   - env.go:        Environment variable overrides
//   - monitoring.go: Logging settings
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend authentication modes.
const (
	AuthNone   = "none"
	AuthBearer = "bearer"
	AuthSigV4  = "sigv4"
)

// DefaultShutdownTimeout bounds graceful shutdown when unset.
const DefaultShutdownTimeout = 30 * time.Second

// Config is the root configuration for the prompt optimizer.
type Config struct {
	App        AppConfig        `yaml:"app"`        // Deployment environment
	Server     ServerConfig     `yaml:"server"`     // HTTP server settings
	Backend    BackendConfig    `yaml:"backend"`    // Generation backend
	Think      ThinkConfig      `yaml:"think"`      // Think Mode sessions
	Monitoring MonitoringConfig `yaml:"monitoring"` // Logging
}

// AppConfig describes the deployment.
type AppConfig struct {
	Env string `yaml:"env"` // development, production
}

// IsProduction reports whether the app runs in production.
func (a AppConfig) IsProduction() bool { return a.Env == "production" }

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string          `yaml:"host"`             // Interface to bind
	Port            int             `yaml:"port"`             // Port to listen on
	ReadTimeout     time.Duration   `yaml:"read_timeout"`     // Max time to read request
	WriteTimeout    time.Duration   `yaml:"write_timeout"`    // Max time to write response
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"` // Graceful shutdown budget
	CORSOrigins     []string        `yaml:"cors_origins"`     // Allowed browser origins ("*" for any)
	RateLimit       RateLimitConfig `yaml:"rate_limit"`       // Per-IP limits
}

// Addr returns host:port.
func (s ServerConfig) Addr() string { return fmt.Sprintf("%s:%d", s.Host, s.Port) }

// RateLimitConfig configures the per-IP token bucket.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	MaxClients        int     `yaml:"max_clients"` // Bound on tracked IPs
}

// BackendConfig configures the OpenAI-compatible generation backend.
type BackendConfig struct {
	BaseURL       string        `yaml:"base_url"`       // e.g. http://127.0.0.1:1234/v1
	APIKey        string        `yaml:"api_key"`        // Bearer key, optional for local servers
	Model         string        `yaml:"model"`          // Omitted from requests when empty
	TopP          float64       `yaml:"top_p"`          // Nucleus sampling
	Timeout       time.Duration `yaml:"timeout"`        // Per generation call
	HealthTimeout time.Duration `yaml:"health_timeout"` // Liveness probe
	Auth          string        `yaml:"auth"`           // none, bearer, sigv4
	Region        string        `yaml:"region"`         // AWS region for sigv4
}

// ThinkConfig configures Think Mode.
type ThinkConfig struct {
	SessionTTL   time.Duration `yaml:"session_ttl"`   // Idle sessions expire after this
	AllowedUsers []string      `yaml:"allowed_users"` // Empty admits everyone
}

var envPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// ExpandEnvWithDefaults expands ${VAR} and ${VAR:-default} references.
// Unset or empty variables without a default expand to "".
func ExpandEnvWithDefaults(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := envPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) > 2 {
			return parts[2]
		}
		return ""
	})
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config file path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	return LoadFromBytes(data)
}

// LoadFromBytes parses configuration from raw YAML bytes, applies
// environment overrides and validates the result.
func LoadFromBytes(data []byte) (*Config, error) {
	expanded := ExpandEnvWithDefaults(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// normalize fills derivable values.
func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(c.Backend.BaseURL), "/")
	if c.Backend.Auth == "" {
		if c.Backend.APIKey != "" {
			c.Backend.Auth = AuthBearer
		} else {
			c.Backend.Auth = AuthNone
		}
	}
	if c.App.Env == "" {
		c.App.Env = "development"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	c.Monitoring.LogLevel = strings.ToLower(c.Monitoring.LogLevel)
	if c.Monitoring.LogLevel == "warning" {
		c.Monitoring.LogLevel = "warn"
	}
	c.Think.AllowedUsers = compact(c.Think.AllowedUsers)
	c.Server.CORSOrigins = compact(c.Server.CORSOrigins)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ReadTimeout == 0 {
		return fmt.Errorf("server.read_timeout is required")
	}
	if c.Server.WriteTimeout == 0 {
		return fmt.Errorf("server.write_timeout is required")
	}
	if rl := c.Server.RateLimit; rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			return fmt.Errorf("server.rate_limit.requests_per_second must be > 0 when enabled")
		}
		if rl.Burst < 1 {
			return fmt.Errorf("server.rate_limit.burst must be >= 1 when enabled")
		}
	}

	// Backend validation
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("invalid backend.base_url: %q (must start with http:// or https://)", c.Backend.BaseURL)
	}
	if c.Backend.TopP < 0 || c.Backend.TopP > 1 {
		return fmt.Errorf("invalid backend.top_p: %v (must be 0-1)", c.Backend.TopP)
	}
	if c.Backend.Timeout == 0 {
		return fmt.Errorf("backend.timeout is required")
	}
	switch c.Backend.Auth {
	case AuthNone:
	case AuthBearer:
		if c.Backend.APIKey == "" {
			return fmt.Errorf("backend.api_key is required when backend.auth is %q", AuthBearer)
		}
	case AuthSigV4:
		if c.Backend.Region == "" {
			return fmt.Errorf("backend.region is required when backend.auth is %q", AuthSigV4)
		}
	default:
		return fmt.Errorf("invalid backend.auth: %q (must be none, bearer or sigv4)", c.Backend.Auth)
	}

	// Think Mode validation
	if c.Think.SessionTTL < 0 {
		return fmt.Errorf("think.session_ttl must not be negative")
	}

	if err := c.Monitoring.Validate(); err != nil {
		return err
	}

	return nil
}

func compact(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
