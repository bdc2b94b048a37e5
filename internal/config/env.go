package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// envOverrides lists the environment variables that override YAML values.
// Nil pointers and empty slices mean "not set".
type envOverrides struct {
	AppEnv         *string  `env:"APP_ENV"`
	Host           *string  `env:"APP_HOST"`
	Port           *int     `env:"APP_PORT"`
	LogLevel       *string  `env:"LOG_LEVEL"`
	BaseURL        *string  `env:"LM_STUDIO_BASE_URL"`
	APIKey         *string  `env:"LM_STUDIO_API_KEY"`
	Model          *string  `env:"LM_STUDIO_MODEL"`
	TopP           *float64 `env:"LM_STUDIO_TOP_P"`
	TimeoutSeconds *int     `env:"REQUEST_TIMEOUT_SECONDS"`
	AllowedUsers   []string `env:"TELEGRAM_ALLOWED_USER_IDS" envSeparator:","`
	CORSOrigins    []string `env:"CORS_ORIGINS" envSeparator:","`
}

// applyEnvOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvOverrides() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}

	setString(&c.App.Env, o.AppEnv)
	setString(&c.Server.Host, o.Host)
	setString(&c.Monitoring.LogLevel, o.LogLevel)
	setString(&c.Backend.BaseURL, o.BaseURL)
	setString(&c.Backend.APIKey, o.APIKey)
	setString(&c.Backend.Model, o.Model)

	if o.Port != nil {
		c.Server.Port = *o.Port
	}
	if o.TopP != nil {
		c.Backend.TopP = *o.TopP
	}
	if o.TimeoutSeconds != nil {
		c.Backend.Timeout = time.Duration(*o.TimeoutSeconds) * time.Second
	}
	if len(o.AllowedUsers) > 0 {
		c.Think.AllowedUsers = o.AllowedUsers
	}
	if len(o.CORSOrigins) > 0 {
		c.Server.CORSOrigins = o.CORSOrigins
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil && strings.TrimSpace(*v) != "" {
		*dst = strings.TrimSpace(*v)
	}
}
