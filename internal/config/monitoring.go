// Monitoring configuration - logging settings.
package config

import (
	"fmt"
	"time"
)

// MonitoringConfig contains all monitoring settings.
type MonitoringConfig struct {
	LogLevel             string        `yaml:"log_level"`              // debug, info, warn, error
	LogFormat            string        `yaml:"log_format"`             // json, console
	LogOutput            string        `yaml:"log_output"`             // stdout, stderr, or file path
	HighLatencyThreshold time.Duration `yaml:"high_latency_threshold"` // Alert when a request is slower
}

var validLogLevels = map[string]bool{"": true, "debug": true, "info": true, "warn": true, "error": true}

// Validate checks the monitoring section.
func (m MonitoringConfig) Validate() error {
	if !validLogLevels[m.LogLevel] {
		return fmt.Errorf("invalid monitoring.log_level: %q (must be debug, info, warn or error)", m.LogLevel)
	}
	if m.LogFormat != "" && m.LogFormat != "json" && m.LogFormat != "console" {
		return fmt.Errorf("invalid monitoring.log_format: %q (must be json or console)", m.LogFormat)
	}
	return nil
}
