// Package monitoring - types.go defines shared types.
//
// TYPES:
//   - Operation:    Which optimizer operation a request performed
//   - Config types: LoggerConfig, AlertConfig
package monitoring

import "time"

// Operation names an optimizer entry point for logs and metrics.
type Operation string

const (
	OpOptimize            Operation = "optimize"
	OpGenerateQuestions   Operation = "generate_questions"
	OpOptimizeWithAnswers Operation = "optimize_with_answers"
)

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// AlertConfig contains alert thresholds.
type AlertConfig struct {
	HighLatencyThreshold time.Duration `yaml:"high_latency_threshold"`
}
