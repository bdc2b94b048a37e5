// Package monitoring - alerts.go flags anomalies and errors.
//
// DESIGN: AlertManager logs notable events at appropriate levels:
//   - FlagHighLatency:    Warn when a request exceeds the threshold
//   - FlagBackendFailure: Error when the generation backend fails
//   - FlagInvalidRequest: Debug on rejected input
//   - FlagPanic:          Error on recovered panics
package monitoring

import "time"

// AlertManager flags anomalies and errors.
type AlertManager struct {
	logger               *Logger
	highLatencyThreshold time.Duration
}

// NewAlertManager creates a new alert manager.
func NewAlertManager(logger *Logger, cfg AlertConfig) *AlertManager {
	threshold := cfg.HighLatencyThreshold
	if threshold == 0 {
		threshold = 30 * time.Second
	}
	return &AlertManager{logger: logger, highLatencyThreshold: threshold}
}

// FlagHighLatency logs when request latency exceeds threshold.
// Reports whether the alert fired.
func (am *AlertManager) FlagHighLatency(requestID string, latency time.Duration, path string) bool {
	if latency < am.highLatencyThreshold {
		return false
	}
	am.logger.Warn().
		Str("request_id", requestID).
		Dur("latency", latency).
		Str("path", path).
		Msg("high_latency")
	return true
}

// FlagBackendFailure logs a failed generation call.
func (am *AlertManager) FlagBackendFailure(requestID string, op Operation, vendor string, err error) {
	am.logger.Error().
		Str("request_id", requestID).
		Str("operation", string(op)).
		Str("vendor", vendor).
		Err(err).
		Msg("backend_failure")
}

// FlagInvalidRequest logs invalid request.
func (am *AlertManager) FlagInvalidRequest(requestID, reason string) {
	am.logger.Debug().
		Str("request_id", requestID).
		Str("reason", reason).
		Msg("invalid_request")
}

// FlagPanic logs recovered panic.
func (am *AlertManager) FlagPanic(requestID string, panicValue interface{}, stack string) {
	am.logger.Error().
		Str("request_id", requestID).
		Interface("panic", panicValue).
		Str("stack", stack).
		Msg("panic_recovered")
}
