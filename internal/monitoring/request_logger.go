// Package monitoring - request_logger.go logs HTTP request lifecycle.
//
// DESIGN: Structured logging for request tracing at DEBUG level:
//   - LogIncoming:     Request received from client
//   - LogResponse:     Response sent to client
//   - LogOptimization: Optimizer call finished (INFO)
package monitoring

import (
	"net/http"
	"time"
)

// RequestLogger logs HTTP request lifecycle events.
type RequestLogger struct {
	logger *Logger
}

// NewRequestLogger creates a new request logger.
func NewRequestLogger(logger *Logger) *RequestLogger {
	return &RequestLogger{logger: logger}
}

// RequestInfo contains incoming request information.
type RequestInfo struct {
	RequestID  string
	Method     string
	Path       string
	RemoteAddr string
	BodySize   int64
	StartTime  time.Time
}

// NewRequestInfo creates RequestInfo from an HTTP request.
func NewRequestInfo(r *http.Request, requestID string) *RequestInfo {
	return &RequestInfo{
		RequestID:  requestID,
		Method:     r.Method,
		Path:       r.URL.Path,
		RemoteAddr: r.RemoteAddr,
		BodySize:   r.ContentLength,
		StartTime:  time.Now(),
	}
}

// LogIncoming logs an incoming request.
func (rl *RequestLogger) LogIncoming(info *RequestInfo) {
	rl.logger.Debug().
		Str("request_id", info.RequestID).
		Str("method", info.Method).
		Str("path", info.Path).
		Int64("body_size", info.BodySize).
		Msg("incoming")
}

// ResponseInfo contains response information.
type ResponseInfo struct {
	RequestID  string
	StatusCode int
	Latency    time.Duration
}

// LogResponse logs a response.
func (rl *RequestLogger) LogResponse(info *ResponseInfo) {
	rl.logger.Debug().
		Str("request_id", info.RequestID).
		Int("status", info.StatusCode).
		Dur("latency", info.Latency).
		Msg("response")
}

// OptimizationInfo describes a finished optimizer call.
type OptimizationInfo struct {
	RequestID       string
	Operation       Operation
	Vendor          string
	OriginalTokens  int
	OptimizedTokens int
	Questions       int
	Duration        time.Duration
}

// LogOptimization logs a finished optimizer call.
func (rl *RequestLogger) LogOptimization(info *OptimizationInfo) {
	event := rl.logger.Info().
		Str("request_id", info.RequestID).
		Str("operation", string(info.Operation)).
		Str("vendor", info.Vendor).
		Dur("duration", info.Duration)
	if info.Operation == OpGenerateQuestions {
		event = event.Int("questions", info.Questions)
	} else {
		event = event.Int("original_tokens", info.OriginalTokens).Int("optimized_tokens", info.OptimizedTokens)
	}
	event.Msg("optimization")
}
