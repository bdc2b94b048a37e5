// Package monitoring - metrics.go provides simple counters.
//
// DESIGN: Lightweight in-memory counters for operational metrics:
//   - requests/successes:   Total and successful HTTP request counts
//   - optimizations:        Completed Optimize / OptimizeWithAnswers calls
//   - question_sets:        Completed GenerateQuestions calls
//   - think_sessions:       Think Mode conversations that reached Done
//   - backend_failures:     Generation backend errors
//   - rate_limited:         Requests rejected by the rate limiter
//
// Served as part of /health.
package monitoring

import (
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics.
type MetricsCollector struct {
	requests        atomic.Int64
	successes       atomic.Int64
	latencyTotalMs  atomic.Int64
	optimizations   atomic.Int64
	questionSets    atomic.Int64
	thinkSessions   atomic.Int64
	backendFailures atomic.Int64
	rateLimited     atomic.Int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{}
}

// RecordRequest records a finished HTTP request.
func (mc *MetricsCollector) RecordRequest(success bool, latency time.Duration) {
	mc.requests.Add(1)
	mc.latencyTotalMs.Add(latency.Milliseconds())
	if success {
		mc.successes.Add(1)
	}
}

// RecordOperation records a successful optimizer call.
func (mc *MetricsCollector) RecordOperation(op Operation) {
	switch op {
	case OpGenerateQuestions:
		mc.questionSets.Add(1)
	case OpOptimize, OpOptimizeWithAnswers:
		mc.optimizations.Add(1)
	}
}

// RecordThinkSession records a completed Think Mode conversation.
func (mc *MetricsCollector) RecordThinkSession() { mc.thinkSessions.Add(1) }

// RecordBackendFailure records a generation backend error.
func (mc *MetricsCollector) RecordBackendFailure() { mc.backendFailures.Add(1) }

// RecordRateLimited records a rejected request.
func (mc *MetricsCollector) RecordRateLimited() { mc.rateLimited.Add(1) }

// Stats returns current metrics.
func (mc *MetricsCollector) Stats() map[string]int64 {
	requests := mc.requests.Load()
	var avg int64
	if requests > 0 {
		avg = mc.latencyTotalMs.Load() / requests
	}
	return map[string]int64{
		"requests":         requests,
		"successes":        mc.successes.Load(),
		"avg_latency_ms":   avg,
		"optimizations":    mc.optimizations.Load(),
		"question_sets":    mc.questionSets.Load(),
		"think_sessions":   mc.thinkSessions.Load(),
		"backend_failures": mc.backendFailures.Load(),
		"rate_limited":     mc.rateLimited.Load(),
	}
}
