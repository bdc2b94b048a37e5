// Package server types - HTTP request and response bodies.
//
// DESIGN: Request bodies carry two sets of tags:
//   - validate:   checked with go-playground/validator on every request
//   - jsonschema: published at /api/schema for client generation
//
// Semantic checks (vendor support, question/answer pairing, count range)
// stay in the optimizer so every front-end gets the same errors.
package server

import (
	"github.com/compresr/prompt-optimizer/internal/tokens"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

const (
	// HeaderRequestID carries the request ID in both directions.
	HeaderRequestID = "X-Request-ID"

	// MaxRequestBodySize bounds JSON request bodies (1MB).
	MaxRequestBodySize = 1 << 20

	// MaxRateLimitClients bounds the number of tracked client IPs.
	MaxRateLimitClients = 10000
)

// =============================================================================
// REQUESTS
// =============================================================================

// OptimizeRequest is the body of POST /api/optimize.
type OptimizeRequest struct {
	Prompt    string `json:"prompt" validate:"required" jsonschema:"minLength=1,description=The original prompt to optimize"`
	Vendor    string `json:"vendor" validate:"required" jsonschema:"enum=openai,enum=claude,enum=grok,enum=gemini,enum=qwen,enum=deepseek,description=Target LLM vendor"`
	Context   string `json:"context,omitempty" jsonschema:"description=Additional context for optimization"`
	MaxLength *int   `json:"max_length,omitempty" validate:"omitempty,gt=0" jsonschema:"minimum=1,description=Maximum length constraint in characters"`
}

// GenerateQuestionsRequest is the body of POST /api/think/generate-questions.
type GenerateQuestionsRequest struct {
	Prompt       string `json:"prompt" validate:"required" jsonschema:"minLength=1,description=The original user prompt"`
	Vendor       string `json:"vendor" validate:"required" jsonschema:"enum=openai,enum=claude,enum=grok,enum=gemini,enum=qwen,enum=deepseek,description=Target LLM vendor"`
	NumQuestions int    `json:"num_questions" validate:"required,min=5,max=25" jsonschema:"minimum=5,maximum=25,description=Number of questions to generate (5/10/25)"`
}

// OptimizeWithAnswersRequest is the body of POST /api/think/optimize-with-answers.
type OptimizeWithAnswersRequest struct {
	Prompt    string   `json:"prompt" validate:"required" jsonschema:"minLength=1,description=The original user prompt"`
	Vendor    string   `json:"vendor" validate:"required" jsonschema:"enum=openai,enum=claude,enum=grok,enum=gemini,enum=qwen,enum=deepseek,description=Target LLM vendor"`
	Questions []string `json:"questions" validate:"required,min=1" jsonschema:"minItems=1,description=Questions that were asked"`
	Answers   []string `json:"answers" validate:"required,min=1" jsonschema:"minItems=1,description=Answers in question order"`
	Context   string   `json:"context,omitempty" jsonschema:"description=Additional context"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// OptimizeResponse is returned by both optimize endpoints.
type OptimizeResponse struct {
	Original         string           `json:"original"`
	Optimized        string           `json:"optimized"`
	Vendor           string           `json:"vendor"`
	EnhancementNotes string           `json:"enhancement_notes"`
	Metadata         vendors.Metadata `json:"metadata"`
	Tokens           tokens.Stats     `json:"tokens"`
}

// GenerateQuestionsResponse lists clarifying questions.
type GenerateQuestionsResponse struct {
	Questions []string `json:"questions"`
	Total     int      `json:"total"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status              string           `json:"status"`
	LMStudioAvailable   bool             `json:"lm_studio_available"`
	VendorAdapters      int              `json:"vendor_adapters"`
	ActiveThinkSessions int              `json:"active_think_sessions"`
	Metrics             map[string]int64 `json:"metrics"`
}

// VendorInfo describes one registered vendor.
type VendorInfo struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	EnhancementNotes string           `json:"enhancement_notes"`
	Metadata         vendors.Metadata `json:"metadata"`
}

// VendorsResponse is returned by GET /api/vendors.
type VendorsResponse struct {
	Vendors []VendorInfo `json:"vendors"`
	Total   int          `json:"total"`
}

// InfoResponse is returned by GET /.
type InfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
	Schema  string `json:"schema"`
	Think   string `json:"think"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}
