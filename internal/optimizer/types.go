package optimizer

import (
	"context"
	"strings"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// Question count bounds for Think Mode.
const (
	MinQuestions = 5
	MaxQuestions = 25
)

// Generation parameters. Rewrites run cold for reproducible output; question
// generation runs warmer for a wider spread of angles.
const (
	rewriteTemperature  = 0.3
	rewriteMaxTokens    = 2048
	questionTemperature = 0.7
	questionMaxTokens   = 1024
)

// Backend is the generation client the service depends on.
// *external.Client satisfies it.
type Backend interface {
	Generate(ctx context.Context, messages []external.Message, temperature float64, maxTokens int) (string, error)
	HealthCheck(ctx context.Context) bool
}

// Request is a direct optimization request.
type Request struct {
	OriginalPrompt string
	TargetVendor   vendors.Vendor
	Context        string // optional
	MaxLength      int    // optional, 0 means unconstrained
}

func (r Request) validate() error {
	if strings.TrimSpace(r.OriginalPrompt) == "" {
		return invalid("prompt", "must not be empty")
	}
	if r.MaxLength < 0 {
		return invalid("max_length", "must be positive, got %d", r.MaxLength)
	}
	return nil
}

// AnswersRequest finalizes a Think Mode session.
type AnswersRequest struct {
	OriginalPrompt string
	TargetVendor   vendors.Vendor
	Questions      []string
	Answers        []string
	Context        string // optional
}

func (r AnswersRequest) validate() error {
	if strings.TrimSpace(r.OriginalPrompt) == "" {
		return invalid("prompt", "must not be empty")
	}
	if len(r.Questions) != len(r.Answers) {
		return invalid("answers", "got %d answers for %d questions", len(r.Answers), len(r.Questions))
	}
	if len(r.Questions) == 0 {
		return invalid("questions", "at least one question/answer pair is required")
	}
	return nil
}

// OptimizedPrompt is the result of an optimization.
type OptimizedPrompt struct {
	Original         string
	Optimized        string
	Vendor           vendors.Vendor
	EnhancementNotes string
	Metadata         vendors.Metadata
}

// Health is the liveness report.
type Health struct {
	Available             bool
	RegisteredVendorCount int
}
