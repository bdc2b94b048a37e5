// Package optimizer orchestrates prompt optimization.
//
// DESIGN: The service is stateless. Every operation validates its input,
// looks up the vendor adapter, composes a two-message transcript (system +
// user) and makes exactly one backend call:
//
//	Optimize            → rewrite at temperature 0.3
//	GenerateQuestions   → clarifying questions at temperature 0.7, parsed
//	OptimizeWithAnswers → rewrite at 0.3 using the Q&A transcript
//
// Validation failures never reach the backend. Backend failures are returned
// unchanged and never retried; callers decide what to surface.
package optimizer

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// Service is the optimization orchestrator. Safe for concurrent use.
type Service struct {
	registry *vendors.Registry
	backend  Backend
}

// New creates a service over a populated registry and a generation backend.
func New(registry *vendors.Registry, backend Backend) *Service {
	return &Service{registry: registry, backend: backend}
}

// Registry returns the vendor registry the service resolves adapters from.
func (s *Service) Registry() *vendors.Registry { return s.registry }

// Optimize rewrites a prompt for the target vendor.
func (s *Service) Optimize(ctx context.Context, req Request) (*OptimizedPrompt, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	adapter, err := s.registry.Get(req.TargetVendor)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("vendor", req.TargetVendor.String()).
		Int("prompt_len", len(req.OriginalPrompt)).
		Msg("optimizing prompt")

	out, err := s.backend.Generate(ctx, optimizeMessages(req, adapter), rewriteTemperature, rewriteMaxTokens)
	if err != nil {
		return nil, err
	}

	return &OptimizedPrompt{
		Original:         req.OriginalPrompt,
		Optimized:        strings.TrimSpace(out),
		Vendor:           req.TargetVendor,
		EnhancementNotes: adapter.EnhancementNotes(),
		Metadata:         adapter.Metadata(),
	}, nil
}

// GenerateQuestions asks the backend for count clarifying questions, written
// in the prompt's language. The result holds at most count entries and may
// hold fewer when the backend under-produces.
func (s *Service) GenerateQuestions(ctx context.Context, prompt string, vendor vendors.Vendor, count int) ([]string, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, invalid("prompt", "must not be empty")
	}
	if count < MinQuestions || count > MaxQuestions {
		return nil, invalid("num_questions", "must be between %d and %d, got %d", MinQuestions, MaxQuestions, count)
	}
	if _, err := s.registry.Get(vendor); err != nil {
		return nil, err
	}

	raw, err := s.backend.Generate(ctx, questionMessages(prompt, vendor, count), questionTemperature, questionMaxTokens)
	if err != nil {
		return nil, err
	}

	questions := ParseQuestions(raw, count)
	if len(questions) < count {
		log.Warn().
			Int("requested", count).
			Int("parsed", len(questions)).
			Msg("backend produced fewer questions than requested")
	}
	return questions, nil
}

// OptimizeWithAnswers builds the final prompt from the user's answers to
// clarifying questions.
func (s *Service) OptimizeWithAnswers(ctx context.Context, req AnswersRequest) (*OptimizedPrompt, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	adapter, err := s.registry.Get(req.TargetVendor)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("vendor", req.TargetVendor.String()).
		Int("answers", len(req.Answers)).
		Msg("optimizing prompt with answers")

	out, err := s.backend.Generate(ctx, answersMessages(req, adapter), rewriteTemperature, rewriteMaxTokens)
	if err != nil {
		return nil, err
	}

	return &OptimizedPrompt{
		Original:         req.OriginalPrompt,
		Optimized:        strings.TrimSpace(out),
		Vendor:           req.TargetVendor,
		EnhancementNotes: answersNotes(adapter.EnhancementNotes(), len(req.Questions)),
		Metadata:         adapter.Metadata(),
	}, nil
}

// HealthCheck reports backend liveness and the registered vendor count.
func (s *Service) HealthCheck(ctx context.Context) Health {
	return Health{
		Available:             s.backend.HealthCheck(ctx),
		RegisteredVendorCount: s.registry.Count(),
	}
}
