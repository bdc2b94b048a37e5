package thinkmode

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// Optimizer is the part of the optimization service the flow drives.
// *optimizer.Service satisfies it.
type Optimizer interface {
	GenerateQuestions(ctx context.Context, prompt string, vendor vendors.Vendor, count int) ([]string, error)
	OptimizeWithAnswers(ctx context.Context, req optimizer.AnswersRequest) (*optimizer.OptimizedPrompt, error)
}

// Step is what a front-end shows after a flow call.
type Step struct {
	SessionID string
	State     State

	// Set while answering questions.
	QuestionIndex int
	QuestionTotal int
	Question      string

	// Set when State is StateDone.
	Result *optimizer.OptimizedPrompt
}

func stepFor(s *Session) Step {
	step := Step{SessionID: s.ID, State: s.State, Result: s.Result}
	if i, q, ok := s.CurrentQuestion(); ok {
		step.QuestionIndex = i
		step.QuestionTotal = len(s.Questions)
		step.Question = q
	}
	return step
}

// Flow drives sessions through the optimization service.
type Flow struct {
	svc      Optimizer
	sessions *Manager
}

// NewFlow creates a flow over svc with sessions kept in mgr.
func NewFlow(svc Optimizer, mgr *Manager) *Flow {
	return &Flow{svc: svc, sessions: mgr}
}

// Sessions returns the session arena.
func (f *Flow) Sessions() *Manager { return f.sessions }

// Start begins a new conversation for key with the prompt to optimize,
// replacing any conversation already in progress.
func (f *Flow) Start(key SessionKey, prompt string) (Step, error) {
	f.sessions.Create(key)
	s, err := f.sessions.Update(key, func(s *Session) error {
		return s.SubmitPrompt(prompt)
	})
	if err != nil {
		f.sessions.Delete(key)
		return Step{}, err
	}

	log.Debug().Str("session_id", s.ID).Str("key", key.String()).Msg("think mode session started")
	return stepFor(s), nil
}

// SelectVendor picks the target vendor.
func (f *Flow) SelectVendor(key SessionKey, vendor vendors.Vendor) (Step, error) {
	s, err := f.sessions.Update(key, func(s *Session) error {
		return s.SelectVendor(vendor)
	})
	if err != nil {
		return stepOrEmpty(s), err
	}
	return stepFor(s), nil
}

// SelectQuestionCount picks the question count, generates the questions and
// returns the first one. When generation fails or yields nothing the session
// is cancelled and the error returned.
func (f *Flow) SelectQuestionCount(ctx context.Context, key SessionKey, n int) (Step, error) {
	s, err := f.sessions.Update(key, func(s *Session) error {
		if err := s.SelectQuestionCount(n); err != nil {
			return err
		}

		questions, err := f.svc.GenerateQuestions(ctx, s.Prompt, s.Vendor, n)
		if err != nil {
			_ = s.Cancel()
			return err
		}
		if err := s.LoadQuestions(questions); err != nil {
			_ = s.Cancel()
			return err
		}
		return nil
	})
	if err != nil {
		logStepError(s, err)
		return stepOrEmpty(s), err
	}
	return stepFor(s), nil
}

// Answer records an answer. After the last answer the final prompt is built
// and the session ends as Done, or as Cancelled when finalization fails.
func (f *Flow) Answer(ctx context.Context, key SessionKey, text string) (Step, error) {
	s, err := f.sessions.Update(key, func(s *Session) error {
		if err := s.Answer(text); err != nil {
			return err
		}
		if s.State != StateFinalizing {
			return nil
		}

		result, err := f.svc.OptimizeWithAnswers(ctx, s.AnswersRequest())
		if err != nil {
			_ = s.Cancel()
			return err
		}
		return s.Complete(result)
	})
	if err != nil {
		logStepError(s, err)
		return stepOrEmpty(s), err
	}

	if s.State == StateDone {
		log.Info().
			Str("session_id", s.ID).
			Str("vendor", s.Vendor.String()).
			Int("questions", len(s.Questions)).
			Msg("think mode session completed")
	}
	return stepFor(s), nil
}

// Cancel ends the conversation for key.
func (f *Flow) Cancel(key SessionKey) (Step, error) {
	s, err := f.sessions.Update(key, func(s *Session) error {
		return s.Cancel()
	})
	if err != nil {
		return stepOrEmpty(s), err
	}
	return stepFor(s), nil
}

// Session returns a snapshot of the conversation for key.
func (f *Flow) Session(key SessionKey) (*Session, bool) {
	return f.sessions.Get(key)
}

func stepOrEmpty(s *Session) Step {
	if s == nil {
		return Step{}
	}
	return stepFor(s)
}

func logStepError(s *Session, err error) {
	if s == nil || errors.Is(err, ErrInvalidTransition) {
		return
	}
	log.Warn().Err(err).Str("session_id", s.ID).Str("state", string(s.State)).Msg("think mode step failed")
}
