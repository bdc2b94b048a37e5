// Package thinkmode implements the Think Mode clarification conversation.
//
// DESIGN: One Session record per chat identity, driven through an explicit
// state enum:
//
//	AwaitingPrompt → VendorSelected → QuestionCountSelected
//	  → AnsweringQuestion (once per question) → Finalizing → Done
//
// Cancelled is reachable from every non-terminal state. Session methods are
// pure transitions with no I/O; Flow performs the backend calls and Manager
// owns the records (arena keyed by SessionKey) and serializes steps per key.
package thinkmode

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// Errors returned by transitions and the flow.
var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoQuestions       = errors.New("no clarifying questions were generated")
	ErrAccessDenied      = errors.New("access denied")
	ErrEmptyInput        = errors.New("empty input")
)

// State is the conversation phase.
type State string

const (
	StateAwaitingPrompt        State = "awaiting_prompt"
	StateVendorSelected        State = "vendor_selected"
	StateQuestionCountSelected State = "question_count_selected"
	StateAnsweringQuestion     State = "answering_question"
	StateFinalizing            State = "finalizing"
	StateDone                  State = "done"
	StateCancelled             State = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// QuestionCountChoices are the counts offered by the front-ends.
var QuestionCountChoices = []int{5, 10, 25}

// SessionKey identifies a conversation: one user in one chat.
type SessionKey struct {
	UserID string
	ChatID string
}

func (k SessionKey) String() string { return k.UserID + ":" + k.ChatID }

// Session is the payload of one Think Mode conversation.
// Invariant: len(Answers) <= len(Questions) and Cursor == len(Answers).
type Session struct {
	ID            string
	Key           SessionKey
	State         State
	Prompt        string
	Vendor        vendors.Vendor
	QuestionCount int
	Questions     []string
	Answers       []string
	Cursor        int
	Result        *optimizer.OptimizedPrompt
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewSession creates a session awaiting its prompt.
func NewSession(key SessionKey) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Key:       key,
		State:     StateAwaitingPrompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) transitionError(event string) error {
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, s.State)
}

// SubmitPrompt records the prompt to optimize. The session stays in
// AwaitingPrompt until a vendor is chosen.
func (s *Session) SubmitPrompt(prompt string) error {
	if s.State != StateAwaitingPrompt || s.Prompt != "" {
		return s.transitionError("prompt")
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("%w: prompt", ErrEmptyInput)
	}
	s.Prompt = prompt
	return nil
}

// SelectVendor picks the target vendor.
func (s *Session) SelectVendor(v vendors.Vendor) error {
	if s.State != StateAwaitingPrompt || s.Prompt == "" {
		return s.transitionError("vendor selection")
	}
	if !v.Valid() {
		return fmt.Errorf("%w: %q", vendors.ErrVendorNotSupported, v)
	}
	s.Vendor = v
	s.State = StateVendorSelected
	return nil
}

// SelectQuestionCount picks how many questions to ask.
func (s *Session) SelectQuestionCount(n int) error {
	if s.State != StateVendorSelected {
		return s.transitionError("question count")
	}
	if n < optimizer.MinQuestions || n > optimizer.MaxQuestions {
		return &optimizer.ValidationError{
			Field:   "num_questions",
			Message: fmt.Sprintf("must be between %d and %d, got %d", optimizer.MinQuestions, optimizer.MaxQuestions, n),
		}
	}
	s.QuestionCount = n
	s.State = StateQuestionCountSelected
	return nil
}

// LoadQuestions stores the generated questions and starts answering.
func (s *Session) LoadQuestions(questions []string) error {
	if s.State != StateQuestionCountSelected {
		return s.transitionError("questions")
	}
	if len(questions) == 0 {
		return ErrNoQuestions
	}
	s.Questions = append([]string(nil), questions...)
	s.Answers = make([]string, 0, len(questions))
	s.Cursor = 0
	s.State = StateAnsweringQuestion
	return nil
}

// CurrentQuestion returns the question awaiting an answer.
func (s *Session) CurrentQuestion() (index int, text string, ok bool) {
	if s.State != StateAnsweringQuestion || s.Cursor >= len(s.Questions) {
		return 0, "", false
	}
	return s.Cursor, s.Questions[s.Cursor], true
}

// Answer records the answer to the current question. After the last answer
// the session moves to Finalizing.
func (s *Session) Answer(text string) error {
	if s.State != StateAnsweringQuestion {
		return s.transitionError("answer")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: answer", ErrEmptyInput)
	}
	s.Answers = append(s.Answers, text)
	s.Cursor = len(s.Answers)
	if s.Cursor == len(s.Questions) {
		s.State = StateFinalizing
	}
	return nil
}

// AnswersRequest builds the finalization request.
func (s *Session) AnswersRequest() optimizer.AnswersRequest {
	return optimizer.AnswersRequest{
		OriginalPrompt: s.Prompt,
		TargetVendor:   s.Vendor,
		Questions:      append([]string(nil), s.Questions...),
		Answers:        append([]string(nil), s.Answers...),
	}
}

// Complete stores the final result.
func (s *Session) Complete(result *optimizer.OptimizedPrompt) error {
	if s.State != StateFinalizing {
		return s.transitionError("completion")
	}
	s.Result = result
	s.State = StateDone
	return nil
}

// Cancel ends the session from any non-terminal state.
func (s *Session) Cancel() error {
	if s.State.Terminal() {
		return s.transitionError("cancel")
	}
	s.State = StateCancelled
	return nil
}

// Clone returns a copy safe to hand outside the manager.
func (s *Session) Clone() *Session {
	c := *s
	c.Questions = append([]string(nil), s.Questions...)
	c.Answers = append([]string(nil), s.Answers...)
	return &c
}
