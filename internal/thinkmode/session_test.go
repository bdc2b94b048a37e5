package thinkmode_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

var testKey = thinkmode.SessionKey{UserID: "42", ChatID: "chat-1"}

// sessionIn builds a session already advanced to the given state.
func sessionIn(t *testing.T, state thinkmode.State) *thinkmode.Session {
	t.Helper()
	s := thinkmode.NewSession(testKey)
	if state == thinkmode.StateAwaitingPrompt {
		return s
	}
	require.NoError(t, s.SubmitPrompt("explain kubernetes"))
	require.NoError(t, s.SelectVendor(vendors.VendorClaude))
	if state == thinkmode.StateVendorSelected {
		return s
	}
	require.NoError(t, s.SelectQuestionCount(5))
	if state == thinkmode.StateQuestionCountSelected {
		return s
	}
	require.NoError(t, s.LoadQuestions([]string{"q1", "q2"}))
	if state == thinkmode.StateAnsweringQuestion {
		return s
	}
	require.NoError(t, s.Answer("a1"))
	require.NoError(t, s.Answer("a2"))
	if state == thinkmode.StateFinalizing {
		return s
	}
	if state == thinkmode.StateDone {
		require.NoError(t, s.Complete(&optimizer.OptimizedPrompt{Optimized: "done"}))
		return s
	}
	require.NoError(t, s.Cancel())
	return s
}

// =============================================================================
// HAPPY PATH
// =============================================================================

func TestSession_FullConversation(t *testing.T) {
	s := thinkmode.NewSession(testKey)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, thinkmode.StateAwaitingPrompt, s.State)

	require.NoError(t, s.SubmitPrompt("  explain kubernetes "))
	assert.Equal(t, "explain kubernetes", s.Prompt)
	assert.Equal(t, thinkmode.StateAwaitingPrompt, s.State)

	require.NoError(t, s.SelectVendor(vendors.VendorGemini))
	assert.Equal(t, thinkmode.StateVendorSelected, s.State)

	require.NoError(t, s.SelectQuestionCount(5))
	assert.Equal(t, thinkmode.StateQuestionCountSelected, s.State)

	require.NoError(t, s.LoadQuestions([]string{"q1", "q2", "q3"}))
	assert.Equal(t, thinkmode.StateAnsweringQuestion, s.State)

	for i, answer := range []string{"a1", "a2", "a3"} {
		idx, q, ok := s.CurrentQuestion()
		require.True(t, ok)
		assert.Equal(t, i, idx)
		assert.Equal(t, s.Questions[i], q)

		require.NoError(t, s.Answer(answer))
		assert.LessOrEqual(t, len(s.Answers), len(s.Questions))
		assert.Equal(t, len(s.Answers), s.Cursor)
	}
	assert.Equal(t, thinkmode.StateFinalizing, s.State)
	_, _, ok := s.CurrentQuestion()
	assert.False(t, ok)

	req := s.AnswersRequest()
	assert.Equal(t, "explain kubernetes", req.OriginalPrompt)
	assert.Equal(t, vendors.VendorGemini, req.TargetVendor)
	assert.Equal(t, []string{"a1", "a2", "a3"}, req.Answers)

	require.NoError(t, s.Complete(&optimizer.OptimizedPrompt{Optimized: "final"}))
	assert.Equal(t, thinkmode.StateDone, s.State)
	assert.True(t, s.State.Terminal())
}

// =============================================================================
// TRANSITION COVERAGE
// =============================================================================

func TestSession_InvalidTransitions(t *testing.T) {
	events := map[string]func(*thinkmode.Session) error{
		"prompt":   func(s *thinkmode.Session) error { return s.SubmitPrompt("again") },
		"vendor":   func(s *thinkmode.Session) error { return s.SelectVendor(vendors.VendorOpenAI) },
		"count":    func(s *thinkmode.Session) error { return s.SelectQuestionCount(10) },
		"load":     func(s *thinkmode.Session) error { return s.LoadQuestions([]string{"q"}) },
		"answer":   func(s *thinkmode.Session) error { return s.Answer("a") },
		"complete": func(s *thinkmode.Session) error { return s.Complete(&optimizer.OptimizedPrompt{}) },
		"cancel":   func(s *thinkmode.Session) error { return s.Cancel() },
	}

	// Events accepted in each state; everything else must be rejected.
	allowed := map[thinkmode.State][]string{
		thinkmode.StateVendorSelected:        {"count", "cancel"},
		thinkmode.StateQuestionCountSelected: {"load", "cancel"},
		thinkmode.StateAnsweringQuestion:     {"answer", "cancel"},
		thinkmode.StateFinalizing:            {"complete", "cancel"},
		thinkmode.StateDone:                  {},
		thinkmode.StateCancelled:             {},
	}

	for state, ok := range allowed {
		for name, event := range events {
			if contains(ok, name) {
				continue
			}
			t.Run(string(state)+"/"+name, func(t *testing.T) {
				s := sessionIn(t, state)
				err := event(s)
				require.Error(t, err)
				assert.True(t, errors.Is(err, thinkmode.ErrInvalidTransition), err)
				assert.Equal(t, state, s.State)
			})
		}
	}
}

func TestSession_AwaitingPromptRules(t *testing.T) {
	s := thinkmode.NewSession(testKey)
	assert.ErrorIs(t, s.SelectVendor(vendors.VendorOpenAI), thinkmode.ErrInvalidTransition)
	assert.ErrorIs(t, s.SubmitPrompt("   "), thinkmode.ErrEmptyInput)

	require.NoError(t, s.SubmitPrompt("p"))
	assert.ErrorIs(t, s.SubmitPrompt("p2"), thinkmode.ErrInvalidTransition)
	assert.ErrorIs(t, s.SelectVendor("llama"), vendors.ErrVendorNotSupported)
	assert.Equal(t, thinkmode.StateAwaitingPrompt, s.State)
}

func TestSession_CancelFromEveryNonTerminalState(t *testing.T) {
	for _, state := range []thinkmode.State{
		thinkmode.StateAwaitingPrompt,
		thinkmode.StateVendorSelected,
		thinkmode.StateQuestionCountSelected,
		thinkmode.StateAnsweringQuestion,
		thinkmode.StateFinalizing,
	} {
		s := sessionIn(t, state)
		require.NoError(t, s.Cancel(), state)
		assert.Equal(t, thinkmode.StateCancelled, s.State)
	}
}

func TestSession_QuestionCountBounds(t *testing.T) {
	for _, n := range []int{0, 4, 26} {
		s := sessionIn(t, thinkmode.StateVendorSelected)
		err := s.SelectQuestionCount(n)
		assert.ErrorIs(t, err, optimizer.ErrValidation)
		assert.Equal(t, thinkmode.StateVendorSelected, s.State)
	}
	for _, n := range thinkmode.QuestionCountChoices {
		s := sessionIn(t, thinkmode.StateVendorSelected)
		assert.NoError(t, s.SelectQuestionCount(n))
	}
}

func TestSession_NoQuestions(t *testing.T) {
	s := sessionIn(t, thinkmode.StateQuestionCountSelected)
	assert.ErrorIs(t, s.LoadQuestions(nil), thinkmode.ErrNoQuestions)
	assert.Equal(t, thinkmode.StateQuestionCountSelected, s.State)
}

func TestSession_EmptyAnswerRejected(t *testing.T) {
	s := sessionIn(t, thinkmode.StateAnsweringQuestion)
	assert.ErrorIs(t, s.Answer(" "), thinkmode.ErrEmptyInput)
	assert.Empty(t, s.Answers)
	assert.Equal(t, 0, s.Cursor)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := sessionIn(t, thinkmode.StateAnsweringQuestion)
	c := s.Clone()
	c.Questions[0] = "changed"
	assert.Equal(t, "q1", s.Questions[0])
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
