package optimizer_test

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/compresr/prompt-optimizer/external"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

type generateCall struct {
	Messages    []external.Message
	Temperature float64
	MaxTokens   int
}

// mockBackend records calls and replies with a fixed response or error.
type mockBackend struct {
	mu       sync.Mutex
	response string
	err      error
	healthy  bool
	calls    []generateCall
}

func (m *mockBackend) Generate(_ context.Context, messages []external.Message, temperature float64, maxTokens int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, generateCall{Messages: messages, Temperature: temperature, MaxTokens: maxTokens})
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockBackend) HealthCheck(context.Context) bool { return m.healthy }

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockBackend) lastCall() generateCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}
