package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/config"
	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
	"github.com/compresr/prompt-optimizer/internal/tui"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.Disabled)
}

// =============================================================================
// CONFIG RESOLUTION
// =============================================================================

func TestResolveConfig_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0600))

	data, source, err := resolveConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, source)
	assert.Contains(t, string(data), "9000")

	_, _, err = resolveConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolveConfig_SearchOrder(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	_, source, err := resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, "(embedded) config.yaml", source)

	require.NoError(t, os.MkdirAll("configs", 0750))
	require.NoError(t, os.WriteFile(filepath.Join("configs", "config.yaml"), []byte("local"), 0600))
	_, source, err = resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("configs", "config.yaml"), source)

	userDir := filepath.Join(home, ".config", configDirName)
	require.NoError(t, os.MkdirAll(userDir, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte("user"), 0600))
	data, source, err := resolveConfig("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(userDir, "config.yaml"), source)
	assert.Equal(t, "user", string(data))
}

func TestEmbeddedConfigsAreValid(t *testing.T) {
	names, err := listEmbeddedConfigs()
	require.NoError(t, err)
	require.Contains(t, names, "config")

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			data, err := getEmbeddedConfig(name)
			require.NoError(t, err)
			_, err = config.LoadFromBytes(data)
			assert.NoError(t, err)
		})
	}
}

// =============================================================================
// BACKEND WIRING
// =============================================================================

func TestNewBackend_AuthModes(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "none"))
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")

	tests := []struct {
		name       string
		auth       string
		wantPrefix string
	}{
		{"none", config.AuthNone, ""},
		{"bearer", config.AuthBearer, "Bearer sk-test"},
		{"sigv4", config.AuthSigV4, "AWS4-HMAC-SHA256 "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
			}))
			defer srv.Close()

			client, err := newBackend(context.Background(), config.BackendConfig{
				BaseURL: srv.URL + "/v1",
				APIKey:  "sk-test",
				Timeout: 5 * time.Second,
				Auth:    tt.auth,
				Region:  "us-west-2",
			})
			require.NoError(t, err)

			out, err := client.Generate(context.Background(), []external.Message{external.UserMessage("hi")}, 0.3, 16)
			require.NoError(t, err)
			assert.Equal(t, "ok", out)

			if tt.wantPrefix == "" {
				assert.Empty(t, gotAuth)
			} else {
				assert.True(t, strings.HasPrefix(gotAuth, tt.wantPrefix), gotAuth)
			}
		})
	}
}

// =============================================================================
// OPTIMIZE COMMAND HELPERS
// =============================================================================

func TestPromptFromArgs(t *testing.T) {
	stdin := func(s string) *tui.Terminal { return tui.NewTerminalWith(strings.NewReader(s), io.Discard) }

	got, err := promptFromArgs([]string{"write", "fibonacci"}, stdin(""))
	require.NoError(t, err)
	assert.Equal(t, "write fibonacci", got)

	got, err = promptFromArgs(nil, stdin("  from stdin\n"))
	require.NoError(t, err)
	assert.Equal(t, "from stdin", got)

	got, err = promptFromArgs([]string{"-"}, stdin("dash\n"))
	require.NoError(t, err)
	assert.Equal(t, "dash", got)

	_, err = promptFromArgs(nil, stdin("   \n"))
	assert.Error(t, err)
}

func TestDescribeError(t *testing.T) {
	_, err := vendors.ParseVendor("mistral")
	assert.Contains(t, describeError(err), "supported: openai, claude, grok, gemini, qwen, deepseek")

	backendErr := &external.BackendError{Op: "request", Err: errors.New("refused")}
	assert.Contains(t, describeError(backendErr), "generation backend running")

	assert.Equal(t, "plain", describeError(errors.New("plain")))
}

// =============================================================================
// SETUP
// =============================================================================

func TestPersistEnv_MergesExistingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", ".env")

	require.NoError(t, persistEnv(path, map[string]string{envBaseURL: "http://a/v1", "OTHER": "keep"}))
	require.NoError(t, persistEnv(path, map[string]string{envBaseURL: "http://b/v1", envModel: "qwen3"}))

	got, err := godotenv.Read(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		envBaseURL: "http://b/v1",
		envModel:   "qwen3",
		"OTHER":    "keep",
	}, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestPromptBackendSettings(t *testing.T) {
	term := tui.NewTerminalWith(strings.NewReader("\nqwen3\ny\nsk-123\n"), io.Discard)

	values, err := promptBackendSettings(term)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		envBaseURL: external.DefaultBaseURL,
		envModel:   "qwen3",
		envAPIKey:  "sk-123",
	}, values)
}

// =============================================================================
// THINK MODE
// =============================================================================

// fakeBackend returns a numbered list for question requests and a fixed
// rewrite otherwise.
type fakeBackend struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeBackend) Generate(_ context.Context, _ []external.Message, temperature float64, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if temperature > 0.5 {
		return "1. Which language?\n2. Which style?\n3. Tests?\n4. Comments?\n5. Performance?", nil
	}
	return "Write an iterative Python Fibonacci function.\n\nRespond in English", nil
}

func (f *fakeBackend) HealthCheck(context.Context) bool { return true }

func newThinkFixture(t *testing.T, backend optimizer.Backend) (*thinkmode.Flow, *vendors.Registry) {
	t.Helper()
	registry := vendors.NewDefaultRegistry()
	svc := optimizer.New(registry, backend)
	mgr := thinkmode.NewManager(time.Minute)
	t.Cleanup(mgr.Stop)
	return thinkmode.NewFlow(svc, mgr), registry
}

func TestRunThinkSession_Menus(t *testing.T) {
	flow, registry := newThinkFixture(t, &fakeBackend{})
	// vendor menu: 2 (Claude), count menu: 1 (5 questions), one empty answer retried
	input := "2\n1\nPython\n\nclean\nyes\nno\nfast\n"
	var out bytes.Buffer
	term := tui.NewTerminalWith(strings.NewReader(input), &out)
	key := thinkmode.SessionKey{UserID: "u", ChatID: "c"}

	result, err := runThinkSession(context.Background(), term, flow, registry, key, thinkOptions{Prompt: "write fibonacci"})
	require.NoError(t, err)
	assert.Equal(t, vendors.VendorClaude, result.Vendor)
	assert.Contains(t, result.EnhancementNotes, "Enhanced with 5 clarifying questions")

	assert.Contains(t, out.String(), "[1/5]")
	assert.Contains(t, out.String(), "[5/5]")
	assert.Contains(t, out.String(), "Please enter an answer.")
	assert.Zero(t, flow.Sessions().Len())
}

func TestRunThinkSession_PresetOptions(t *testing.T) {
	flow, registry := newThinkFixture(t, &fakeBackend{})
	term := tui.NewTerminalWith(strings.NewReader("\nwrite fibonacci\na\nb\nc\nd\ne\n"), io.Discard)

	result, err := runThinkSession(context.Background(), term, flow, registry,
		thinkmode.SessionKey{UserID: "u", ChatID: "c"},
		thinkOptions{Vendor: vendors.VendorGemini, Questions: 5})
	require.NoError(t, err)
	assert.Equal(t, "write fibonacci", result.Original)
	assert.Equal(t, vendors.VendorGemini, result.Vendor)
}

func TestRunThinkSession_CountOutsideMenuChoices(t *testing.T) {
	backend := &fakeBackend{}
	flow, registry := newThinkFixture(t, backend)
	term := tui.NewTerminalWith(strings.NewReader("a\nb\nc\nd\ne\n"), io.Discard)

	result, err := runThinkSession(context.Background(), term, flow, registry,
		thinkmode.SessionKey{UserID: "u", ChatID: "c"},
		thinkOptions{Prompt: "x", Vendor: vendors.VendorOpenAI, Questions: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, backend.calls)
	assert.Contains(t, result.EnhancementNotes, "Enhanced with 5 clarifying questions")
	assert.Zero(t, flow.Sessions().Len())
}

func TestRunThinkSession_Cancel(t *testing.T) {
	flow, registry := newThinkFixture(t, &fakeBackend{})
	term := tui.NewTerminalWith(strings.NewReader("first\n/cancel\n"), io.Discard)

	_, err := runThinkSession(context.Background(), term, flow, registry,
		thinkmode.SessionKey{UserID: "u", ChatID: "c"},
		thinkOptions{Prompt: "x", Vendor: vendors.VendorOpenAI, Questions: 5})
	assert.ErrorIs(t, err, tui.ErrCancelled)
	assert.Zero(t, flow.Sessions().Len())
}

func TestRunThinkSession_BackendFailure(t *testing.T) {
	backend := &fakeBackend{err: &external.BackendError{Op: "request", Err: errors.New("refused")}}
	flow, registry := newThinkFixture(t, backend)
	term := tui.NewTerminalWith(strings.NewReader(""), io.Discard)

	_, err := runThinkSession(context.Background(), term, flow, registry,
		thinkmode.SessionKey{UserID: "u", ChatID: "c"},
		thinkOptions{Prompt: "x", Vendor: vendors.VendorOpenAI, Questions: 10})
	assert.ErrorIs(t, err, external.ErrBackend)
	assert.Zero(t, flow.Sessions().Len())
}

func TestRunThinkSession_InvalidCount(t *testing.T) {
	for _, count := range []int{optimizer.MinQuestions - 1, optimizer.MaxQuestions + 1} {
		t.Run(strconv.Itoa(count), func(t *testing.T) {
			backend := &fakeBackend{}
			flow, registry := newThinkFixture(t, backend)
			term := tui.NewTerminalWith(strings.NewReader(""), io.Discard)

			_, err := runThinkSession(context.Background(), term, flow, registry,
				thinkmode.SessionKey{UserID: "u", ChatID: "c"},
				thinkOptions{Prompt: "x", Vendor: vendors.VendorOpenAI, Questions: count})
			assert.ErrorIs(t, err, optimizer.ErrValidation)
			assert.Zero(t, backend.calls)
			assert.Zero(t, flow.Sessions().Len())
		})
	}
}
