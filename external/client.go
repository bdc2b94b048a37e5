// Generation backend client.
//
// Client is the single entry point for calling the OpenAI-compatible chat
// completions backend (LM Studio by default) that rewrites prompts.
//
// USAGE:
//   - Prompt generation: Client.Generate() with system + user messages
//   - Liveness probe:    Client.HealthCheck() (never fails, returns bool)
//
// Request bodies are assembled with sjson and responses are read with gjson
// so that unknown response fields never break decoding.
package external

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// DefaultBaseURL is the local LM Studio endpoint.
	DefaultBaseURL = "http://127.0.0.1:1234/v1"

	// DefaultTimeout for generation calls.
	DefaultTimeout = 120 * time.Second

	// DefaultHealthTimeout for the liveness probe.
	DefaultHealthTimeout = 5 * time.Second

	// DefaultTopP is sent with every generation request.
	DefaultTopP = 0.9

	// maxResponseSize prevents OOM on unexpectedly large responses (10MB).
	maxResponseSize = 10 * 1024 * 1024

	// maxErrorBodyLen limits error body in error messages to avoid log bloat.
	maxErrorBodyLen = 500
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one chat message sent to the backend.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }

// UserMessage builds a user-role message.
func UserMessage(content string) Message { return Message{Role: RoleUser, Content: content} }

// ClientConfig configures the generation client.
type ClientConfig struct {
	BaseURL       string
	APIKey        string // sent as Authorization: Bearer when set
	Model         string // omitted from the request when empty
	TopP          float64
	Timeout       time.Duration
	HealthTimeout time.Duration

	// HTTPClient overrides the default HTTP client (tests, connection pooling,
	// or a client wrapping SigningTransport).
	HTTPClient *http.Client
}

// Client calls the generation backend. Safe for concurrent use.
type Client struct {
	cfg  ClientConfig
	http *http.Client
}

// NewClient creates a client, filling defaults for unset fields.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.TopP == 0 {
		cfg.TopP = DefaultTopP
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HealthTimeout == 0 {
		cfg.HealthTimeout = DefaultHealthTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{} // timeout via context, not client
	}

	return &Client{cfg: cfg, http: httpClient}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// Generate sends messages to the chat completions endpoint and returns the
// first choice's content. Every failure is a *BackendError.
func (c *Client) Generate(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	body, err := c.buildRequestBody(messages, temperature, maxTokens)
	if err != nil {
		return "", newBackendError("encode request", 0, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := c.cfg.BaseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", newBackendError("create request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", newBackendError("request", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", newBackendError("read response", resp.StatusCode, err)
	}

	log.Debug().
		Int("status", resp.StatusCode).
		Int("messages", len(messages)).
		Dur("duration", time.Since(start)).
		Msg("generation backend responded")

	if resp.StatusCode != http.StatusOK {
		return "", newBackendError("status", resp.StatusCode,
			fmt.Errorf("backend returned status %d: %s", resp.StatusCode, errorDetail(respBody)))
	}

	if !gjson.ValidBytes(respBody) {
		return "", newBackendError("decode response", resp.StatusCode, fmt.Errorf("invalid JSON body"))
	}
	content := gjson.GetBytes(respBody, "choices.0.message.content")
	if !content.Exists() {
		return "", newBackendError("decode response", resp.StatusCode, fmt.Errorf("missing choices[0].message.content"))
	}
	if content.Type != gjson.String {
		return "", newBackendError("decode response", resp.StatusCode,
			fmt.Errorf("choices[0].message.content is %s, want string", content.Type))
	}
	return content.String(), nil
}

// HealthCheck probes <root>/v1/models. Any failure collapses to false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL(c.cfg.BaseURL), nil)
	if err != nil {
		return false
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("generation backend health probe failed")
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	return resp.StatusCode == http.StatusOK
}

func (c *Client) buildRequestBody(messages []Message, temperature float64, maxTokens int) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if c.cfg.Model != "" {
		if body, err = sjson.SetBytes(body, "model", c.cfg.Model); err != nil {
			return nil, err
		}
	}
	if body, err = sjson.SetBytes(body, "messages", messages); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "temperature", temperature); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "max_tokens", maxTokens); err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "top_p", c.cfg.TopP)
}

// modelsURL drops a trailing "/v1" path segment and appends "/v1/models".
// The host is never touched.
func modelsURL(baseURL string) string {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/v1/models"
	}
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/v1") + "/v1/models"
	u.RawPath = ""
	return u.String()
}

// errorDetail prefers an OpenAI-style error.message and falls back to the
// truncated raw body.
func errorDetail(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() && msg.String() != "" {
		return msg.String()
	}
	s := string(body)
	if len(s) > maxErrorBodyLen {
		s = s[:maxErrorBodyLen] + "... (truncated)"
	}
	return s
}
