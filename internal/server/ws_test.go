package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/config"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
)

func dialThink(t *testing.T, s *Server, user string) (*websocket.Conn, context.Context) {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/think?user=" + user
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn, ctx
}

func exchange(t *testing.T, ctx context.Context, conn *websocket.Conn, in ClientFrame) ServerFrame {
	t.Helper()
	require.NoError(t, wsjson.Write(ctx, conn, in))
	var out ServerFrame
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	return out
}

func TestThinkSocket_FullConversation(t *testing.T) {
	s := newTestServer(t, newBackend(), nil)
	conn, ctx := dialThink(t, s, "alice")

	out := exchange(t, ctx, conn, ClientFrame{Type: FramePrompt, Text: "write fibonacci"})
	require.Equal(t, FrameVendors, out.Type, out.Error)
	assert.Len(t, out.Vendors, 6)
	assert.NotEmpty(t, out.SessionID)

	out = exchange(t, ctx, conn, ClientFrame{Type: FrameVendor, Vendor: "claude"})
	require.Equal(t, FrameCounts, out.Type, out.Error)
	assert.Equal(t, []int{5, 10, 25}, out.Counts)

	out = exchange(t, ctx, conn, ClientFrame{Type: FrameCount, Count: 5})
	require.Equal(t, FrameQuestion, out.Type, out.Error)
	require.NotNil(t, out.Question)
	assert.Equal(t, 0, out.Question.Index)
	assert.Equal(t, 5, out.Question.Total)
	assert.Equal(t, "What is the audience?", out.Question.Text)

	for i := 1; i < 5; i++ {
		out = exchange(t, ctx, conn, ClientFrame{Type: FrameAnswer, Text: "answer"})
		require.Equal(t, FrameQuestion, out.Type, out.Error)
		assert.Equal(t, i, out.Question.Index)
	}

	out = exchange(t, ctx, conn, ClientFrame{Type: FrameAnswer, Text: "last answer"})
	require.Equal(t, FrameResult, out.Type, out.Error)
	require.NotNil(t, out.Result)
	assert.Equal(t, string(thinkmode.StateDone), out.State)
	assert.Equal(t, "claude", out.Result.Vendor)
	assert.Contains(t, out.Result.EnhancementNotes, "Enhanced with 5 clarifying questions")

	stats := s.Metrics().Stats()
	assert.Equal(t, int64(1), stats["think_sessions"])
	assert.Equal(t, int64(1), stats["question_sets"])
}

func TestThinkSocket_OutOfOrderFrames(t *testing.T) {
	s := newTestServer(t, newBackend(), nil)
	conn, ctx := dialThink(t, s, "bob")

	out := exchange(t, ctx, conn, ClientFrame{Type: FrameAnswer, Text: "too early"})
	assert.Equal(t, FrameError, out.Type)
	assert.Contains(t, out.Error, thinkmode.ErrSessionNotFound.Error())

	exchange(t, ctx, conn, ClientFrame{Type: FramePrompt, Text: "x"})
	out = exchange(t, ctx, conn, ClientFrame{Type: FrameCount, Count: 5})
	assert.Equal(t, FrameError, out.Type)
	assert.Contains(t, out.Error, thinkmode.ErrInvalidTransition.Error())
	assert.Equal(t, string(thinkmode.StateAwaitingPrompt), out.State)

	out = exchange(t, ctx, conn, ClientFrame{Type: FrameVendor, Vendor: "mistral"})
	assert.Equal(t, FrameError, out.Type)

	out = exchange(t, ctx, conn, ClientFrame{Type: "dance"})
	assert.Equal(t, FrameError, out.Type)
	assert.Contains(t, out.Error, "unknown frame type")
}

func TestThinkSocket_InvalidCountKeepsSession(t *testing.T) {
	backend := newBackend()
	s := newTestServer(t, backend, nil)
	conn, ctx := dialThink(t, s, "carol")

	exchange(t, ctx, conn, ClientFrame{Type: FramePrompt, Text: "x"})
	exchange(t, ctx, conn, ClientFrame{Type: FrameVendor, Vendor: "openai"})

	out := exchange(t, ctx, conn, ClientFrame{Type: FrameCount, Count: 3})
	assert.Equal(t, FrameError, out.Type)
	assert.Equal(t, string(thinkmode.StateVendorSelected), out.State)
	assert.Zero(t, backend.callCount())

	out = exchange(t, ctx, conn, ClientFrame{Type: FrameCount, Count: 5})
	assert.Equal(t, FrameQuestion, out.Type)
}

func TestThinkSocket_BackendFailureCancels(t *testing.T) {
	backend := newBackend()
	backend.err = &external.BackendError{Op: "request", Err: errors.New("connection refused")}
	s := newTestServer(t, backend, nil)
	conn, ctx := dialThink(t, s, "dave")

	exchange(t, ctx, conn, ClientFrame{Type: FramePrompt, Text: "x"})
	exchange(t, ctx, conn, ClientFrame{Type: FrameVendor, Vendor: "openai"})

	out := exchange(t, ctx, conn, ClientFrame{Type: FrameCount, Count: 10})
	assert.Equal(t, FrameError, out.Type)
	assert.Equal(t, string(thinkmode.StateCancelled), out.State)
	assert.Contains(t, out.Error, "connection refused")
	assert.Equal(t, int64(1), s.Metrics().Stats()["backend_failures"])
}

func TestThinkSocket_Cancel(t *testing.T) {
	s := newTestServer(t, newBackend(), nil)
	conn, ctx := dialThink(t, s, "erin")

	exchange(t, ctx, conn, ClientFrame{Type: FramePrompt, Text: "x"})
	out := exchange(t, ctx, conn, ClientFrame{Type: FrameCancel})
	assert.Equal(t, FrameCancelled, out.Type)
	assert.Equal(t, string(thinkmode.StateCancelled), out.State)

	out = exchange(t, ctx, conn, ClientFrame{Type: FrameVendor, Vendor: "openai"})
	assert.Equal(t, FrameError, out.Type)
}

func TestThinkSocket_AllowList(t *testing.T) {
	s := newTestServer(t, newBackend(), func(c *config.Config) {
		c.Think.AllowedUsers = []string{"42"}
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	base := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/think?user="

	_, resp, err := websocket.Dial(ctx, base+"7", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.Dial(ctx, base+"42", nil)
	require.NoError(t, err)
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestThinkSocket_SessionRemovedOnDisconnect(t *testing.T) {
	s := newTestServer(t, newBackend(), nil)
	conn, ctx := dialThink(t, s, "frank")

	exchange(t, ctx, conn, ClientFrame{Type: FramePrompt, Text: "x"})
	assert.Equal(t, 1, s.flow.Sessions().Len())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return s.flow.Sessions().Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
