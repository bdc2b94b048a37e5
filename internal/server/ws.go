// Websocket Think Mode front-end.
//
// DESIGN: One websocket connection is one chat. The session key is the
// ?user= identity plus a per-connection ID, so a user may run several chats
// side by side. Frames are read and answered in a single loop, which keeps
// steps for a chat in arrival order; the Manager lock serializes them
// against the TTL sweeper.
//
//	client → server: prompt, vendor, count, answer, cancel
//	server → client: vendors, counts, question, result, cancelled, error
package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/monitoring"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// Client frame types.
const (
	FramePrompt = "prompt"
	FrameVendor = "vendor"
	FrameCount  = "count"
	FrameAnswer = "answer"
	FrameCancel = "cancel"
)

// Server frame types.
const (
	FrameVendors   = "vendors"
	FrameCounts    = "counts"
	FrameQuestion  = "question"
	FrameResult    = "result"
	FrameCancelled = "cancelled"
	FrameError     = "error"
)

// ClientFrame is a message from the chat client.
type ClientFrame struct {
	Type   string `json:"type" jsonschema:"enum=prompt,enum=vendor,enum=count,enum=answer,enum=cancel"`
	Text   string `json:"text,omitempty" jsonschema:"description=Prompt or answer text"`
	Vendor string `json:"vendor,omitempty" jsonschema:"description=Vendor identifier for vendor frames"`
	Count  int    `json:"count,omitempty" jsonschema:"description=Question count for count frames"`
}

// QuestionFrame carries one clarifying question.
type QuestionFrame struct {
	Index int    `json:"index"`
	Total int    `json:"total"`
	Text  string `json:"text"`
}

// ServerFrame is a message to the chat client.
type ServerFrame struct {
	Type      string            `json:"type"`
	SessionID string            `json:"session_id,omitempty"`
	State     string            `json:"state,omitempty"`
	Vendors   []VendorInfo      `json:"vendors,omitempty"`
	Counts    []int             `json:"counts,omitempty"`
	Question  *QuestionFrame    `json:"question,omitempty"`
	Result    *OptimizeResponse `json:"result,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (s *Server) handleThinkSocket(w http.ResponseWriter, r *http.Request) {
	user := r.URL.Query().Get("user")
	if err := s.allow.Check(user); err != nil {
		log.Warn().Str("user", user).Msg("think mode access denied")
		writeError(w, http.StatusForbidden, "Access Denied", err.Error())
		return
	}

	// Chats outlive the server's read and write timeouts.
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, s.acceptOptions())
	if err != nil {
		log.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	key := thinkmode.SessionKey{UserID: user, ChatID: uuid.New().String()}
	defer s.flow.Sessions().Delete(key)

	ctx := r.Context()
	log.Debug().Str("key", key.String()).Msg("think mode chat connected")

	for {
		var in ClientFrame
		if err := wsjson.Read(ctx, conn, &in); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				log.Debug().Err(err).Str("key", key.String()).Msg("think mode chat read ended")
			}
			return
		}

		out := s.thinkStep(ctx, key, in)
		if err := wsjson.Write(ctx, conn, out); err != nil {
			log.Debug().Err(err).Str("key", key.String()).Msg("think mode chat write failed")
			return
		}
	}
}

// thinkStep applies one client frame to the chat's session.
func (s *Server) thinkStep(ctx context.Context, key thinkmode.SessionKey, in ClientFrame) ServerFrame {
	var (
		step thinkmode.Step
		err  error
	)

	switch in.Type {
	case FramePrompt:
		step, err = s.flow.Start(key, in.Text)
		if err == nil {
			return ServerFrame{Type: FrameVendors, SessionID: step.SessionID, State: string(step.State), Vendors: s.vendorInfos()}
		}
	case FrameVendor:
		var vendor vendors.Vendor
		if vendor, err = vendors.ParseVendor(in.Vendor); err == nil {
			step, err = s.flow.SelectVendor(key, vendor)
		}
		if err == nil {
			return ServerFrame{Type: FrameCounts, SessionID: step.SessionID, State: string(step.State), Counts: thinkmode.QuestionCountChoices}
		}
	case FrameCount:
		step, err = s.flow.SelectQuestionCount(ctx, key, in.Count)
		if err == nil {
			s.metrics.RecordOperation(monitoring.OpGenerateQuestions)
		}
	case FrameAnswer:
		step, err = s.flow.Answer(ctx, key, in.Text)
		if err == nil && step.State == thinkmode.StateDone {
			s.metrics.RecordOperation(monitoring.OpOptimizeWithAnswers)
			s.metrics.RecordThinkSession()
		}
	case FrameCancel:
		step, err = s.flow.Cancel(key)
		if err == nil {
			return ServerFrame{Type: FrameCancelled, SessionID: step.SessionID, State: string(step.State)}
		}
	default:
		return ServerFrame{Type: FrameError, Error: "unknown frame type: " + in.Type}
	}

	if err != nil {
		if errors.Is(err, external.ErrBackend) {
			s.metrics.RecordBackendFailure()
		}
		return ServerFrame{Type: FrameError, SessionID: step.SessionID, State: string(step.State), Error: err.Error()}
	}
	return s.stepFrame(step)
}

// stepFrame renders a question or the final result.
func (s *Server) stepFrame(step thinkmode.Step) ServerFrame {
	frame := ServerFrame{SessionID: step.SessionID, State: string(step.State)}
	switch {
	case step.State == thinkmode.StateDone && step.Result != nil:
		resp := NewOptimizeResponse(step.Result, s.tokens.Stats(step.Result.Original, step.Result.Optimized))
		frame.Type = FrameResult
		frame.Result = &resp
	case step.State == thinkmode.StateAnsweringQuestion:
		frame.Type = FrameQuestion
		frame.Question = &QuestionFrame{Index: step.QuestionIndex, Total: step.QuestionTotal, Text: step.Question}
	default:
		frame.Type = FrameError
		frame.Error = "unexpected session state: " + string(step.State)
	}
	return frame
}

func (s *Server) vendorInfos() []VendorInfo {
	registry := s.svc.Registry()
	out := make([]VendorInfo, 0, registry.Count())
	for _, v := range registry.Vendors() {
		adapter, err := registry.Get(v)
		if err != nil {
			continue
		}
		out = append(out, VendorInfo{
			ID:               v.String(),
			Name:             v.DisplayName(),
			EnhancementNotes: adapter.EnhancementNotes(),
			Metadata:         adapter.Metadata(),
		})
	}
	return out
}

// acceptOptions maps CORS origins to websocket origin patterns.
func (s *Server) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	for _, origin := range s.cfg.Server.CORSOrigins {
		if origin == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			opts.OriginPatterns = append(opts.OriginPatterns, u.Host)
		}
	}
	return opts
}
