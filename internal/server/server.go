// Package server exposes the prompt optimizer over HTTP and websocket.
//
// DESIGN: Thin transport layer over optimizer.Service and thinkmode.Flow.
// Handlers decode and validate the body, call exactly one service method,
// and map typed errors to status codes:
//
//	vendors.ErrVendorNotSupported → 400
//	optimizer.ErrValidation       → 400
//	external.ErrBackend           → 502
//	anything else                 → 500
//
// No default content is ever substituted for a failed generation.
package server

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-optimizer/internal/config"
	"github.com/compresr/prompt-optimizer/internal/monitoring"
	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/thinkmode"
	"github.com/compresr/prompt-optimizer/internal/tokens"
)

// Options carries the collaborators a Server needs.
type Options struct {
	Config  *config.Config
	Service *optimizer.Service
	Flow    *thinkmode.Flow    // Optional; websocket Think Mode is disabled without it
	Tokens  *tokens.Counter    // Optional; defaults to tokens.NewCounter()
	Logger  *monitoring.Logger // Optional; defaults to monitoring.Global
	Version string
}

// Server is the HTTP front-end.
type Server struct {
	cfg           *config.Config
	svc           *optimizer.Service
	flow          *thinkmode.Flow
	allow         *thinkmode.AllowList
	tokens        *tokens.Counter
	version       string
	logger        *monitoring.Logger
	requestLogger *monitoring.RequestLogger
	metrics       *monitoring.MetricsCollector
	alerts        *monitoring.AlertManager
	limiter       *rateLimiter
	validate      *validator.Validate
	schemas       map[string]any
	handler       http.Handler
	httpServer    *http.Server
}

// New builds a server from opts.
func New(opts Options) *Server {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = monitoring.Global(monitoring.LoggerConfig{
			Level:  cfg.Monitoring.LogLevel,
			Format: cfg.Monitoring.LogFormat,
			Output: cfg.Monitoring.LogOutput,
		})
	}
	counter := opts.Tokens
	if counter == nil {
		counter = tokens.NewCounter()
	}

	s := &Server{
		cfg:           cfg,
		svc:           opts.Service,
		flow:          opts.Flow,
		allow:         thinkmode.NewAllowList(cfg.Think.AllowedUsers),
		tokens:        counter,
		version:       opts.Version,
		logger:        logger,
		requestLogger: monitoring.NewRequestLogger(logger),
		metrics:       monitoring.NewMetricsCollector(),
		alerts: monitoring.NewAlertManager(logger, monitoring.AlertConfig{
			HighLatencyThreshold: cfg.Monitoring.HighLatencyThreshold,
		}),
		validate: newValidator(),
		schemas:  buildSchemas(),
	}
	if rl := cfg.Server.RateLimit; rl.Enabled {
		s.limiter = newRateLimiter(rl.RequestsPerSecond, rl.Burst, rl.MaxClients)
	}

	s.handler = s.panicRecovery(s.rateLimit(s.loggingMiddleware(s.security(s.routes()))))
	s.httpServer = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/vendors", s.handleVendors)
	mux.HandleFunc("GET /api/schema", s.handleSchema)
	mux.HandleFunc("POST /api/optimize", s.handleOptimize)
	mux.HandleFunc("POST /api/think/generate-questions", s.handleGenerateQuestions)
	mux.HandleFunc("POST /api/think/optimize-with-answers", s.handleOptimizeWithAnswers)
	if s.flow != nil {
		mux.HandleFunc("GET /ws/think", s.handleThinkSocket)
	}
	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Metrics returns the server's metrics collector.
func (s *Server) Metrics() *monitoring.MetricsCollector { return s.metrics }

// Start listens on the configured address. It blocks until the server stops
// and returns nil after a graceful Shutdown.
func (s *Server) Start() error {
	log.Info().
		Str("addr", s.httpServer.Addr).
		Str("env", s.cfg.App.Env).
		Int("vendors", s.svc.Registry().Count()).
		Bool("think_socket", s.flow != nil).
		Msg("prompt optimizer listening")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	return s.httpServer.Shutdown(ctx)
}

// Close releases background resources without touching the listener.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.stop()
	}
}

// newValidator reports field errors with their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
