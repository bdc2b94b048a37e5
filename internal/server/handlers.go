package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-optimizer/external"
	"github.com/compresr/prompt-optimizer/internal/monitoring"
	"github.com/compresr/prompt-optimizer/internal/optimizer"
	"github.com/compresr/prompt-optimizer/internal/tokens"
	"github.com/compresr/prompt-optimizer/internal/vendors"
)

// =============================================================================
// ROUTES
// =============================================================================

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := InfoResponse{
		Message: "Prompt Optimizer API",
		Version: s.version,
		Health:  "/health",
		Schema:  "/api/schema",
	}
	if s.flow != nil {
		info.Think = "/ws/think"
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.svc.HealthCheck(r.Context())
	resp := HealthResponse{
		Status:            "healthy",
		LMStudioAvailable: health.Available,
		VendorAdapters:    health.RegisteredVendorCount,
		Metrics:           s.metrics.Stats(),
	}
	if s.flow != nil {
		resp.ActiveThinkSessions = s.flow.Sessions().Len()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVendors(w http.ResponseWriter, r *http.Request) {
	infos := s.vendorInfos()
	writeJSON(w, http.StatusOK, VendorsResponse{Vendors: infos, Total: len(infos)})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.schemas)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req OptimizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	vendor, err := vendors.ParseVendor(req.Vendor)
	if err != nil {
		s.fail(w, r, monitoring.OpOptimize, req.Vendor, err)
		return
	}

	optReq := optimizer.Request{
		OriginalPrompt: req.Prompt,
		TargetVendor:   vendor,
		Context:        req.Context,
	}
	if req.MaxLength != nil {
		optReq.MaxLength = *req.MaxLength
	}

	start := time.Now()
	result, err := s.svc.Optimize(r.Context(), optReq)
	if err != nil {
		s.fail(w, r, monitoring.OpOptimize, vendor.String(), err)
		return
	}
	s.metrics.RecordOperation(monitoring.OpOptimize)
	writeJSON(w, http.StatusOK, s.optimizeResponse(r, monitoring.OpOptimize, result, time.Since(start)))
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req GenerateQuestionsRequest
	if !s.decode(w, r, &req) {
		return
	}
	vendor, err := vendors.ParseVendor(req.Vendor)
	if err != nil {
		s.fail(w, r, monitoring.OpGenerateQuestions, req.Vendor, err)
		return
	}

	start := time.Now()
	questions, err := s.svc.GenerateQuestions(r.Context(), req.Prompt, vendor, req.NumQuestions)
	if err != nil {
		s.fail(w, r, monitoring.OpGenerateQuestions, vendor.String(), err)
		return
	}
	s.metrics.RecordOperation(monitoring.OpGenerateQuestions)
	s.requestLogger.LogOptimization(&monitoring.OptimizationInfo{
		RequestID: monitoring.RequestIDFromContext(r.Context()),
		Operation: monitoring.OpGenerateQuestions,
		Vendor:    vendor.String(),
		Questions: len(questions),
		Duration:  time.Since(start),
	})
	writeJSON(w, http.StatusOK, GenerateQuestionsResponse{Questions: questions, Total: len(questions)})
}

func (s *Server) handleOptimizeWithAnswers(w http.ResponseWriter, r *http.Request) {
	var req OptimizeWithAnswersRequest
	if !s.decode(w, r, &req) {
		return
	}
	vendor, err := vendors.ParseVendor(req.Vendor)
	if err != nil {
		s.fail(w, r, monitoring.OpOptimizeWithAnswers, req.Vendor, err)
		return
	}

	start := time.Now()
	result, err := s.svc.OptimizeWithAnswers(r.Context(), optimizer.AnswersRequest{
		OriginalPrompt: req.Prompt,
		TargetVendor:   vendor,
		Questions:      req.Questions,
		Answers:        req.Answers,
		Context:        req.Context,
	})
	if err != nil {
		s.fail(w, r, monitoring.OpOptimizeWithAnswers, vendor.String(), err)
		return
	}
	s.metrics.RecordOperation(monitoring.OpOptimizeWithAnswers)
	writeJSON(w, http.StatusOK, s.optimizeResponse(r, monitoring.OpOptimizeWithAnswers, result, time.Since(start)))
}

// =============================================================================
// HELPERS
// =============================================================================

// optimizeResponse converts a result and logs it.
func (s *Server) optimizeResponse(r *http.Request, op monitoring.Operation, result *optimizer.OptimizedPrompt, took time.Duration) OptimizeResponse {
	stats := s.tokens.Stats(result.Original, result.Optimized)
	s.requestLogger.LogOptimization(&monitoring.OptimizationInfo{
		RequestID:       monitoring.RequestIDFromContext(r.Context()),
		Operation:       op,
		Vendor:          result.Vendor.String(),
		OriginalTokens:  stats.Original,
		OptimizedTokens: stats.Optimized,
		Duration:        took,
	})
	return NewOptimizeResponse(result, stats)
}

// NewOptimizeResponse converts a result and its token stats to the wire shape.
func NewOptimizeResponse(result *optimizer.OptimizedPrompt, stats tokens.Stats) OptimizeResponse {
	return OptimizeResponse{
		Original:         result.Original,
		Optimized:        result.Optimized,
		Vendor:           result.Vendor.String(),
		EnhancementNotes: result.EnhancementNotes,
		Metadata:         result.Metadata,
		Tokens:           stats,
	}
}

// decode reads a JSON body into dst and validates it.
// On failure it writes a 400 and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	requestID := monitoring.RequestIDFromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.alerts.FlagInvalidRequest(requestID, "request body too large")
			writeError(w, http.StatusRequestEntityTooLarge, "Request Too Large", fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		s.alerts.FlagInvalidRequest(requestID, "invalid JSON body")
		writeError(w, http.StatusBadRequest, "Invalid Request", "invalid JSON body: "+err.Error())
		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		detail := validationDetail(err)
		s.alerts.FlagInvalidRequest(requestID, detail)
		writeError(w, http.StatusBadRequest, "Validation Failed", detail)
		return false
	}
	return true
}

// fail maps a service error to a response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op monitoring.Operation, vendor string, err error) {
	requestID := monitoring.RequestIDFromContext(r.Context())
	status, title := statusFor(err)

	switch status {
	case http.StatusBadGateway:
		s.metrics.RecordBackendFailure()
		s.alerts.FlagBackendFailure(requestID, op, vendor, err)
	case http.StatusBadRequest:
		s.alerts.FlagInvalidRequest(requestID, err.Error())
	default:
		log.Error().Err(err).Str("request_id", requestID).Str("operation", string(op)).Msg("request failed")
	}

	detail := err.Error()
	if status >= http.StatusInternalServerError && s.cfg.App.IsProduction() {
		detail = "An unexpected error occurred"
	}
	writeError(w, status, title, detail)
}

// statusFor maps the error taxonomy to HTTP.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, vendors.ErrVendorNotSupported):
		return http.StatusBadRequest, "Vendor Not Supported"
	case errors.Is(err, optimizer.ErrValidation):
		return http.StatusBadRequest, "Validation Failed"
	case errors.Is(err, external.ErrBackend):
		return http.StatusBadGateway, "Generation Backend Failure"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	writeJSON(w, status, ErrorResponse{Error: title, Detail: detail})
}
