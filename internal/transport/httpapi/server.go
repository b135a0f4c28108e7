// Package httpapi is the query front-end: a small chi server exposing
// question answering, health, and index statistics. Downstream failures are
// mapped to readable error messages, never raw provider errors.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
	queryuc "github.com/kailas-cloud/docdex/internal/usecase/query"
	statsuc "github.com/kailas-cloud/docdex/internal/usecase/stats"
)

// Server wires use case services into HTTP handlers.
type Server struct {
	query  *queryuc.Service
	health *healthuc.Service
	stats  *statsuc.Service
	logger *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(
	query *queryuc.Service,
	health *healthuc.Service,
	stats *statsuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{query: query, health: health, stats: stats, logger: logger}
}

// Routes mounts all handlers on the router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/query", s.handleQuery)
	r.Get("/health", s.handleHealth)
	r.Get("/index/stats", s.handleStats)
	r.Get("/metrics", s.handleMetrics)
}

// QueryRequest is the POST /query payload.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// SourceRef is one retrieved grounding reference.
type SourceRef struct {
	ID           string  `json:"id"`
	Score        float64 `json:"score"`
	Summary      string  `json:"summary"`
	Source       string  `json:"source"`
	ElementType  string  `json:"element_type,omitempty"`
	PageNumber   string  `json:"page_number,omitempty"`
	OriginalText string  `json:"original_text,omitempty"`
}

// QueryResponse is the POST /query result.
type QueryResponse struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "question is required")
		return
	}

	answer, err := s.query.Answer(r.Context(), req.Question, req.TopK)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := QueryResponse{
		Answer:  answer.Text,
		Sources: make([]SourceRef, 0, len(answer.Sources)),
	}
	for _, n := range answer.Sources {
		resp.Sources = append(resp.Sources, SourceRef{
			ID:           n.ID,
			Score:        n.Score,
			Summary:      n.Summary,
			Source:       n.Metadata[domain.MetaSource],
			ElementType:  n.Metadata[domain.MetaElementType],
			PageNumber:   n.Metadata[domain.MetaPageNumber],
			OriginalText: n.Metadata[domain.MetaOriginalText],
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
		s.logger.Warn("health check degraded", zap.Any("checks", report.Checks))
	}

	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries":    st.Entries,
		"dimensions": st.Dimensions,
		"model":      st.Model,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// handleDomainError maps sentinel errors to status codes with messages a
// user can act on. Details stay in the log.
func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Request-scoped logger carries the request id set by the middleware.
	logpkg.FromContext(r.Context()).Error("request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found",
			"no indexed documents match this question yet")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate_limited",
			"the model provider is rate limiting requests, try again shortly")
	case errors.Is(err, domain.ErrProviderError):
		writeError(w, http.StatusBadGateway, "provider_error",
			"the model provider is currently unavailable")
	case errors.Is(err, domain.ErrInvalidRequest):
		writeError(w, http.StatusBadGateway, "provider_rejected_request",
			"the model provider rejected this request")
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "index_unavailable",
			"the vector index is currently unavailable")
	case errors.Is(err, domain.ErrAuthFailed):
		writeError(w, http.StatusBadGateway, "provider_auth_failed",
			"the service is misconfigured for its model provider")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error",
			"something went wrong handling this request")
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
