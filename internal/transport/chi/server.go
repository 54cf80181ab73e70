// Package chi wires the ask pipeline into an HTTP API.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/devmedia-cloud/answerdex/internal/domain"
	askuc "github.com/devmedia-cloud/answerdex/internal/usecase/ask"
	healthuc "github.com/devmedia-cloud/answerdex/internal/usecase/health"
)

// errorCode is the machine-readable error discriminator in error responses.
type errorCode string

const (
	codeBadRequest            errorCode = "bad_request"
	codeUnauthorized          errorCode = "unauthorized"
	codeNotFound              errorCode = "not_found"
	codeRateLimited           errorCode = "rate_limited"
	codeRetrievalFailed       errorCode = "retrieval_failed"
	codeEmbeddingProvider     errorCode = "embedding_provider_error"
	codeGenerationUnavailable errorCode = "generation_unavailable"
	codeModelNotConfigured    errorCode = "model_not_configured"
	codeInternal              errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// sentinelStatus maps a domain sentinel to its HTTP rendering.
type sentinelStatus struct {
	err    error
	status int
	code   errorCode
}

// Server handles the HTTP surface: the ask endpoint plus health and metrics.
type Server struct {
	ask             *askuc.Service
	health          *healthuc.Service
	defaultPageSize int
	maxPageSize     int
	logger          *zap.Logger
	sentinels       []sentinelStatus
}

// NewServer creates the HTTP API server.
func NewServer(
	ask *askuc.Service,
	health *healthuc.Service,
	defaultPageSize, maxPageSize int,
	logger *zap.Logger,
) *Server {
	return &Server{
		ask:             ask,
		health:          health,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		logger:          logger,
		sentinels: []sentinelStatus{
			{domain.ErrNotFound, http.StatusNotFound, codeNotFound},
			{domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited},
			{domain.ErrRetrievalFailed, http.StatusBadGateway, codeRetrievalFailed},
			{domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProvider},
			{domain.ErrMalformedGeneration, http.StatusBadGateway, codeGenerationUnavailable},
			{domain.ErrGenerationUnavailable, http.StatusServiceUnavailable, codeGenerationUnavailable},
			{domain.ErrModelNotConfigured, http.StatusServiceUnavailable, codeModelNotConfigured},
		},
	}
}

// Routes mounts the API on a router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/ask", s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// askRequest is the POST /ask body.
type askRequest struct {
	Question    string `json:"question"`
	ContentType string `json:"content_type,omitempty"`
	Chunker     string `json:"chunker,omitempty"`
	CuratedOnly bool   `json:"curated_only,omitempty"`
	Synthesize  bool   `json:"synthesize,omitempty"`
	Page        int    `json:"page,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
	User        struct {
		Token       string `json:"token,omitempty"`
		Tier        string `json:"tier,omitempty"`
		HasDiscount bool   `json:"has_discount,omitempty"`
		Language    string `json:"language,omitempty"`
	} `json:"user,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "question is required")
		return
	}
	if req.PageSize <= 0 {
		req.PageSize = s.defaultPageSize
	}
	if req.PageSize > s.maxPageSize {
		writeError(w, http.StatusBadRequest, codeBadRequest,
			"page_size exceeds maximum of "+strconv.Itoa(s.maxPageSize))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())

	resp, err := s.ask.Ask(ctx, askuc.Request{
		Question:    req.Question,
		ContentType: domain.ContentType(req.ContentType),
		Chunker:     domain.ChunkerType(req.Chunker),
		CuratedOnly: req.CuratedOnly,
		Synthesize:  req.Synthesize,
		Page:        req.Page,
		PageSize:    req.PageSize,
		User: domain.UserContext{
			Token:       req.User.Token,
			Tier:        req.User.Tier,
			HasDiscount: req.User.HasDiscount,
			Language:    domain.Language(req.User.Language),
		},
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// handleDomainError renders a domain sentinel, falling back to a logged 500.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, m := range s.sentinels {
		if errors.Is(err, m.err) {
			writeError(w, m.status, m.code, err.Error())
			return
		}
	}
	s.logger.Error("unhandled domain error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
