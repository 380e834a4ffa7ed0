package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"knowledge-ai/internal/contextutil"
	"knowledge-ai/internal/enhance"
	"knowledge-ai/internal/facts"
	"knowledge-ai/internal/llm"
	"knowledge-ai/internal/retrieval"
)

// QueryEngine runs a retrieval-augmented query. Implemented by
// retrieval.Pipeline.
type QueryEngine interface {
	Query(ctx context.Context, req retrieval.Request) (retrieval.Response, error)
}

// QueryHandler handles HTTP requests for retrieval-augmented queries.
type QueryHandler struct {
	engine QueryEngine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(engine QueryEngine) *QueryHandler {
	return &QueryHandler{engine: engine}
}

// QueryRequest represents the HTTP request payload for queries.
// This mirrors retrieval.Request but is defined here for HTTP layer separation.
//
// swagger:model QueryRequest
type QueryRequest struct {
	Query           string        `json:"query"`
	Scope           *ScopeRequest `json:"scope,omitempty"`
	ModelPreference string        `json:"modelPreference,omitempty"`
	History         []llm.Message `json:"history,omitempty"`
	Limit           int           `json:"limit,omitempty"`
}

// ScopeRequest narrows retrieval to a document or theme labels.
//
// swagger:model ScopeRequest
type ScopeRequest struct {
	DocumentID string   `json:"documentId,omitempty"`
	Themes     []string `json:"themes,omitempty"`
}

// QueryResponse represents the HTTP response payload for queries.
//
// swagger:model QueryResponse
type QueryResponse struct {
	// The generated answer grounded in the cited passages
	AnswerText string `json:"answerText"`

	// Passages the answer was grounded in, 1:1 with the prompt context
	Citations []retrieval.Citation `json:"citations"`

	// Claims mined from the answer for optional validation
	ExtractableFacts []facts.Fact `json:"extractableFacts"`

	// Concept overlay; null when enhancement was unavailable
	Enhancement *enhance.Enhancement `json:"enhancement"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// ServeHTTP handles HTTP requests for retrieval-augmented queries.
//
// swagger:route POST /api/query runQuery
//
// # Ask a question against the knowledge base
//
// Embeds the query, gathers passage candidates from all applicable
// sources, and returns a grounded answer with citations, extractable
// facts, and a concept enhancement overlay.
//
// ---
// consumes:
// - application/json
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Successful response with answer and citations
//	  schema:
//	    "$ref": "#/definitions/QueryResponse"
//	'400':
//	  description: Bad request (missing query)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: External service error (embedding or LLM provider)
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		logger.WarnContext(ctx, "empty query in request")
		writeError(w, http.StatusBadRequest, "Query is required")
		return
	}

	if req.Limit < 0 {
		req.Limit = 0
	}

	pipelineReq := retrieval.Request{
		Query:           req.Query,
		ModelPreference: req.ModelPreference,
		History:         req.History,
		Limit:           req.Limit,
	}
	if req.Scope != nil {
		pipelineReq.Scope = retrieval.Scope{
			DocumentID: req.Scope.DocumentID,
			Themes:     req.Scope.Themes,
		}
	}

	resp, err := h.engine.Query(ctx, pipelineReq)
	if err != nil {
		h.handlePipelineError(w, r, err)
		return
	}

	result := QueryResponse{
		AnswerText:       resp.AnswerText,
		Citations:        resp.Citations,
		ExtractableFacts: resp.ExtractableFacts,
		Enhancement:      resp.Enhancement,
	}
	if result.Citations == nil {
		result.Citations = []retrieval.Citation{}
	}
	if result.ExtractableFacts == nil {
		result.ExtractableFacts = []facts.Fact{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handlePipelineError maps pipeline errors to HTTP status codes. Only
// embedding and generation failures abort a request; the messages stay
// generic so provider internals never leak to callers.
func (h *QueryHandler) handlePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "query pipeline error", "error", err)

	switch {
	case errors.Is(err, retrieval.ErrEmbeddingFailure):
		writeError(w, http.StatusBadGateway, "Could not process the query")
	case errors.Is(err, retrieval.ErrGenerationFailure):
		writeError(w, http.StatusBadGateway, "Could not generate an answer")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}
