package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"knowledge-ai/internal/contextutil"
	"knowledge-ai/internal/storage"
)

// FactsHandler handles saving and listing extractable facts for human
// validation.
type FactsHandler struct {
	factRepo storage.FactStore
}

// NewFactsHandler creates a new FactsHandler.
func NewFactsHandler(factRepo storage.FactStore) *FactsHandler {
	return &FactsHandler{factRepo: factRepo}
}

// SaveFactRequest represents the payload for saving a fact.
//
// swagger:model SaveFactRequest
type SaveFactRequest struct {
	Content       string   `json:"content"`
	SourceContext string   `json:"sourceContext,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`
}

// FactResponse represents a stored fact.
//
// swagger:model FactResponse
type FactResponse struct {
	ID            string   `json:"id"`
	Content       string   `json:"content"`
	SourceContext string   `json:"sourceContext"`
	Tags          []string `json:"tags"`
	Confidence    float64  `json:"confidence"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"createdAt"`
	ReviewedAt    string   `json:"reviewedAt,omitempty"`
}

// ListFactsResponse wraps a fact listing.
//
// swagger:model ListFactsResponse
type ListFactsResponse struct {
	Facts []FactResponse `json:"facts"`
}

// UpdateFactStatusRequest moves a fact through the review workflow.
//
// swagger:model UpdateFactStatusRequest
type UpdateFactStatusRequest struct {
	Status string `json:"status"`
}

// ServeHTTP routes fact requests by method: POST saves a fact, GET
// lists facts filtered by the optional status query parameter.
func (h *FactsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.save(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *FactsHandler) save(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SaveFactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Content) == "" {
		logger.WarnContext(ctx, "empty fact content")
		writeError(w, http.StatusBadRequest, "Content is required")
		return
	}
	if req.Confidence < 0 || req.Confidence > 1 {
		logger.WarnContext(ctx, "confidence out of range", "confidence", req.Confidence)
		writeError(w, http.StatusBadRequest, "Confidence must be between 0 and 1")
		return
	}

	record := &storage.FactRecord{
		ID:            uuid.New().String(),
		Content:       strings.TrimSpace(req.Content),
		SourceContext: req.SourceContext,
		Tags:          req.Tags,
		Confidence:    req.Confidence,
		Status:        storage.FactStatusPending,
	}

	if err := h.factRepo.Insert(ctx, record); err != nil {
		logger.ErrorContext(ctx, "failed to save fact", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save fact")
		return
	}

	logger.InfoContext(ctx, "fact saved for review", "fact_id", record.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(factResponse(record)); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *FactsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	status := strings.ToLower(r.URL.Query().Get("status"))
	switch status {
	case "", storage.FactStatusPending, storage.FactStatusApproved, storage.FactStatusRejected:
	default:
		writeError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}

	records, err := h.factRepo.ListByStatus(ctx, status)
	if err != nil {
		logger.ErrorContext(ctx, "failed to list facts", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list facts")
		return
	}

	resp := ListFactsResponse{Facts: make([]FactResponse, 0, len(records))}
	for _, record := range records {
		resp.Facts = append(resp.Facts, factResponse(record))
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// FactStatusHandler handles review-status updates for a single fact.
type FactStatusHandler struct {
	factRepo storage.FactStore
}

// NewFactStatusHandler creates a new FactStatusHandler.
func NewFactStatusHandler(factRepo storage.FactStore) *FactStatusHandler {
	return &FactStatusHandler{factRepo: factRepo}
}

// ServeHTTP updates a fact's review status. The fact ID is taken from
// the "id" path parameter.
func (h *FactStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPatch {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Fact ID is required")
		return
	}

	var req UpdateFactStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	status := strings.ToLower(req.Status)
	if status != storage.FactStatusApproved && status != storage.FactStatusRejected {
		writeError(w, http.StatusBadRequest, "Status must be approved or rejected")
		return
	}

	if err := h.factRepo.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Fact not found")
			return
		}
		logger.ErrorContext(ctx, "failed to update fact status", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update fact")
		return
	}

	logger.InfoContext(ctx, "fact status updated", "fact_id", id, "status", status)
	w.WriteHeader(http.StatusNoContent)
}

func factResponse(record *storage.FactRecord) FactResponse {
	resp := FactResponse{
		ID:            record.ID,
		Content:       record.Content,
		SourceContext: record.SourceContext,
		Tags:          record.Tags,
		Confidence:    record.Confidence,
		Status:        record.Status,
		CreatedAt:     record.CreatedAt.UTC().Format(time.RFC3339),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if record.ReviewedAt != nil {
		resp.ReviewedAt = record.ReviewedAt.UTC().Format(time.RFC3339)
	}
	return resp
}
