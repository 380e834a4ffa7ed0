package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"knowledge-ai/internal/retrieval"
)

// mockQueryEngine implements QueryEngine for handler tests.
type mockQueryEngine struct {
	resp     retrieval.Response
	err      error
	received retrieval.Request
}

func (m *mockQueryEngine) Query(ctx context.Context, req retrieval.Request) (retrieval.Response, error) {
	m.received = req
	return m.resp, m.err
}

func postQuery(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryHandler(t *testing.T) {
	engine := &mockQueryEngine{
		resp: retrieval.Response{
			AnswerText: "Grounded answer.",
			Citations: []retrieval.Citation{
				{Text: "passage", Source: "Hoodie Economics (chunk 0)", DocumentTitle: "Hoodie Economics", ChunkID: "c1"},
			},
		},
	}
	handler := NewQueryHandler(engine)

	rec := postQuery(t, handler, QueryRequest{
		Query: "what is hoodie economics?",
		Scope: &ScopeRequest{Themes: []string{"economics"}},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp QueryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.AnswerText != "Grounded answer." {
		t.Errorf("AnswerText = %q", resp.AnswerText)
	}
	if len(resp.Citations) != 1 || resp.Citations[0].ChunkID != "c1" {
		t.Errorf("Citations = %+v", resp.Citations)
	}
	if resp.ExtractableFacts == nil {
		t.Error("ExtractableFacts should encode as an empty array, not null")
	}
	if engine.received.Scope.Themes[0] != "economics" {
		t.Errorf("scope not forwarded, got %+v", engine.received.Scope)
	}
}

func TestQueryHandler_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{
			name:       "empty query",
			body:       QueryRequest{Query: ""},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       "not json",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewQueryHandler(&mockQueryEngine{})
			var rec *httptest.ResponseRecorder
			if s, ok := tt.body.(string); ok {
				req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(s))
				rec = httptest.NewRecorder()
				handler.ServeHTTP(rec, req)
			} else {
				rec = postQuery(t, handler, tt.body)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestQueryHandler_MethodNotAllowed(t *testing.T) {
	handler := NewQueryHandler(&mockQueryEngine{})
	req := httptest.NewRequest(http.MethodGet, "/api/query", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestQueryHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "embedding failure maps to bad gateway",
			err:        retrieval.ErrEmbeddingFailure,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Could not process the query",
		},
		{
			name:       "generation failure maps to bad gateway",
			err:        retrieval.ErrGenerationFailure,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "Could not generate an answer",
		},
		{
			name:       "unknown error maps to internal server error",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewQueryHandler(&mockQueryEngine{err: tt.err})
			rec := postQuery(t, handler, QueryRequest{Query: "q"})

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantMsg)
			}
		})
	}
}
