package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"knowledge-ai/internal/retrieval"
	"knowledge-ai/internal/storage"
	storage_mocks "knowledge-ai/internal/storage/mocks"
	"knowledge-ai/internal/vectorstore"
)

type stubQueryEngine struct{}

func (stubQueryEngine) Query(ctx context.Context, req retrieval.Request) (retrieval.Response, error) {
	return retrieval.Response{AnswerText: "answer"}, nil
}

type stubVectorStore struct{}

func (stubVectorStore) Search(ctx context.Context, collection string, query []float32, k int, threshold float32, documentIDs []string) ([]vectorstore.SearchResult, error) {
	return nil, nil
}

func (stubVectorStore) ChunksByDocument(ctx context.Context, collection, documentID string, limit int) ([]vectorstore.Chunk, error) {
	return nil, nil
}

func (stubVectorStore) ChunksByDocuments(ctx context.Context, collection string, documentIDs []string, limit int) ([]vectorstore.Chunk, error) {
	return nil, nil
}

func (stubVectorStore) Sample(ctx context.Context, collection string, limit int) ([]vectorstore.Chunk, error) {
	return nil, nil
}

func (stubVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	return true, nil
}

func newTestDeps(t *testing.T, factRepo storage.FactStore) *Deps {
	t.Helper()
	db, err := storage.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	return &Deps{
		QueryEngine:    stubQueryEngine{},
		FactRepo:       factRepo,
		VectorStore:    stubVectorStore{},
		DB:             db,
		CollectionName: "document_chunks",
	}
}

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(newTestDeps(t, storage_mocks.NewMockFactStore(ctrl)))
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockFactRepo := storage_mocks.NewMockFactStore(ctrl)
	mockFactRepo.EXPECT().ListByStatus(gomock.Any(), "").Return(nil, nil).AnyTimes()

	router := NewRouter(newTestDeps(t, mockFactRepo))

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "POST /api/query exists",
			method:     http.MethodPost,
			path:       "/api/query",
			body:       `{"query": "what is hoodie economics?"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/query rejects empty body",
			method:     http.MethodPost,
			path:       "/api/query",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/facts exists",
			method:     http.MethodGet,
			path:       "/api/facts",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/facts rejects empty body",
			method:     http.MethodPost,
			path:       "/api/facts",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "GET /api/health exists",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "PATCH /api/facts/{id}/status rejects bad status",
			method:     http.MethodPatch,
			path:       "/api/facts/f1/status",
			body:       `{"status": "bogus"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/unknown",
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tt.method, tt.path, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
