package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, documents, themes []record) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var records []record
		switch r.URL.Path {
		case "/api/documents":
			records = documents
		case "/api/themes":
			records = themes
		default:
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(listResponse{Records: records})
	}))
}

func TestClient_ListDocuments_Defaulting(t *testing.T) {
	server := newTestServer(t, []record{
		{ID: "doc_1", Fields: map[string]any{"title": "Hoodie Economics", "chunk_count": float64(42)}},
		{ID: "doc_2", Fields: map[string]any{}}, // no title on the record
		{ID: "doc_3", Fields: map[string]any{"title": "", "themes": []any{"thm_1"}}},
	}, nil)
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "Hoodie Economics", docs[0].Title)
	assert.Equal(t, 42, docs[0].ChunkCount)
	assert.Equal(t, DefaultDocumentTitle, docs[1].Title)
	assert.Equal(t, DefaultDocumentTitle, docs[2].Title)
	assert.Equal(t, []string{"thm_1"}, docs[2].ThemeIDs)
}

func TestClient_DocumentsForThemes(t *testing.T) {
	server := newTestServer(t, nil, []record{
		{ID: "thm_1", Fields: map[string]any{"name": "Indigenous Knowledge", "documents": []any{"doc_2", "doc_1"}}},
		{ID: "thm_2", Fields: map[string]any{"name": "Relational Economics", "documents": []any{"doc_1", "doc_3"}}},
		{ID: "thm_3", Fields: map[string]any{"name": "Mentoring", "documents": []any{"doc_9"}}},
	})
	defer server.Close()

	client := NewClient(server.URL, "test-key")

	docIDs, err := client.DocumentsForThemes(context.Background(), []string{"Indigenous Knowledge", "Relational Economics"})
	require.NoError(t, err)
	// Deduplicated across themes, sorted for determinism
	assert.Equal(t, []string{"doc_1", "doc_2", "doc_3"}, docIDs)

	// Unknown labels resolve to nothing rather than erroring
	docIDs, err = client.DocumentsForThemes(context.Background(), []string{"No Such Theme"})
	require.NoError(t, err)
	assert.Empty(t, docIDs)

	// Empty scope short-circuits without a network call
	docIDs, err = client.DocumentsForThemes(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, docIDs)
}

func TestClient_ListThemes_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	_, err := client.ListThemes(context.Background())
	require.Error(t, err)
}

func TestClient_Pagination(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		page := listResponse{}
		if r.URL.Query().Get("offset") == "" {
			page.Records = []record{{ID: "doc_1", Fields: map[string]any{"title": "A"}}}
			page.Offset = "page2"
		} else {
			page.Records = []record{{ID: "doc_2", Fields: map[string]any{"title": "B"}}}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(page)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	docs, err := client.ListDocuments(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, 2, calls)
}
