package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestNewQdrantStore(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"valid URL with port", "http://localhost:6333", false},
		{"valid URL without port", "http://qdrant-host", false},
		{"invalid URL", "://bad-url", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewQdrantStore(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if store == nil {
				t.Fatal("expected store, got nil")
			}
		})
	}
}

func TestDocumentFilter(t *testing.T) {
	if documentFilter(nil) != nil {
		t.Error("expected nil filter for empty document list")
	}

	single := documentFilter([]string{"doc_1"})
	if single == nil || len(single.Must) != 1 {
		t.Fatalf("expected single must condition, got %+v", single)
	}

	multi := documentFilter([]string{"doc_1", "doc_2"})
	if multi == nil || len(multi.Must) != 1 {
		t.Fatalf("expected keyword-set condition, got %+v", multi)
	}
}

func TestChunkFromPayload(t *testing.T) {
	payload := map[string]*qdrant.Value{
		"document_id":    qdrant.NewValueString("doc_42"),
		"document_title": qdrant.NewValueString("Hoodie Economics"),
		"chunk_index":    qdrant.NewValueInt(3),
		"content":        qdrant.NewValueString("Imagination is a currency."),
	}

	chunk := chunkFromPayload("chunk_abc", payload)
	if chunk.ChunkID != "chunk_abc" {
		t.Errorf("ChunkID = %q, want chunk_abc", chunk.ChunkID)
	}
	if chunk.DocumentID != "doc_42" {
		t.Errorf("DocumentID = %q, want doc_42", chunk.DocumentID)
	}
	if chunk.DocumentTitle != "Hoodie Economics" {
		t.Errorf("DocumentTitle = %q, want Hoodie Economics", chunk.DocumentTitle)
	}
	if chunk.ChunkIndex != 3 {
		t.Errorf("ChunkIndex = %d, want 3", chunk.ChunkIndex)
	}
	if chunk.Content == "" {
		t.Error("Content should not be empty")
	}

	// Missing payload degrades to zero values, never panics
	empty := chunkFromPayload("chunk_x", nil)
	if empty.ChunkID != "chunk_x" || empty.DocumentID != "" {
		t.Errorf("unexpected chunk from nil payload: %+v", empty)
	}
}
