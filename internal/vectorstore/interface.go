package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks knowledge-ai/internal/vectorstore VectorStore

import "context"

// Chunk is a stored document chunk as returned by the vector store.
type Chunk struct {
	// ChunkID is the globally unique chunk identifier (the point ID).
	ChunkID string
	// DocumentID is the parent document identifier.
	DocumentID string
	// DocumentTitle is the parent document title as stored at indexing time.
	DocumentTitle string
	// ChunkIndex is the chunk's position within its document.
	ChunkIndex int
	// Content is the raw text span.
	Content string
}

// SearchResult is a chunk returned by nearest-neighbor search, with its
// cosine similarity score.
type SearchResult struct {
	Chunk
	Score float32
}

// VectorStore defines read access to the pre-built embedding store.
// Index construction happens in an offline indexer; this service only queries.
type VectorStore interface {
	// Search performs a nearest-neighbor query. threshold is the minimum
	// similarity score; 0 accepts everything. documentIDs optionally restricts
	// the search to the given parent documents.
	Search(ctx context.Context, collection string, query []float32, k int, threshold float32, documentIDs []string) ([]SearchResult, error)

	// ChunksByDocument returns up to limit chunks of one document in ascending
	// chunk-index order.
	ChunksByDocument(ctx context.Context, collection, documentID string, limit int) ([]Chunk, error)

	// ChunksByDocuments returns up to limit chunks drawn from the given documents.
	// No ordering guarantee beyond determinism for an unchanged store.
	ChunksByDocuments(ctx context.Context, collection string, documentIDs []string, limit int) ([]Chunk, error)

	// Sample returns up to limit arbitrary chunks from the collection.
	Sample(ctx context.Context, collection string, limit int) ([]Chunk, error)

	// CollectionExists checks if a collection exists.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
