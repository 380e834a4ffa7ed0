package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"knowledge-ai/internal/contextutil"
)

// scrollWindow bounds how many points a single scroll fetch may return.
// Document-scoped fetches read up to this many chunks before sorting by
// chunk index client-side, since Qdrant's scroll has no ordering.
const scrollWindow = 256

// QdrantStore implements VectorStore using Qdrant.
type QdrantStore struct {
	client *qdrant.Client
}

// NewQdrantStore creates a new Qdrant vector store client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// Extract port from URL, default to 6333 for HTTP
	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client: client,
	}, nil
}

// Search performs a nearest-neighbor query with an optional document filter.
func (s *QdrantStore) Search(ctx context.Context, collection string, query []float32, k int, threshold float32, documentIDs []string) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	queryReq := &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if threshold > 0 {
		queryReq.ScoreThreshold = &threshold
	}
	if filter := documentFilter(documentIDs); filter != nil {
		queryReq.Filter = filter
	}

	scoredPoints, err := s.client.Query(ctx, queryReq)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, point := range scoredPoints {
		chunk := chunkFromPayload(pointIDString(point.Id), point.Payload)
		results = append(results, SearchResult{Chunk: chunk, Score: point.Score})
	}

	logger.InfoContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// ChunksByDocument returns up to limit chunks of one document in ascending
// chunk-index order.
func (s *QdrantStore) ChunksByDocument(ctx context.Context, collection, documentID string, limit int) ([]Chunk, error) {
	if documentID == "" {
		return nil, fmt.Errorf("documentID must not be empty")
	}

	chunks, err := s.scroll(ctx, collection, documentFilter([]string{documentID}), scrollWindow)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].ChunkIndex < chunks[j].ChunkIndex
	})

	if limit > 0 && len(chunks) > limit {
		chunks = chunks[:limit]
	}
	return chunks, nil
}

// ChunksByDocuments returns up to limit chunks drawn from the given documents.
func (s *QdrantStore) ChunksByDocuments(ctx context.Context, collection string, documentIDs []string, limit int) ([]Chunk, error) {
	if len(documentIDs) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = scrollWindow
	}
	return s.scroll(ctx, collection, documentFilter(documentIDs), limit)
}

// Sample returns up to limit arbitrary chunks from the collection.
func (s *QdrantStore) Sample(ctx context.Context, collection string, limit int) ([]Chunk, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	return s.scroll(ctx, collection, nil, limit)
}

// CollectionExists checks if a collection exists.
func (s *QdrantStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// scroll fetches points by filter without scoring.
func (s *QdrantStore) scroll(ctx context.Context, collection string, filter *qdrant.Filter, limit int) ([]Chunk, error) {
	logger := contextutil.LoggerFromContext(ctx)

	scrollLimit := uint32(limit)
	req := &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          &scrollLimit,
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if filter != nil {
		req.Filter = filter
	}

	points, err := s.client.Scroll(ctx, req)
	if err != nil {
		logger.ErrorContext(ctx, "failed to scroll points", "collection", collection, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to scroll points: %w", err)
	}

	chunks := make([]Chunk, 0, len(points))
	for _, point := range points {
		chunks = append(chunks, chunkFromPayload(pointIDString(point.Id), point.Payload))
	}
	return chunks, nil
}

// documentFilter builds a must-match filter on the document_id payload field.
func documentFilter(documentIDs []string) *qdrant.Filter {
	if len(documentIDs) == 0 {
		return nil
	}
	if len(documentIDs) == 1 {
		return &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("document_id", documentIDs[0])},
		}
	}
	return &qdrant.Filter{
		Must: []*qdrant.Condition{qdrant.NewMatchKeywords("document_id", documentIDs...)},
	}
}

// pointIDString extracts the UUID form of a point ID.
func pointIDString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	return id.GetUuid()
}

// chunkFromPayload maps a point payload onto the Chunk record shape.
func chunkFromPayload(chunkID string, payload map[string]*qdrant.Value) Chunk {
	chunk := Chunk{ChunkID: chunkID}
	if payload == nil {
		return chunk
	}
	if v, ok := payload["document_id"]; ok {
		chunk.DocumentID = v.GetStringValue()
	}
	if v, ok := payload["document_title"]; ok {
		chunk.DocumentTitle = v.GetStringValue()
	}
	if v, ok := payload["chunk_index"]; ok {
		chunk.ChunkIndex = int(v.GetIntegerValue())
	}
	if v, ok := payload["content"]; ok {
		chunk.Content = v.GetStringValue()
	}
	return chunk
}
