package retrieval

import (
	"context"
	"fmt"
	"strings"

	"knowledge-ai/internal/catalog"
	"knowledge-ai/internal/contextutil"
	"knowledge-ai/internal/vectorstore"
)

const (
	// themeFilteredScore is the fixed score given to theme-filtered
	// candidates so they are not crowded out by vector noise. They are
	// confident, not ground truth: direct-match boosts still outrank them.
	themeFilteredScore = 0.9

	// directMatchScore force-ranks keyword-boosted chunks near the top.
	directMatchScore = 0.95
)

// SourceAdapter is one retrieval strategy. Adapters are independently
// failure-tolerant: the pipeline logs a failing adapter and carries on
// with the others.
type SourceAdapter interface {
	// Name returns the source tag this adapter stamps on its candidates.
	Name() Source
	// Active reports whether the adapter applies to the given query.
	Active(q AdapterQuery) bool
	// Fetch returns scored passage candidates for the query.
	Fetch(ctx context.Context, q AdapterQuery) ([]Candidate, error)
}

// documentScopedAdapter returns all chunks of the scoped document in
// document order, trading ranking precision for completeness when the
// caller has already selected a document.
type documentScopedAdapter struct {
	store      vectorstore.VectorStore
	collection string
}

// NewDocumentScopedAdapter creates the document-scoped adapter.
func NewDocumentScopedAdapter(store vectorstore.VectorStore, collection string) SourceAdapter {
	return &documentScopedAdapter{store: store, collection: collection}
}

func (a *documentScopedAdapter) Name() Source { return SourceDocumentScoped }

func (a *documentScopedAdapter) Active(q AdapterQuery) bool {
	return q.Scope.DocumentID != ""
}

func (a *documentScopedAdapter) Fetch(ctx context.Context, q AdapterQuery) ([]Candidate, error) {
	chunks, err := a.store.ChunksByDocument(ctx, a.collection, q.Scope.DocumentID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document chunks: %w", err)
	}

	// Document order, no scores: merging keeps the ascending chunk-index
	// order because unscored candidates sort stably.
	candidates := make([]Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, candidateFromChunk(chunk, nil, SourceDocumentScoped))
	}
	return candidates, nil
}

// themeFilteredAdapter resolves theme labels to documents via the
// catalog and returns a capped, uniformly-high-confidence set of their
// chunks.
type themeFilteredAdapter struct {
	catalog    catalog.Store
	store      vectorstore.VectorStore
	collection string
}

// NewThemeFilteredAdapter creates the theme-filtered adapter.
func NewThemeFilteredAdapter(catalogStore catalog.Store, store vectorstore.VectorStore, collection string) SourceAdapter {
	return &themeFilteredAdapter{catalog: catalogStore, store: store, collection: collection}
}

func (a *themeFilteredAdapter) Name() Source { return SourceThemeFiltered }

func (a *themeFilteredAdapter) Active(q AdapterQuery) bool {
	return q.Scope.DocumentID == "" && len(q.Scope.Themes) > 0
}

func (a *themeFilteredAdapter) Fetch(ctx context.Context, q AdapterQuery) ([]Candidate, error) {
	docIDs, err := a.catalog.DocumentsForThemes(ctx, q.Scope.Themes)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve themes: %w", err)
	}
	if len(docIDs) == 0 {
		return nil, nil
	}

	chunks, err := a.store.ChunksByDocuments(ctx, a.collection, docIDs, q.Limit*2)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch theme chunks: %w", err)
	}

	candidates := make([]Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		score := themeFilteredScore
		candidates = append(candidates, candidateFromChunk(chunk, &score, SourceThemeFiltered))
	}
	return candidates, nil
}

// vectorAdapter issues a nearest-neighbor query with no hard similarity
// threshold by default and an over-fetch factor to leave headroom for
// deduplication and diversity enforcement downstream.
type vectorAdapter struct {
	store      vectorstore.VectorStore
	collection string
	threshold  float32
	overfetch  int
}

// NewVectorAdapter creates the vector-similarity adapter.
func NewVectorAdapter(store vectorstore.VectorStore, collection string, threshold float64, overfetch int) SourceAdapter {
	if overfetch < 1 {
		overfetch = 1
	}
	return &vectorAdapter{
		store:      store,
		collection: collection,
		threshold:  float32(threshold),
		overfetch:  overfetch,
	}
}

func (a *vectorAdapter) Name() Source { return SourceVector }

func (a *vectorAdapter) Active(q AdapterQuery) bool {
	return q.Scope.DocumentID == "" && len(q.Vector) > 0
}

func (a *vectorAdapter) Fetch(ctx context.Context, q AdapterQuery) ([]Candidate, error) {
	k := q.Limit * a.overfetch
	results, err := a.store.Search(ctx, a.collection, q.Vector, k, a.threshold, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, result := range results {
		score := float64(result.Score)
		candidates = append(candidates, candidateFromChunk(result.Chunk, &score, SourceVector))
	}
	return candidates, nil
}

// DirectMatchRule force-includes chunks from a named document when all
// of its trigger keywords appear in the query. This is a precision
// patch for known gaps in embedding recall on high-value topics, not a
// general mechanism; an empty rule table disables the adapter.
type DirectMatchRule struct {
	// Keywords must all appear (case-insensitive) in the query text.
	Keywords []string
	// DocumentTitle names the authoritative document for the topic.
	DocumentTitle string
	// MaxChunks caps how many chunks the rule may contribute.
	MaxChunks int
}

// DefaultDirectMatchRules is the authored topic→document boost table.
var DefaultDirectMatchRules = []DirectMatchRule{
	{
		Keywords:      []string{"hoodie", "economics"},
		DocumentTitle: "Hoodie Economics",
		MaxChunks:     3,
	},
}

// directMatchAdapter applies the rule table, resolving document titles
// through the catalog.
type directMatchAdapter struct {
	catalog    catalog.Store
	store      vectorstore.VectorStore
	collection string
	rules      []DirectMatchRule
}

// NewDirectMatchAdapter creates the direct-match adapter.
func NewDirectMatchAdapter(catalogStore catalog.Store, store vectorstore.VectorStore, collection string, rules []DirectMatchRule) SourceAdapter {
	return &directMatchAdapter{catalog: catalogStore, store: store, collection: collection, rules: rules}
}

func (a *directMatchAdapter) Name() Source { return SourceDirectMatch }

func (a *directMatchAdapter) Active(q AdapterQuery) bool {
	if q.Scope.DocumentID != "" || len(a.rules) == 0 {
		return false
	}
	for _, rule := range a.rules {
		if rule.matches(q.Text) {
			return true
		}
	}
	return false
}

func (r DirectMatchRule) matches(query string) bool {
	if len(r.Keywords) == 0 {
		return false
	}
	lower := strings.ToLower(query)
	for _, kw := range r.Keywords {
		if !strings.Contains(lower, strings.ToLower(kw)) {
			return false
		}
	}
	return true
}

func (a *directMatchAdapter) Fetch(ctx context.Context, q AdapterQuery) ([]Candidate, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var candidates []Candidate
	var docs []catalog.Document
	for _, rule := range a.rules {
		if !rule.matches(q.Text) {
			continue
		}

		if docs == nil {
			var err error
			docs, err = a.catalog.ListDocuments(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to list documents: %w", err)
			}
		}

		docID := ""
		for _, doc := range docs {
			if strings.EqualFold(doc.Title, rule.DocumentTitle) {
				docID = doc.ID
				break
			}
		}
		if docID == "" {
			logger.WarnContext(ctx, "direct-match rule names unknown document",
				"document_title", rule.DocumentTitle)
			continue
		}

		chunks, err := a.store.ChunksByDocument(ctx, a.collection, docID, rule.MaxChunks)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch boosted chunks: %w", err)
		}
		for _, chunk := range chunks {
			score := directMatchScore
			candidates = append(candidates, candidateFromChunk(chunk, &score, SourceDirectMatch))
		}
	}
	return candidates, nil
}

// fallbackAdapter returns an arbitrary capped sample of chunks so the
// pipeline never returns zero context. The pipeline invokes it only
// when the merged candidate set is empty after all other adapters ran.
type fallbackAdapter struct {
	store      vectorstore.VectorStore
	collection string
}

// NewFallbackAdapter creates the last-resort sampler.
func NewFallbackAdapter(store vectorstore.VectorStore, collection string) SourceAdapter {
	return &fallbackAdapter{store: store, collection: collection}
}

func (a *fallbackAdapter) Name() Source { return SourceFallback }

func (a *fallbackAdapter) Active(q AdapterQuery) bool { return true }

func (a *fallbackAdapter) Fetch(ctx context.Context, q AdapterQuery) ([]Candidate, error) {
	chunks, err := a.store.Sample(ctx, a.collection, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to sample chunks: %w", err)
	}

	candidates := make([]Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, candidateFromChunk(chunk, nil, SourceFallback))
	}
	return candidates, nil
}

// candidateFromChunk maps a stored chunk onto the candidate shape.
func candidateFromChunk(chunk vectorstore.Chunk, score *float64, source Source) Candidate {
	title := chunk.DocumentTitle
	if title == "" {
		title = catalog.DefaultDocumentTitle
	}
	return Candidate{
		ChunkID:       chunk.ChunkID,
		DocumentID:    chunk.DocumentID,
		DocumentTitle: title,
		ChunkIndex:    chunk.ChunkIndex,
		Content:       chunk.Content,
		Score:         score,
		Source:        source,
	}
}
