package retrieval

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"knowledge-ai/internal/contextutil"
	"knowledge-ai/internal/enhance"
	"knowledge-ai/internal/facts"
	"knowledge-ai/internal/llm"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_pipeline_deps.go -package=mocks knowledge-ai/internal/retrieval Embedder,Generator

// maxResultLimit bounds caller-provided result counts.
const maxResultLimit = 20

// Embedder converts query text into dense vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Enhancer produces the best-effort concept overlay for a query.
type Enhancer interface {
	Enhance(query string) *enhance.Enhancement
}

// Generator produces a grounded answer plus citations from merged candidates.
type Generator interface {
	Generate(ctx context.Context, query string, candidates []Candidate, history []llm.Message, enhancement *enhance.Enhancement, modelPreference string) (string, []Citation, error)
}

// Extractor mines verifiable claims from generated answer text.
type Extractor interface {
	Extract(answerText, query string) []facts.Fact
}

// Pipeline orchestrates the retrieval-augmented query flow:
// embed → source adapters → merge → enhance → generate → extract facts.
type Pipeline struct {
	embedder  Embedder
	adapters  []SourceAdapter
	fallback  SourceAdapter
	enhancer  Enhancer
	generator Generator
	extractor Extractor
	limit     int
	perDocCap int
}

// NewPipeline creates a query pipeline. adapters run in the given order;
// fallback runs only when they produce nothing mergeable.
func NewPipeline(
	embedder Embedder,
	adapters []SourceAdapter,
	fallback SourceAdapter,
	enhancer Enhancer,
	generator Generator,
	extractor Extractor,
	limit int,
	perDocCap int,
) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		adapters:  adapters,
		fallback:  fallback,
		enhancer:  enhancer,
		generator: generator,
		extractor: extractor,
		limit:     limit,
		perDocCap: perDocCap,
	}
}

// Query runs the full pipeline for one request.
func (p *Pipeline) Query(ctx context.Context, req Request) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "query pipeline started",
		"query", req.Query,
		"document_id", req.Scope.DocumentID,
		"themes", req.Scope.Themes,
		"model_preference", req.ModelPreference,
	)

	limit := req.Limit
	if limit <= 0 {
		limit = p.limit
	}
	if limit > maxResultLimit {
		limit = maxResultLimit
	}

	// Embed the query. Nothing downstream can run without the vector.
	embeddings, err := p.embedder.EmbedTexts(ctx, []string{req.Query})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return Response{}, fmt.Errorf("%w: %v", ErrEmbeddingFailure, err)
	}
	if len(embeddings) == 0 {
		return Response{}, fmt.Errorf("%w: no embedding returned for query", ErrEmbeddingFailure)
	}

	q := AdapterQuery{
		Text:   req.Query,
		Vector: embeddings[0],
		Scope:  req.Scope,
		Limit:  limit,
	}

	candidates := p.gather(ctx, q)
	merged := Merge(candidates, limit, p.perDocCap)

	if len(merged) == 0 {
		logger.WarnContext(ctx, "invoking fallback adapter", "reason", ErrAllAdaptersEmpty)
		fallbackCandidates, err := p.fallback.Fetch(ctx, q)
		if err != nil {
			logger.ErrorContext(ctx, "fallback adapter failed", "error", err)
		}
		merged = Merge(fallbackCandidates, limit, p.perDocCap)
	}

	logger.InfoContext(ctx, "candidates merged",
		"pool_size", len(candidates),
		"merged", len(merged),
		"limit", limit,
	)

	enhancement := p.enhance(ctx, req.Query)

	answerText, citations, err := p.generator.Generate(ctx, req.Query, merged, req.History, enhancement, req.ModelPreference)
	if err != nil {
		logger.ErrorContext(ctx, "failed to generate answer", "error", err)
		return Response{}, fmt.Errorf("%w: %v", ErrGenerationFailure, err)
	}

	extracted := p.extractor.Extract(answerText, req.Query)

	logger.InfoContext(ctx, "query pipeline completed",
		"answer_length", len(answerText),
		"citations", len(citations),
		"facts", len(extracted),
	)

	return Response{
		AnswerText:       answerText,
		Citations:        citations,
		ExtractableFacts: extracted,
		Enhancement:      enhancement,
	}, nil
}

// gather runs all active adapters concurrently and concatenates their
// outputs in adapter order, keeping the merger's tie-break deterministic.
// A failing adapter contributes nothing; it never aborts the pipeline.
func (p *Pipeline) gather(ctx context.Context, q AdapterQuery) []Candidate {
	logger := contextutil.LoggerFromContext(ctx)

	active := make([]SourceAdapter, 0, len(p.adapters))
	for _, adapter := range p.adapters {
		if adapter.Active(q) {
			active = append(active, adapter)
		}
	}
	if len(active) == 0 {
		return nil
	}

	results := make([][]Candidate, len(active))
	g, gctx := errgroup.WithContext(ctx)
	for i, adapter := range active {
		g.Go(func() error {
			fetched, err := adapter.Fetch(gctx, q)
			if err != nil {
				logger.WarnContext(gctx, "adapter failed",
					"adapter", string(adapter.Name()), "error", err)
				return nil
			}
			results[i] = fetched
			return nil
		})
	}
	_ = g.Wait() // adapter errors are absorbed above

	var candidates []Candidate
	for i, fetched := range results {
		logger.DebugContext(ctx, "adapter returned candidates",
			"adapter", string(active[i].Name()), "count", len(fetched))
		candidates = append(candidates, fetched...)
	}
	return candidates
}

// enhance runs the concept enhancer. Enhancement is best-effort: a panic
// here must not abort the request.
func (p *Pipeline) enhance(ctx context.Context, query string) (enhancement *enhance.Enhancement) {
	logger := contextutil.LoggerFromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			logger.WarnContext(ctx, "enhancement skipped", "panic", r)
			enhancement = nil
		}
	}()
	if p.enhancer == nil {
		return nil
	}
	return p.enhancer.Enhance(query)
}
