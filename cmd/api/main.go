package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"knowledge-ai/internal/answer"
	"knowledge-ai/internal/catalog"
	"knowledge-ai/internal/config"
	"knowledge-ai/internal/enhance"
	"knowledge-ai/internal/facts"
	"knowledge-ai/internal/http"
	"knowledge-ai/internal/llm"
	"knowledge-ai/internal/retrieval"
	"knowledge-ai/internal/storage"
	"knowledge-ai/internal/vectorstore"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers natural-language questions against a curated document
// collection using retrieval-augmented generation: queries are embedded,
// matched against indexed document chunks, and answered by an LLM grounded
// in the retrieved passages with citations, extractable facts, and a
// concept enhancement overlay.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Knowledge AI API
//   description: |
//     Retrieval-augmented query API over a curated document collection.
//     Supports document- and theme-scoped retrieval, interchangeable LLM
//     providers, and a human fact-validation workflow.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize the fact validation database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	factRepo := storage.NewFactRepo(db)

	// Initialize Qdrant vector store
	ctx := context.Background()

	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	exists, err := vectorStore.CollectionExists(ctx, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("Failed to check Qdrant collection: %v", err)
	}
	if !exists {
		log.Fatalf("Qdrant collection %q does not exist; run the indexer first", cfg.QdrantCollection)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	// Catalog client with a TTL cache in front
	catalogClient := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey)
	catalogStore := catalog.NewCachedStore(catalogClient, cfg.CatalogCacheSize, cfg.CatalogCacheTTL)
	slog.Info("Catalog client initialized", "base_url", cfg.CatalogBaseURL, "cache_ttl", cfg.CatalogCacheTTL)

	// Chat provider registry
	registry, err := llm.NewRegistry(cfg.DefaultProvider,
		llm.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel),
		llm.NewAnthropicProvider(cfg.AnthropicBaseURL, cfg.AnthropicAPIKey, cfg.AnthropicModel),
	)
	if err != nil {
		log.Fatalf("Failed to build provider registry: %v", err)
	}
	slog.Info("Chat providers registered", "providers", registry.Names(), "default", cfg.DefaultProvider)

	// Source adapters, in merge tie-break order
	adapters := []retrieval.SourceAdapter{
		retrieval.NewDocumentScopedAdapter(vectorStore, cfg.QdrantCollection),
		retrieval.NewDirectMatchAdapter(catalogStore, vectorStore, cfg.QdrantCollection, retrieval.DefaultDirectMatchRules),
		retrieval.NewThemeFilteredAdapter(catalogStore, vectorStore, cfg.QdrantCollection),
		retrieval.NewVectorAdapter(vectorStore, cfg.QdrantCollection, cfg.VectorScoreThreshold, cfg.VectorOverfetchFactor),
	}
	fallback := retrieval.NewFallbackAdapter(vectorStore, cfg.QdrantCollection)

	pipeline := retrieval.NewPipeline(
		embedder,
		adapters,
		fallback,
		enhance.New(enhance.DefaultVocabulary),
		answer.NewGenerator(registry),
		facts.NewExtractor(),
		cfg.ResultLimit,
		cfg.DocDiversityCap,
	)
	slog.Info("Query pipeline initialized", "result_limit", cfg.ResultLimit, "diversity_cap", cfg.DocDiversityCap)

	// Create router with dependencies
	deps := &http.Deps{
		QueryEngine:    pipeline,
		FactRepo:       factRepo,
		VectorStore:    vectorStore,
		DB:             db,
		CollectionName: cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
