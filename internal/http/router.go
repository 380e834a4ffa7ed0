package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"knowledge-ai/internal/handlers"
	"knowledge-ai/internal/storage"
	"knowledge-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	QueryEngine    handlers.QueryEngine
	FactRepo       storage.FactStore
	VectorStore    vectorstore.VectorStore
	DB             *sql.DB
	CollectionName string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Add CORS and per-request logger middleware
	r.Use(CORS)
	r.Use(LoggerMiddleware)

	queryHandler := handlers.NewQueryHandler(deps.QueryEngine)
	factsHandler := handlers.NewFactsHandler(deps.FactRepo)
	factStatusHandler := handlers.NewFactStatusHandler(deps.FactRepo)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.DB, deps.CollectionName)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/query", queryHandler)
		r.Method(http.MethodPost, "/facts", factsHandler)
		r.Method(http.MethodGet, "/facts", factsHandler)
		r.Method(http.MethodPatch, "/facts/{id}/status", factStatusHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
