package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"c3ingest/internal/handlers"
	"c3ingest/internal/ingest"
	"c3ingest/internal/rag"
	"c3ingest/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Ingester         ingest.Ingester
	Engine           rag.Engine
	VectorStore      vectorstore.VectorStore
	DB               handlers.Pinger
	Collection       string
	DefaultMaxChunks int
	AllowedOrigins   []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ingest", handlers.NewIngestHandler(deps.Ingester, deps.DefaultMaxChunks))
		r.Method(http.MethodPost, "/ingest/object", handlers.NewObjectIngestHandler(deps.Ingester, deps.DefaultMaxChunks))
		r.Method(http.MethodPost, "/parse", handlers.NewParseHandler())
		r.Method(http.MethodPost, "/search", handlers.NewSearchHandler(deps.Engine))
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.VectorStore, deps.DB, deps.Collection))
	})

	return r
}
