package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"c3ingest/internal/config"
	"c3ingest/internal/http"
	"c3ingest/internal/ingest"
	"c3ingest/internal/llm"
	"c3ingest/internal/objectstore"
	"c3ingest/internal/rag"
	"c3ingest/internal/storage"
	"c3ingest/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	companyRepo := storage.NewCompanyRepo(db)
	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	vectorStore, closeStore, err := newVectorStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}
	defer func() {
		_ = closeStore()
	}()

	if err := vectorStore.EnsureCollection(ctx, cfg.Collection, cfg.VectorSize); err != nil {
		log.Fatalf("Failed to ensure vector collection: %v", err)
	}
	slog.Info("Vector collection ready", "backend", cfg.VectorBackend, "collection", cfg.Collection, "vector_size", cfg.VectorSize)

	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.VectorSize)
	// Only search and EMBED_MISSING need the embeddings service.
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		slog.Warn("Embedding service unavailable; search and EMBED_MISSING will fail", "base_url", cfg.EmbeddingBaseURL, "error", err)
	} else {
		slog.Info("Embedding client validated", "vector_size", cfg.VectorSize)
	}

	var objects objectstore.ObjectClient
	if cfg.S3Bucket != "" {
		s3Client, err := objectstore.NewS3Client(ctx, objectstore.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.AWSRegion,
			AccessKey: cfg.AWSAccessKey,
			SecretKey: cfg.AWSSecretKey,
			Endpoint:  cfg.S3Endpoint,
		})
		if err != nil {
			log.Fatalf("Failed to configure object storage: %v", err)
		}
		objects = s3Client
	} else {
		slog.Info("Object storage disabled; transcripts are not archived")
	}

	producer := ingest.NewEmbedder(ingest.ExecRunner{}, ingest.EmbedderConfig{
		ScriptsDir:  cfg.ScriptsDir,
		Candidates:  ingest.DefaultCandidates(cfg.Python),
		Concurrency: cfg.ExtractConcurrency,
	})

	pipeline := ingest.NewPipeline(
		producer,
		companyRepo,
		documentRepo,
		chunkRepo,
		vectorStore,
		embedder,
		objects,
		ingest.PipelineConfig{
			Collection:   cfg.Collection,
			VectorSize:   cfg.VectorSize,
			EmbedMissing: cfg.EmbedMissing,
			Workers:      cfg.IngestWorkers,
		},
	)

	ragEngine := rag.NewEngine(embedder, vectorStore, cfg.Collection, chunkRepo)

	router := http.NewRouter(&http.Deps{
		Ingester:         pipeline,
		Engine:           ragEngine,
		VectorStore:      vectorStore,
		DB:               db,
		Collection:       cfg.Collection,
		DefaultMaxChunks: cfg.MaxChunks,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
	})

	if cfg.IngestDir != "" {
		go func() {
			slog.Info("Starting background ingestion", "dir", cfg.IngestDir, "company", cfg.IngestCompany)
			summary, err := pipeline.IngestDir(ctx, cfg.IngestCompany, cfg.IngestDir, ingest.Request{MaxChunks: cfg.MaxChunks})
			if err != nil {
				slog.Error("Ingestion completed with errors", "error", err, "files", summary.Files, "failed", summary.Failed)
				return
			}
			slog.Info("Ingestion completed successfully", "files", summary.Files, "ingested", summary.Ingested, "skipped", summary.Skipped)
		}()
	}

	srv := &nethttp.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed: %v", err)
	}
	slog.Info("API server stopped")
}

// newVectorStore opens the configured backend and returns it with its closer.
func newVectorStore(ctx context.Context, cfg *config.Config) (vectorstore.VectorStore, func() error, error) {
	switch cfg.VectorBackend {
	case config.BackendPgVector:
		store, err := vectorstore.NewPgVectorStore(ctx, cfg.PgVectorDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		store, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
}
