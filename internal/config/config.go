package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Vector store backends.
const (
	BackendQdrant   = "qdrant"
	BackendPgVector = "pgvector"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel  slog.Level
	LogFormat string // "json" or "text"
	APIPort   string
	DBPath    string

	// Chunking scripts
	ScriptsDir         string
	Python             string // Absolute interpreter path, empty means discover
	ExtractConcurrency int
	MaxChunks          int // Default for requests that do not send max_chunks, 0 keeps all

	// Persistence
	EmbedMissing  bool
	IngestWorkers int
	IngestDir     string // Ingested in the background at startup when set
	IngestCompany string

	EmbeddingBaseURL   string
	EmbeddingModelName string
	LLMAPIKey          string

	VectorBackend string
	VectorSize    int
	QdrantURL     string
	Collection    string
	PgVectorDSN   string

	// Object storage, disabled when S3Bucket is empty
	S3Bucket     string
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
	S3Endpoint   string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or one of its parents, it is loaded first.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		APIPort:            getEnv("API_PORT", "9000"),
		DBPath:             getEnv("DB_PATH", "./data/c3ingest.db"),
		ScriptsDir:         getEnv("SCRIPTS_DIR", "./scripts"),
		Python:             getEnv("C3_PYTHON", ""),
		IngestDir:          getEnv("INGEST_DIR", ""),
		IngestCompany:      getEnv("INGEST_COMPANY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		LLMAPIKey:          getEnv("LLM_API_KEY", ""),
		VectorBackend:      strings.ToLower(getEnv("VECTOR_BACKEND", BackendQdrant)),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		Collection:         getEnv("QDRANT_COLLECTION", "chunks"),
		PgVectorDSN:        getEnv("PGVECTOR_DSN", ""),
		S3Bucket:           getEnv("S3_BUCKET", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-2"),
		AWSAccessKey:       getEnv("AWS_ACCESS_KEY", ""),
		AWSSecretKey:       getEnv("AWS_SECRET_KEY", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error: %w", err)
	}

	var err error
	if cfg.ExtractConcurrency, err = getInt("EXTRACT_CONCURRENCY", 10, 1); err != nil {
		return nil, err
	}
	if cfg.MaxChunks, err = getInt("MAX_CHUNKS", 0, 0); err != nil {
		return nil, err
	}
	if cfg.IngestWorkers, err = getInt("INGEST_WORKERS", 4, 1); err != nil {
		return nil, err
	}
	if cfg.EmbedMissing, err = getBool("EMBED_MISSING", false); err != nil {
		return nil, err
	}

	// VECTOR_SIZE must match the embeddings the chunker emits. Changing it
	// requires recreating the collection.
	vectorSizeStr := getEnv("VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("VECTOR_SIZE is required")
	}
	cfg.VectorSize, err = strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SIZE must be a valid integer: %w", err)
	}
	if cfg.VectorSize <= 0 {
		return nil, fmt.Errorf("VECTOR_SIZE must be greater than 0")
	}

	switch cfg.VectorBackend {
	case BackendQdrant:
	case BackendPgVector:
		if cfg.PgVectorDSN == "" {
			return nil, fmt.Errorf("PGVECTOR_DSN is required when VECTOR_BACKEND is %s", BackendPgVector)
		}
	default:
		return nil, fmt.Errorf("VECTOR_BACKEND must be %s or %s, got %q", BackendQdrant, BackendPgVector, cfg.VectorBackend)
	}

	if cfg.IngestDir != "" && cfg.IngestCompany == "" {
		return nil, fmt.Errorf("INGEST_COMPANY is required when INGEST_DIR is set")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads .env from the working directory, then the nearest .env
// found walking up at most five directories.
func loadDotEnv() {
	_ = godotenv.Load()

	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue, min int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	if v < min {
		return 0, fmt.Errorf("%s must be at least %d", key, min)
	}
	return v, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
