package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"c3ingest/internal/contextutil"
)

// PgVectorStore implements VectorStore on Postgres with the pgvector extension.
// All collections share one table; vector sizes are tracked per collection.
type PgVectorStore struct {
	db *sql.DB
}

// NewPgVectorStore opens a Postgres connection through the pgx stdlib driver.
func NewPgVectorStore(ctx context.Context, dsn string) (*PgVectorStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pgvector DSN is empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return NewPgVectorStoreFromDB(db), nil
}

// NewPgVectorStoreFromDB wraps an already opened database.
func NewPgVectorStoreFromDB(db *sql.DB) *PgVectorStore {
	return &PgVectorStore{db: db}
}

// Close closes the database.
func (s *PgVectorStore) Close() error {
	return s.db.Close()
}

// CollectionExists checks if a collection has been registered.
func (s *PgVectorStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if err := s.bootstrap(ctx); err != nil {
		return false, err
	}

	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM vector_collections WHERE name = $1)",
		collection,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return exists, nil
}

// EnsureCollection registers the collection with the given vector size, or
// validates the size of an existing one.
func (s *PgVectorStore) EnsureCollection(ctx context.Context, collection string, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	if vectorSize <= 0 {
		return fmt.Errorf("vector size must be greater than 0")
	}
	if err := s.bootstrap(ctx); err != nil {
		return err
	}

	var actualSize int
	err := s.db.QueryRowContext(ctx,
		"SELECT vector_size FROM vector_collections WHERE name = $1",
		collection,
	).Scan(&actualSize)
	if errors.Is(err, sql.ErrNoRows) {
		logger.InfoContext(ctx, "creating collection", "collection", collection, "vector_size", vectorSize)
		_, err := s.db.ExecContext(ctx,
			"INSERT INTO vector_collections (name, vector_size) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
			collection, vectorSize,
		)
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	if actualSize != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, actualSize)
	}

	logger.InfoContext(ctx, "collection validated", "collection", collection, "vector_size", vectorSize)
	return nil
}

// Upsert inserts or updates points in the collection within one transaction.
func (s *PgVectorStore) Upsert(ctx context.Context, collection string, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunk_vectors (collection, id, embedding, payload)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET
			embedding = excluded.embedding,
			payload = excluded.payload`)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, point := range points {
		payload, err := encodePayload(point.Meta)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := stmt.ExecContext(ctx, collection, point.ID, pgvector.NewVector(point.Vec), payload); err != nil {
			_ = tx.Rollback()
			logger.ErrorContext(ctx, "failed to upsert points", "collection", collection, "count", len(points), "error", err)
			return fmt.Errorf("failed to upsert points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", collection, "count", len(points))
	return nil
}

// Search orders points by cosine distance. Score is 1 - distance.
func (s *PgVectorStore) Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	q, args := buildSearchQuery(collection, pgvector.NewVector(query), k, filters)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := make([]SearchResult, 0, k)
	for rows.Next() {
		var (
			id      string
			payload []byte
			score   float64
		)
		if err := rows.Scan(&id, &payload, &score); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		meta := make(map[string]any)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &meta); err != nil {
				return nil, fmt.Errorf("failed to decode payload: %w", err)
			}
		}

		results = append(results, SearchResult{
			PointID: id,
			Score:   float32(score),
			Meta:    meta,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	logger.InfoContext(ctx, "search completed", "collection", collection, "k", k, "results", len(results))
	return results, nil
}

// Delete removes points by their IDs.
func (s *PgVectorStore) Delete(ctx context.Context, collection string, ids []string) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM chunk_vectors WHERE collection = $1 AND id = ANY($2)",
		collection, ids,
	)
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", collection, "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	logger.InfoContext(ctx, "deleted points", "collection", collection, "count", len(ids))
	return nil
}

// bootstrap creates the extension and tables. Safe to run repeatedly.
func (s *PgVectorStore) bootstrap(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS vector_collections (
			name TEXT PRIMARY KEY,
			vector_size INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chunk_vectors (
			collection TEXT NOT NULL REFERENCES vector_collections(name) ON DELETE CASCADE,
			id TEXT NOT NULL,
			embedding vector NOT NULL,
			payload JSONB NOT NULL DEFAULT '{}'::jsonb,
			PRIMARY KEY (collection, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunk_vectors_company ON chunk_vectors ((payload->>'company'))`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap pgvector schema: %w", err)
		}
	}
	return nil
}

// buildSearchQuery renders the similarity query. Filter keys and values are
// both bound as parameters, in sorted key order.
func buildSearchQuery(collection string, query pgvector.Vector, k int, filters map[string]any) (string, []any) {
	var b strings.Builder
	args := []any{collection, query}

	b.WriteString("SELECT id, payload, 1 - (embedding <=> $2) AS score FROM chunk_vectors WHERE collection = $1")

	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := filterValue(filters[key])
		if value == "" {
			continue
		}
		args = append(args, key, value)
		fmt.Fprintf(&b, " AND payload->>$%d = $%d", len(args)-1, len(args))
	}

	args = append(args, k)
	fmt.Fprintf(&b, " ORDER BY embedding <=> $2 LIMIT $%d", len(args))

	return b.String(), args
}

// filterValue renders a filter value the way ->> renders the stored JSON value.
func filterValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int, int64, bool:
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

func encodePayload(meta map[string]any) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return string(data), nil
}
