package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks c3ingest/internal/rag Engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"c3ingest/internal/contextutil"
	"c3ingest/internal/llm"
	"c3ingest/internal/storage"
	"c3ingest/internal/vectorstore"
)

const (
	defaultK = 5
	maxK     = 20
	// candidateFactor widens the vector search so lexical reranking has
	// something to reorder.
	candidateFactor = 3
)

// ErrInvalidQuery is returned when a Query lacks its text or company.
var ErrInvalidQuery = errors.New("invalid query")

// Engine retrieves ingested chunks relevant to a query.
type Engine interface {
	Search(ctx context.Context, q Query) (Response, error)
}

type ragEngine struct {
	embedder    llm.Embedder
	vectorStore vectorstore.VectorStore
	collection  string
	chunkRepo   storage.ChunkStore
}

// NewEngine creates a new retrieval engine.
func NewEngine(
	embedder llm.Embedder,
	vectorStore vectorstore.VectorStore,
	collection string,
	chunkRepo storage.ChunkStore,
) Engine {
	return &ragEngine{
		embedder:    embedder,
		vectorStore: vectorStore,
		collection:  collection,
		chunkRepo:   chunkRepo,
	}
}

// clampK applies the default and the upper bound to a requested K.
func clampK(k int) int {
	if k <= 0 {
		return defaultK
	}
	if k > maxK {
		return maxK
	}
	return k
}

// Search embeds the query, searches the company's vectors and hydrates each
// hit from the chunk store. Hits whose chunk row is gone are skipped.
func (e *ragEngine) Search(ctx context.Context, q Query) (Response, error) {
	logger := contextutil.LoggerFromContext(ctx)

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return Response{}, fmt.Errorf("%w: query is required", ErrInvalidQuery)
	}
	if strings.TrimSpace(q.Company) == "" {
		return Response{}, fmt.Errorf("%w: company is required", ErrInvalidQuery)
	}
	k := clampK(q.K)

	logger.InfoContext(ctx, "search started", "company", q.Company, "k", k)

	embeddings, err := e.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "error", err)
		return Response{}, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return Response{}, fmt.Errorf("no embedding returned for query")
	}

	filters := map[string]any{vectorstore.FilterCompany: q.Company}
	if q.DocumentID != "" {
		filters[vectorstore.FilterDocumentID] = q.DocumentID
	}

	results, err := e.vectorStore.Search(ctx, e.collection, embeddings[0], k*candidateFactor, filters)
	if err != nil {
		logger.ErrorContext(ctx, "failed to search vector store", "error", err)
		return Response{}, fmt.Errorf("failed to search vector store: %w", err)
	}
	logger.DebugContext(ctx, "vector search completed", "candidates", len(results))

	seen := make(map[string]bool, len(results))
	hits := make([]Hit, 0, len(results))
	for _, result := range results {
		if seen[result.PointID] {
			continue
		}
		seen[result.PointID] = true

		chunk, err := e.chunkRepo.GetByID(ctx, result.PointID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				logger.WarnContext(ctx, "vector hit without chunk row", "chunk_id", result.PointID)
				continue
			}
			return Response{}, fmt.Errorf("failed to load chunk %s: %w", result.PointID, err)
		}

		hit := Hit{
			ChunkID:     chunk.ID,
			DocumentID:  chunk.DocumentID,
			File:        chunk.File,
			HeadingPath: chunk.HeadingPath,
			Page:        chunk.Page,
			ChunkIndex:  chunk.ChunkIndex,
			Text:        chunk.Text,
			TokenCount:  chunk.TokenCount,
			ScoreVector: result.Score,
		}
		hit.Title, _ = result.Meta["title"].(string)
		hit.Filename, _ = result.Meta["filename"].(string)
		hit.FilePath, _ = result.Meta["file_path"].(string)

		hit.ScoreLexical = lexicalScore(text, chunk)
		hit.ScoreFinal = hit.ScoreVector + hit.ScoreLexical
		hits = append(hits, hit)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].ScoreFinal > hits[j].ScoreFinal
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	for i := range hits {
		hits[i].Rank = i + 1
	}

	logger.InfoContext(ctx, "search completed", "company", q.Company, "results", len(hits))
	return Response{Results: hits}, nil
}
