package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_ingester.go -package=mocks c3ingest/internal/ingest Ingester

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"c3ingest/internal/chunkstream"
	"c3ingest/internal/contextutil"
	"c3ingest/internal/llm"
	"c3ingest/internal/objectstore"
	"c3ingest/internal/storage"
	"c3ingest/internal/vectorstore"
)

// DefaultWorkers bounds how many files IngestDir processes at once.
const DefaultWorkers = 4

// ErrObjectStoreDisabled is returned by IngestObject when no bucket is configured.
var ErrObjectStoreDisabled = errors.New("object storage is not configured")

// ChunkProducer turns a request into parsed chunks. *Embedder implements it.
type ChunkProducer interface {
	Embed(ctx context.Context, req Request) (*Result, error)
}

// Ingester stores documents for search. *Pipeline implements it.
type Ingester interface {
	// IngestDocument chunks and stores an uploaded document.
	IngestDocument(ctx context.Context, req Request) (*Outcome, error)
	// IngestObject fetches a document from object storage and ingests it.
	IngestObject(ctx context.Context, company, key string, opts Request) (*Outcome, error)
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Collection   string
	VectorSize   int  // Vectors of any other length are not indexed
	EmbedMissing bool // Embed chunks the chunker left without a vector
	Workers      int  // IngestDir concurrency, DefaultWorkers when 0
}

// Pipeline stores chunked documents in SQLite and the vector store.
type Pipeline struct {
	producer    ChunkProducer
	companies   storage.CompanyStore
	documents   storage.DocumentStore
	chunks      storage.ChunkStore
	vectorStore vectorstore.VectorStore
	embedder    llm.Embedder             // nil disables EmbedMissing
	objects     objectstore.ObjectClient // nil disables archiving and IngestObject
	cfg         PipelineConfig
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	producer ChunkProducer,
	companies storage.CompanyStore,
	documents storage.DocumentStore,
	chunks storage.ChunkStore,
	vectorStore vectorstore.VectorStore,
	embedder llm.Embedder,
	objects objectstore.ObjectClient,
	cfg PipelineConfig,
) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	return &Pipeline{
		producer:    producer,
		companies:   companies,
		documents:   documents,
		chunks:      chunks,
		vectorStore: vectorStore,
		embedder:    embedder,
		objects:     objects,
		cfg:         cfg,
	}
}

// Outcome describes one ingested document.
type Outcome struct {
	DocumentID    string            `json:"document_id"`
	Title         string            `json:"title"`
	Skipped       bool              `json:"skipped"`
	Items         []Item            `json:"items"`
	Stats         chunkstream.Stats `json:"stats"`
	Vectors       int               `json:"vectors"`
	TokenStats    TokenStats        `json:"token_stats"`
	TranscriptURL string            `json:"transcript_url,omitempty"`
}

// IngestDocument chunks a document and replaces whatever was stored for it.
// A document whose first file hashes the same as the stored one is skipped.
func (p *Pipeline) IngestDocument(ctx context.Context, req Request) (*Outcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	meta := req.Meta()

	hashHex := sha256Hex(req.Files[0].Data)

	company, err := p.companies.GetOrCreateByName(ctx, meta.Company)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	existing, err := p.documents.GetByCompanyAndPath(ctx, company.ID, meta.FilePath)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil && existing.Hash == hashHex {
		logger.DebugContext(ctx, "skipping unchanged document", "company", meta.Company, "file_path", meta.FilePath, "hash", hashHex)
		return &Outcome{
			DocumentID: existing.ID,
			Title:      existing.Title,
			Skipped:    true,
			Items:      []Item{},
		}, nil
	}

	result, err := p.producer.Embed(ctx, req)
	if err != nil {
		return nil, err
	}

	title := DocumentTitle(result.Records, meta.Filename)

	vectors, err := p.vectorsFor(ctx, result.Records)
	if err != nil {
		return nil, err
	}

	doc := &storage.DocumentRecord{
		CompanyID: company.ID,
		Filename:  meta.Filename,
		MimeType:  meta.MimeType,
		Size:      meta.Size,
		FilePath:  meta.FilePath,
		Title:     title,
	}
	if existing != nil {
		doc.ID = existing.ID
	}
	if err := p.documents.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to upsert document: %w", err)
	}

	if existing != nil {
		if err := p.removeChunks(ctx, doc.ID); err != nil {
			return nil, err
		}
	}

	points := make([]vectorstore.Point, 0, len(result.Records))
	tokenCounts := make([]int, len(result.Records))
	for i, r := range result.Records {
		chunkID := uuid.New().String()
		tokenCounts[i] = r.TokenCount

		chunk := &storage.ChunkRecord{
			ID:          chunkID,
			DocumentID:  doc.ID,
			ChunkIndex:  r.Index,
			File:        r.File,
			HeadingPath: r.HeadingPath,
			Page:        r.Page,
			Text:        r.Text,
			TokenCount:  r.TokenCount,
			Embedded:    vectors[i] != nil,
		}
		if err := p.chunks.Insert(ctx, chunk); err != nil {
			return nil, fmt.Errorf("failed to insert chunk: %w", err)
		}

		if vectors[i] == nil {
			continue
		}
		points = append(points, vectorstore.Point{
			ID:   chunkID,
			Vec:  vectors[i],
			Meta: pointPayload(doc, meta, r),
		})
	}

	if len(points) > 0 {
		if err := p.vectorStore.Upsert(ctx, p.cfg.Collection, points); err != nil {
			return nil, fmt.Errorf("failed to upsert vectors: %w", err)
		}
	}

	// The hash is stored last so a failed run is never treated as unchanged.
	if err := p.documents.SetHash(ctx, doc.ID, hashHex); err != nil {
		return nil, fmt.Errorf("failed to record document hash: %w", err)
	}

	outcome := &Outcome{
		DocumentID: doc.ID,
		Title:      title,
		Items:      result.Items,
		Stats:      result.Stats,
		Vectors:    len(points),
		TokenStats: computeTokenStats(tokenCounts),
	}

	if p.objects != nil {
		key := fmt.Sprintf("transcripts/%s.txt", doc.ID)
		url, err := p.objects.UploadFile(ctx, key, []byte(result.Transcript), "text/plain; charset=utf-8")
		if err != nil {
			logger.WarnContext(ctx, "failed to archive transcript", "document_id", doc.ID, "error", err)
		} else {
			outcome.TranscriptURL = url
		}
	}

	logger.InfoContext(ctx, "ingested document",
		"company", meta.Company,
		"file_path", meta.FilePath,
		"document_id", doc.ID,
		"chunks", len(result.Records),
		"vectors", len(points),
		"title", title,
	)
	return outcome, nil
}

// vectorsFor returns one vector per record, nil where the record is not indexed.
func (p *Pipeline) vectorsFor(ctx context.Context, records []chunkstream.Record) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors := make([][]float32, len(records))
	var missing []int
	for i, r := range records {
		if len(r.Embedding) == 0 {
			missing = append(missing, i)
			continue
		}
		if p.cfg.VectorSize > 0 && len(r.Embedding) != p.cfg.VectorSize {
			logger.WarnContext(ctx, "embedding size mismatch, chunk not indexed",
				"index", r.Index, "size", len(r.Embedding), "expected", p.cfg.VectorSize)
			continue
		}
		vectors[i] = llm.ToFloat32(r.Embedding)
	}

	if len(missing) == 0 || !p.cfg.EmbedMissing || p.embedder == nil {
		return vectors, nil
	}

	texts := make([]string, len(missing))
	for j, i := range missing {
		texts[j] = records[i].Text
	}
	embedded, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embedded) != len(missing) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(missing), len(embedded))
	}
	for j, i := range missing {
		vectors[i] = embedded[j]
	}

	logger.DebugContext(ctx, "embedded chunks without vectors", "count", len(missing))
	return vectors, nil
}

// removeChunks deletes a document's chunks from the vector store and SQLite.
func (p *Pipeline) removeChunks(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	oldChunkIDs, err := p.chunks.ListIDsByDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to list old chunk IDs: %w", err)
	}
	if len(oldChunkIDs) == 0 {
		return nil
	}

	if err := p.vectorStore.Delete(ctx, p.cfg.Collection, oldChunkIDs); err != nil {
		// Continue anyway; the stale points no longer hydrate.
		logger.WarnContext(ctx, "failed to delete old vectors", "error", err, "count", len(oldChunkIDs))
	}

	if err := p.chunks.DeleteByDocument(ctx, documentID); err != nil {
		return fmt.Errorf("failed to delete old chunks: %w", err)
	}
	return nil
}

func pointPayload(doc *storage.DocumentRecord, meta DocumentMeta, r chunkstream.Record) map[string]any {
	var page any
	if r.Page != nil {
		page = *r.Page
	}
	return map[string]any{
		"document_id":  doc.ID,
		"company":      meta.Company,
		"filename":     meta.Filename,
		"file_path":    meta.FilePath,
		"file":         r.File,
		"heading_path": r.HeadingPath,
		"page":         page,
		"chunk_index":  r.Index,
		"title":        doc.Title,
	}
}

// DirSummary counts the files IngestDir handled.
type DirSummary struct {
	Files    int `json:"files"`
	Ingested int `json:"ingested"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// IngestDir ingests every regular, non-hidden file under dir for company.
// File paths are stored relative to dir. Failures are logged and counted;
// the returned error reports how many files failed.
func (p *Pipeline) IngestDir(ctx context.Context, company, dir string, opts Request) (DirSummary, error) {
	logger := contextutil.LoggerFromContext(ctx)

	files, err := ScanDir(ctx, dir)
	if err != nil {
		return DirSummary{}, err
	}

	logger.InfoContext(ctx, "starting ingestion", "company", company, "dir", dir, "total_files", len(files))

	var ingested, skipped, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)

	for _, file := range files {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			outcome, err := p.ingestFile(gctx, company, file.AbsPath, file.RelPath, opts)
			if err != nil {
				failed.Add(1)
				logger.ErrorContext(gctx, "failed to ingest file", "file_path", file.RelPath, "error", err)
				return nil
			}
			if outcome.Skipped {
				skipped.Add(1)
			} else {
				ingested.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return DirSummary{}, err
	}

	summary := DirSummary{
		Files:    len(files),
		Ingested: int(ingested.Load()),
		Skipped:  int(skipped.Load()),
		Failed:   int(failed.Load()),
	}
	logger.InfoContext(ctx, "ingestion completed",
		"total_files", summary.Files, "ingested", summary.Ingested, "skipped", summary.Skipped, "errors", summary.Failed)

	if summary.Failed > 0 {
		return summary, fmt.Errorf("ingestion completed with %d errors", summary.Failed)
	}
	return summary, nil
}

func (p *Pipeline) ingestFile(ctx context.Context, company, filePath, rel string, opts Request) (*Outcome, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.IngestDocument(ctx, Request{
		Company:     company,
		FilePath:    rel,
		Files:       []SourceFile{newSourceFile(filepath.Base(filePath), data)},
		Concurrency: opts.Concurrency,
		MaxChunks:   opts.MaxChunks,
	})
}

// IngestObject downloads key from object storage and ingests it with key as
// its file path.
func (p *Pipeline) IngestObject(ctx context.Context, company, key string, opts Request) (*Outcome, error) {
	if p.objects == nil {
		return nil, ErrObjectStoreDisabled
	}
	if strings.TrimSpace(key) == "" {
		return nil, &ValidationError{Field: "key", Message: "object key is required"}
	}

	data, err := p.objects.GetFile(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", key, err)
	}

	return p.IngestDocument(ctx, Request{
		Company:     company,
		FilePath:    key,
		Files:       []SourceFile{newSourceFile(path.Base(key), data)},
		Concurrency: opts.Concurrency,
		MaxChunks:   opts.MaxChunks,
	})
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// newSourceFile guesses the mime type from the file extension.
func newSourceFile(name string, data []byte) SourceFile {
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return SourceFile{
		Name:     name,
		MimeType: mimeType,
		Size:     int64(len(data)),
		Data:     data,
	}
}
