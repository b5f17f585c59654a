package ingest

import (
	"github.com/pgvector/pgvector-go"

	"c3ingest/internal/chunkstream"
	"c3ingest/internal/llm"
)

// DocumentMeta describes the source document a chunk came from.
type DocumentMeta struct {
	Company  string
	Filename string
	MimeType string
	Size     int64
	FilePath string // Defaults to Filename when empty
}

// Item is one chunk joined with its document metadata, ready for a documents
// and chunks table.
type Item struct {
	Company  string `json:"company"`
	Filename string `json:"filename"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
	FilePath string `json:"file_path"`

	Content     string  `json:"content"`
	Heading     string  `json:"heading"`
	Level       int     `json:"level"`
	ChunkIndex  int     `json:"chunk_index"`
	File        string  `json:"file"`
	Index       int     `json:"index"`
	HeadingPath string  `json:"heading_path"`
	Page        *string `json:"page"`
	Text        string  `json:"text"`
	TokenCount  int     `json:"token_count"`
	Embedding   *string `json:"embedding"` // pgvector literal, null when the chunk had none
}

// NewItem joins a record with its document metadata.
func NewItem(meta DocumentMeta, r chunkstream.Record) Item {
	filePath := meta.FilePath
	if filePath == "" {
		filePath = meta.Filename
	}

	var page *string
	if r.Page != nil {
		p := *r.Page
		page = &p
	}

	return Item{
		Company:     meta.Company,
		Filename:    meta.Filename,
		MimeType:    meta.MimeType,
		Size:        meta.Size,
		FilePath:    filePath,
		Content:     r.Text,
		Heading:     r.HeadingPath,
		Level:       0,
		ChunkIndex:  r.Index,
		File:        r.File,
		Index:       r.Index,
		HeadingPath: r.HeadingPath,
		Page:        page,
		Text:        r.Text,
		TokenCount:  r.TokenCount,
		Embedding:   EmbeddingLiteral(r.Embedding),
	}
}

// BuildItems converts at most maxChunks records into items. maxChunks <= 0
// keeps every record.
func BuildItems(meta DocumentMeta, records []chunkstream.Record, maxChunks int) []Item {
	records = LimitRecords(records, maxChunks)
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = NewItem(meta, r)
	}
	return items
}

// LimitRecords keeps the first maxChunks records. maxChunks <= 0 keeps all.
func LimitRecords(records []chunkstream.Record, maxChunks int) []chunkstream.Record {
	if maxChunks > 0 && len(records) > maxChunks {
		return records[:maxChunks]
	}
	return records
}

// EmbeddingLiteral renders a vector as a pgvector text literal such as
// "[0.1,0.2]". Returns nil for an empty vector.
func EmbeddingLiteral(embedding []float64) *string {
	if len(embedding) == 0 {
		return nil
	}
	s := pgvector.NewVector(llm.ToFloat32(embedding)).String()
	return &s
}
