package storage

import "time"

// CompanyRecord is the tenant a document was ingested for.
type CompanyRecord struct {
	ID        int
	Name      string
	CreatedAt time.Time
}

// DocumentRecord is one ingested source document.
type DocumentRecord struct {
	ID        string // UUID
	CompanyID int    // Foreign key to companies.id
	Filename  string // Original upload name
	MimeType  string
	Size      int64
	FilePath  string // Caller supplied path, defaults to Filename
	Title     string // First markdown heading found in the chunks
	Hash      string // SHA256 hex of the source bytes, empty until fully indexed
	UpdatedAt time.Time
}

// ChunkRecord is one parsed chunk, stored for hydration of vector hits.
type ChunkRecord struct {
	ID          string  // UUID (same as the vector point ID)
	DocumentID  string  // Foreign key to documents.id
	ChunkIndex  int     // Index literally present in the chunk marker
	File        string  // File marker context the chunk was scanned under
	HeadingPath string  // Format: "Heading1 > Heading2"
	Page        *string // nil when the producer reported no page
	Text        string
	TokenCount  int
	Embedded    bool // Whether a vector was upserted for this chunk
}
