package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks c3ingest/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetByCompanyAndPath gets a document by company ID and file path.
	// Returns nil and ErrNotFound if not found.
	GetByCompanyAndPath(ctx context.Context, companyID int, filePath string) (*DocumentRecord, error)
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// SetHash records the content hash once a document is fully indexed.
	// Returns ErrNotFound if the document does not exist.
	SetHash(ctx context.Context, id, hash string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = "id, company_id, filename, mimetype, size, file_path, COALESCE(title, ''), hash, updated_at"

func scanDocument(row interface{ Scan(...any) error }) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := row.Scan(&doc.ID, &doc.CompanyID, &doc.Filename, &doc.MimeType, &doc.Size,
		&doc.FilePath, &doc.Title, &doc.Hash, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

// GetByCompanyAndPath gets a document by company ID and file path.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByCompanyAndPath(ctx context.Context, companyID int, filePath string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE company_id = ? AND file_path = ?",
		companyID, filePath,
	)
	return scanDocument(row)
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	return scanDocument(row)
}

// Upsert inserts a new document or updates an existing one.
// If the document doesn't exist (by company_id and file_path), a new UUID is generated.
// If it exists, metadata, title and hash are updated while preserving the ID.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetByCompanyAndPath(ctx, doc.CompanyID, doc.FilePath)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, company_id, filename, mimetype, size, file_path, title, hash, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (company_id, file_path) DO UPDATE SET
		 filename = excluded.filename, mimetype = excluded.mimetype, size = excluded.size,
		 title = excluded.title, hash = excluded.hash, updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.CompanyID, doc.Filename, doc.MimeType, doc.Size, doc.FilePath, doc.Title, doc.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// SetHash records the content hash once a document is fully indexed.
// Returns ErrNotFound if the document does not exist.
func (r *DocumentRepo) SetHash(ctx context.Context, id, hash string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		hash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set document hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to set document hash: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
