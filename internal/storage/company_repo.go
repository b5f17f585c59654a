package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_company_store.go -package=mocks c3ingest/internal/storage CompanyStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CompanyStore defines the interface for company storage operations.
type CompanyStore interface {
	// GetOrCreateByName gets an existing company by name, or creates it.
	GetOrCreateByName(ctx context.Context, name string) (CompanyRecord, error)
	// GetByID gets a company by ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id int) (CompanyRecord, error)
}

// CompanyRepo provides methods for company operations.
// It implements the CompanyStore interface.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo creates a new CompanyRepo.
func NewCompanyRepo(db *sql.DB) *CompanyRepo {
	return &CompanyRepo{db: db}
}

// GetOrCreateByName gets an existing company by name, or creates it if it doesn't exist.
func (r *CompanyRepo) GetOrCreateByName(ctx context.Context, name string) (CompanyRecord, error) {
	company, err := r.getByName(ctx, name)
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return CompanyRecord{}, err
	}

	// INSERT OR IGNORE keeps concurrent ingests of a new company from failing on UNIQUE.
	if _, err := r.db.ExecContext(ctx, "INSERT OR IGNORE INTO companies (name) VALUES (?)", name); err != nil {
		return CompanyRecord{}, fmt.Errorf("failed to insert company: %w", err)
	}

	return r.getByName(ctx, name)
}

// GetByID gets a company by ID. Returns ErrNotFound if not found.
func (r *CompanyRepo) GetByID(ctx context.Context, id int) (CompanyRecord, error) {
	var company CompanyRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM companies WHERE id = ?",
		id,
	).Scan(&company.ID, &company.Name, &company.CreatedAt)
	if err == sql.ErrNoRows {
		return CompanyRecord{}, ErrNotFound
	}
	if err != nil {
		return CompanyRecord{}, fmt.Errorf("failed to query company: %w", err)
	}
	return company, nil
}

func (r *CompanyRepo) getByName(ctx context.Context, name string) (CompanyRecord, error) {
	var company CompanyRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM companies WHERE name = ?",
		name,
	).Scan(&company.ID, &company.Name, &company.CreatedAt)
	if err == sql.ErrNoRows {
		return CompanyRecord{}, ErrNotFound
	}
	if err != nil {
		return CompanyRecord{}, fmt.Errorf("failed to query company: %w", err)
	}
	return company, nil
}
