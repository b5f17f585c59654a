package storage

import (
	"context"
	"errors"
	"testing"
)

func TestDocumentRepo_Upsert(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	company, err := NewCompanyRepo(db).GetOrCreateByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	repo := NewDocumentRepo(db)

	doc := &DocumentRecord{
		CompanyID: company.ID,
		Filename:  "report.pdf",
		MimeType:  "application/pdf",
		Size:      100,
		FilePath:  "q3/report.pdf",
		Title:     "Report",
		Hash:      "hash-1",
	}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if doc.ID == "" {
		t.Fatal("Upsert() should assign an ID")
	}
	firstID := doc.ID

	updated := &DocumentRecord{
		CompanyID: company.ID,
		Filename:  "report-v2.pdf",
		MimeType:  "application/pdf",
		Size:      200,
		FilePath:  "q3/report.pdf",
		Title:     "Report v2",
		Hash:      "hash-2",
	}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	if updated.ID != firstID {
		t.Errorf("Upsert() update ID = %q, want preserved %q", updated.ID, firstID)
	}

	got, err := repo.GetByID(ctx, firstID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Filename != "report-v2.pdf" || got.Size != 200 || got.Title != "Report v2" || got.Hash != "hash-2" {
		t.Errorf("GetByID() after update = %+v", got)
	}
}

func TestDocumentRepo_GetByCompanyAndPath(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	companies := NewCompanyRepo(db)
	acme, err := companies.GetOrCreateByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	globex, err := companies.GetOrCreateByName(ctx, "globex")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	repo := NewDocumentRepo(db)

	doc := &DocumentRecord{CompanyID: acme.ID, Filename: "a.pdf", FilePath: "a.pdf", Hash: "h"}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tests := []struct {
		name      string
		companyID int
		path      string
		wantErr   error
	}{
		{name: "found", companyID: acme.ID, path: "a.pdf"},
		{name: "other company", companyID: globex.ID, path: "a.pdf", wantErr: ErrNotFound},
		{name: "other path", companyID: acme.ID, path: "b.pdf", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByCompanyAndPath(ctx, tt.companyID, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("GetByCompanyAndPath() error = %v, want %v", err, tt.wantErr)
				}
				if got != nil {
					t.Errorf("GetByCompanyAndPath() = %+v, want nil", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetByCompanyAndPath() error = %v", err)
			}
			if got.ID != doc.ID {
				t.Errorf("GetByCompanyAndPath() ID = %q, want %q", got.ID, doc.ID)
			}
		})
	}
}

func TestDocumentRepo_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := NewDocumentRepo(db).GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestDocumentRepo_SetHash(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	company, err := NewCompanyRepo(db).GetOrCreateByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	repo := NewDocumentRepo(db)

	doc := &DocumentRecord{CompanyID: company.ID, Filename: "a.pdf", FilePath: "a.pdf"}
	if err := repo.Upsert(ctx, doc); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := repo.SetHash(ctx, doc.ID, "hash-1"); err != nil {
		t.Fatalf("SetHash() error = %v", err)
	}
	got, err := repo.GetByID(ctx, doc.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Hash != "hash-1" {
		t.Errorf("GetByID() Hash = %q, want %q", got.Hash, "hash-1")
	}

	if err := repo.SetHash(ctx, "missing", "hash-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetHash() missing error = %v, want ErrNotFound", err)
	}
}
