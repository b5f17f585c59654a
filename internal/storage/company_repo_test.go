package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestCompanyRepo_GetOrCreateByName(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompanyRepo(db)
	ctx := context.Background()

	first, err := repo.GetOrCreateByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	if first.ID == 0 || first.Name != "acme" {
		t.Errorf("GetOrCreateByName() = %+v, want non-zero ID and name acme", first)
	}

	second, err := repo.GetOrCreateByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOrCreateByName() second call error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("GetOrCreateByName() second ID = %d, want %d", second.ID, first.ID)
	}

	other, err := repo.GetOrCreateByName(ctx, "globex")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}
	if other.ID == first.ID {
		t.Error("GetOrCreateByName() returned the same ID for different companies")
	}
}

func TestCompanyRepo_GetOrCreateByName_Concurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompanyRepo(db)
	ctx := context.Background()

	const workers = 8
	ids := make([]int, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := repo.GetOrCreateByName(ctx, "acme")
			ids[i], errs[i] = c.ID, err
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d ID = %d, want %d", i, ids[i], ids[0])
		}
	}
}

func TestCompanyRepo_GetByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewCompanyRepo(db)
	ctx := context.Background()

	created, err := repo.GetOrCreateByName(ctx, "acme")
	if err != nil {
		t.Fatalf("GetOrCreateByName() error = %v", err)
	}

	got, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Name != "acme" {
		t.Errorf("GetByID() name = %q, want acme", got.Name)
	}

	if _, err := repo.GetByID(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() missing error = %v, want ErrNotFound", err)
	}
}
