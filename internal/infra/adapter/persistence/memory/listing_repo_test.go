package memory_test

import (
	"context"
	"sync"
	"testing"

	"car-scout/internal/domain/entity"
	"car-scout/internal/infra/adapter/persistence/memory"
)

func TestListingRepo_Create_IdempotentPerURL(t *testing.T) {
	repo := memory.NewListingRepo()
	ctx := context.Background()

	l := &entity.Listing{URL: "https://example.com/ad/1", Title: "first"}
	if err := repo.Create(ctx, l); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	again := &entity.Listing{URL: "https://example.com/ad/1", Title: "second"}
	if err := repo.Create(ctx, again); err != nil {
		t.Fatalf("Create() second insert error = %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestListingRepo_ExistsByURLBatch(t *testing.T) {
	repo := memory.NewListingRepo()
	ctx := context.Background()

	if err := repo.CreateBatch(ctx, []*entity.Listing{
		{URL: "u1"},
		{URL: "u2"},
	}); err != nil {
		t.Fatalf("CreateBatch() error = %v", err)
	}

	got, err := repo.ExistsByURLBatch(ctx, []string{"u1", "u2", "u3"})
	if err != nil {
		t.Fatalf("ExistsByURLBatch() error = %v", err)
	}

	want := map[string]bool{"u1": true, "u2": true, "u3": false}
	for url, exists := range want {
		if got[url] != exists {
			t.Errorf("ExistsByURLBatch()[%q] = %v, want %v", url, got[url], exists)
		}
	}
}

func TestListingRepo_ConcurrentWritersSameURL(t *testing.T) {
	repo := memory.NewListingRepo()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.Create(ctx, &entity.Listing{URL: "https://example.com/ad/42"})
		}()
	}
	wg.Wait()

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1 after concurrent inserts of one URL", n)
	}
}
