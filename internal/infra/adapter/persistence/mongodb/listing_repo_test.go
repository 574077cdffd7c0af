package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scout/internal/domain/entity"
)

var dbURI = os.Getenv("DB_URI_TEST_MONGO")

func newTestRepo(t *testing.T) (*ListingRepo, context.Context) {
	t.Helper()
	if dbURI == "" {
		t.Skip("DB_URI_TEST_MONGO not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	t.Cleanup(cancel)

	cfg := Config{
		URI:        dbURI,
		Database:   "car-scout-test",
		Collection: fmt.Sprintf("listings-test-%d", time.Now().UnixMicro()),
	}
	repo, err := NewListingRepo(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, repo.coll.Drop(ctx))
		require.NoError(t, repo.Close(ctx))
	})
	return repo, ctx
}

func TestListingRepo_CreateIdempotent(t *testing.T) {
	repo, ctx := newTestRepo(t)

	l := &entity.Listing{
		SiteSource: "leboncoin",
		Title:      "Renault Clio IV 1.5 dCi",
		URL:        "https://example.com/ad/1",
		Price:      7500,
	}
	require.NoError(t, repo.Create(ctx, l))
	require.NoError(t, repo.Create(ctx, l))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	exists, err := repo.ExistsByURL(ctx, l.URL)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListingRepo_CreateBatchSkipsStoredURLs(t *testing.T) {
	repo, ctx := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, &entity.Listing{URL: "u2"}))
	require.NoError(t, repo.CreateBatch(ctx, []*entity.Listing{
		{URL: "u1"},
		{URL: "u2"},
		{URL: "u3"},
	}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	existing, err := repo.ExistsByURLBatch(ctx, []string{"u1", "u2", "u3", "u4"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"u1": true, "u2": true, "u3": true, "u4": false}, existing)
}
