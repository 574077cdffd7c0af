package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-scout/internal/domain/entity"
	"car-scout/internal/infra/adapter/persistence/memory"
	"car-scout/internal/infra/scraper"
)

type fakeAdapter struct {
	name     string
	listings []entity.Listing
	err      error
	delay    time.Duration
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Search(ctx context.Context, _ entity.SearchParams) ([]entity.Listing, error) {
	if a.delay > 0 {
		select {
		case <-time.After(a.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	out := make([]entity.Listing, len(a.listings))
	copy(out, a.listings)
	return out, nil
}

func listingFrom(site, url string, price float64) entity.Listing {
	return entity.Listing{
		SiteSource: site,
		Title:      "Renault Clio IV",
		Make:       "Renault",
		Model:      "Clio",
		Year:       2016,
		Price:      price,
		URL:        url,
	}
}

func TestSearchMergesAndDeduplicatesAcrossSites(t *testing.T) {
	a1 := &fakeAdapter{name: "leboncoin", listings: []entity.Listing{
		listingFrom("leboncoin", "https://example.com/ad/1", 7000),
		listingFrom("leboncoin", "https://example.com/ad/2", 7500),
	}}
	a2 := &fakeAdapter{name: "lacentrale", listings: []entity.Listing{
		listingFrom("lacentrale", "https://example.com/ad/2", 7500),
		listingFrom("lacentrale", "https://example.com/ad/3", 8000),
	}}
	repo := memory.NewListingRepo()
	svc := NewService([]scraper.Adapter{a1, a2}, repo, time.Second)

	results, err := svc.Search(context.Background(), entity.SearchParams{})
	require.NoError(t, err)
	assert.Len(t, results, 3, "the shared URL must appear once")

	for _, url := range []string{
		"https://example.com/ad/1",
		"https://example.com/ad/2",
		"https://example.com/ad/3",
	} {
		exists, err := repo.ExistsByURL(context.Background(), url)
		require.NoError(t, err)
		assert.True(t, exists, url)
	}
}

func TestSearchFiltersByCriteria(t *testing.T) {
	a := &fakeAdapter{name: "leboncoin", listings: []entity.Listing{
		listingFrom("leboncoin", "https://example.com/ad/1", 7000),
		listingFrom("leboncoin", "https://example.com/ad/2", 12000),
	}}
	repo := memory.NewListingRepo()
	svc := NewService([]scraper.Adapter{a}, repo, time.Second)

	maxPrice := 10000.0
	results, err := svc.Search(context.Background(), entity.SearchParams{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "https://example.com/ad/1", results[0].URL)

	// Non-matching listings are not persisted either.
	exists, err := repo.ExistsByURL(context.Background(), "https://example.com/ad/2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSearchIsolatesFailingAdapter(t *testing.T) {
	good := &fakeAdapter{name: "leboncoin", listings: []entity.Listing{
		listingFrom("leboncoin", "https://example.com/ad/1", 7000),
	}}
	bad := &fakeAdapter{name: "lacentrale", err: errors.New("blocked: 403")}
	svc := NewService([]scraper.Adapter{good, bad}, memory.NewListingRepo(), time.Second)

	results, err := svc.Search(context.Background(), entity.SearchParams{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "leboncoin", results[0].SiteSource)
}

func TestSearchTimesOutSlowAdapterIndependently(t *testing.T) {
	fast := &fakeAdapter{name: "leboncoin", listings: []entity.Listing{
		listingFrom("leboncoin", "https://example.com/ad/1", 7000),
	}}
	slow := &fakeAdapter{name: "lacentrale", delay: 5 * time.Second, listings: []entity.Listing{
		listingFrom("lacentrale", "https://example.com/ad/2", 8000),
	}}
	svc := NewService([]scraper.Adapter{fast, slow}, memory.NewListingRepo(), 100*time.Millisecond)

	start := time.Now()
	results, err := svc.Search(context.Background(), entity.SearchParams{})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 2*time.Second)
	require.Len(t, results, 1)
	assert.Equal(t, "leboncoin", results[0].SiteSource)
}

func TestSearchRejectsInvalidParams(t *testing.T) {
	svc := NewService(nil, memory.NewListingRepo(), time.Second)

	minPrice := -1.0
	_, err := svc.Search(context.Background(), entity.SearchParams{MinPrice: &minPrice})
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestSearchIsIdempotentAcrossRepeats(t *testing.T) {
	a := &fakeAdapter{name: "leboncoin", listings: []entity.Listing{
		listingFrom("leboncoin", "https://example.com/ad/1", 7000),
	}}
	repo := memory.NewListingRepo()
	svc := NewService([]scraper.Adapter{a}, repo, time.Second)

	for i := 0; i < 3; i++ {
		_, err := svc.Search(context.Background(), entity.SearchParams{})
		require.NoError(t, err)
	}

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
