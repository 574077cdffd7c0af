// Package memory provides an in-memory listing repository for tests and local
// runs without a document store.
package memory

import (
	"context"
	"sync"

	"car-scout/internal/domain/entity"
	"car-scout/internal/repository"
)

// ListingRepo is a map-backed repository.ListingRepository keyed by URL.
// All methods are safe for concurrent use.
type ListingRepo struct {
	mu       sync.RWMutex
	listings map[string]entity.Listing
}

// NewListingRepo returns an empty in-memory repository.
func NewListingRepo() *ListingRepo {
	return &ListingRepo{listings: make(map[string]entity.Listing)}
}

// ExistsByURL implements repository.ListingRepository.
func (r *ListingRepo) ExistsByURL(_ context.Context, url string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.listings[url]
	return ok, nil
}

// ExistsByURLBatch implements repository.ListingRepository.
func (r *ListingRepo) ExistsByURLBatch(_ context.Context, urls []string) (map[string]bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]bool, len(urls))
	for _, u := range urls {
		_, ok := r.listings[u]
		result[u] = ok
	}
	return result, nil
}

// Create implements repository.ListingRepository. The first writer of a URL
// wins; re-inserting it is a no-op.
func (r *ListingRepo) Create(_ context.Context, listing *entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.listings[listing.URL]; !ok {
		r.listings[listing.URL] = *listing
	}
	return nil
}

// CreateBatch implements repository.ListingRepository.
func (r *ListingRepo) CreateBatch(_ context.Context, listings []*entity.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range listings {
		if _, ok := r.listings[l.URL]; !ok {
			r.listings[l.URL] = *l
		}
	}
	return nil
}

// Count implements repository.ListingRepository.
func (r *ListingRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.listings)), nil
}

var _ repository.ListingRepository = (*ListingRepo)(nil)
