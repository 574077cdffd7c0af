// Package repository defines the persistence contracts the use cases depend on.
package repository

import (
	"context"

	"car-scout/internal/domain/entity"
)

// ListingRepository is the persistence gateway for listings. Implementations
// must make Create and CreateBatch idempotent per URL: inserting a URL that is
// already stored leaves exactly one document and returns nil. Search requests
// and the watch loop race on the same URLs, so this is a hard requirement.
type ListingRepository interface {
	// ExistsByURL reports whether a listing with the given URL is stored.
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// ExistsByURLBatch checks many URLs in one round trip and returns a map
	// with an entry per requested URL.
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)
	// Create stores one listing. Inserting an already-stored URL is a no-op.
	Create(ctx context.Context, listing *entity.Listing) error
	// CreateBatch stores many listings, skipping already-stored URLs.
	CreateBatch(ctx context.Context, listings []*entity.Listing) error
	// Count returns the number of stored listings.
	Count(ctx context.Context) (int64, error)
}
