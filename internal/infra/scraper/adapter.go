// Package scraper provides the per-marketplace adapters that fetch and parse
// external listing pages into canonical listings.
package scraper

import (
	"context"

	"car-scout/internal/domain/entity"
)

// Adapter fetches and parses one external marketplace. Search returns raw
// candidate listings for the query text built from the parameters; full
// criteria filtering is the caller's job. Implementations should return an
// error for whole-page failures (network, non-success status, unusable
// markup) and silently skip individual malformed listing elements.
type Adapter interface {
	// Name identifies the source site.
	Name() string
	// Search fetches the site's result page for the given parameters.
	Search(ctx context.Context, params entity.SearchParams) ([]entity.Listing, error)
}
