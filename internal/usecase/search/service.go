package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"car-scout/internal/domain/entity"
	"car-scout/internal/infra/scraper"
	"car-scout/internal/observability/metrics"
	"car-scout/internal/repository"
)

const defaultFetchTimeout = 15 * time.Second

// Service orchestrates the search pipeline: fan the query out to every
// adapter, merge and deduplicate the results, filter them against the search
// criteria, and persist what matched.
type Service struct {
	adapters     []scraper.Adapter
	listingRepo  repository.ListingRepository
	fetchTimeout time.Duration
}

// NewService creates a search Service. fetchTimeout bounds each adapter's
// fetch independently; zero selects the default.
func NewService(adapters []scraper.Adapter, listingRepo repository.ListingRepository, fetchTimeout time.Duration) *Service {
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &Service{
		adapters:     adapters,
		listingRepo:  listingRepo,
		fetchTimeout: fetchTimeout,
	}
}

// Search runs the full one-shot search operation: validate, aggregate, match,
// persist. Every returned listing satisfies the parameters; all of them are
// stored before returning. The result order is unspecified.
func (s *Service) Search(ctx context.Context, params entity.SearchParams) ([]entity.Listing, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	matched := s.Find(ctx, params)
	if len(matched) == 0 {
		return nil, nil
	}

	toStore := make([]*entity.Listing, len(matched))
	for i := range matched {
		toStore[i] = &matched[i]
	}
	if err := s.listingRepo.CreateBatch(ctx, toStore); err != nil {
		return nil, fmt.Errorf("persist search results: %w", err)
	}

	return matched, nil
}

// Find aggregates across all adapters and applies the criteria matcher,
// without touching the store. The watch loop uses it directly so novelty
// filtering stays in the scheduler's hands.
func (s *Service) Find(ctx context.Context, params entity.SearchParams) []entity.Listing {
	merged := s.aggregate(ctx, params)

	matched := merged[:0]
	for _, l := range merged {
		if Matches(l, params) {
			matched = append(matched, l)
		}
	}
	return matched
}

// aggregate dispatches one concurrent retrieval per adapter, each under its
// own timeout, and fans the results into one URL-deduplicated collection.
// A failing or slow adapter contributes nothing and never delays the others.
func (s *Service) aggregate(ctx context.Context, params entity.SearchParams) []entity.Listing {
	var (
		mu     sync.Mutex
		seen   = make(map[string]struct{})
		merged []entity.Listing
	)

	eg, egCtx := errgroup.WithContext(ctx)
	for _, adapter := range s.adapters {
		a := adapter
		eg.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(egCtx, s.fetchTimeout)
			defer cancel()

			start := time.Now()
			listings, err := a.Search(fetchCtx, params)
			duration := time.Since(start)
			if err != nil {
				slog.Warn("site search failed, contributing nothing",
					slog.String("site", a.Name()),
					slog.Duration("duration", duration),
					slog.Any("error", err))
				metrics.RecordSiteSearch(a.Name(), duration, 0, false)
				// Partial failure is isolated; the other adapters proceed.
				return nil
			}
			metrics.RecordSiteSearch(a.Name(), duration, len(listings), true)

			mu.Lock()
			for _, l := range listings {
				if _, dup := seen[l.URL]; dup {
					continue
				}
				seen[l.URL] = struct{}{}
				merged = append(merged, l)
			}
			mu.Unlock()
			return nil
		})
	}
	// Adapter errors never propagate, so Wait only observes nil.
	_ = eg.Wait()

	return merged
}
