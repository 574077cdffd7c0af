package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"car-scout/internal/domain/entity"
	"car-scout/internal/resilience/circuitbreaker"
	"car-scout/internal/resilience/retry"
)

const (
	maxBodySize = 10 * 1024 * 1024 // 10MB

	userAgent = "CarScoutBot/1.0"
)

// SiteAdapter implements Adapter for one HTML marketplace described by a Site
// ruleset. Each adapter carries its own rate limiter and circuit breaker so a
// misbehaving site only throttles itself.
type SiteAdapter struct {
	site           Site
	client         *http.Client
	limiter        *rate.Limiter
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
}

// NewSiteAdapter creates an adapter for the given site using the shared HTTP
// client. Requests are limited to one per second with a small burst.
func NewSiteAdapter(site Site, client *http.Client) *SiteAdapter {
	return &SiteAdapter{
		site:           site,
		client:         client,
		limiter:        rate.NewLimiter(rate.Limit(1), 2),
		circuitBreaker: circuitbreaker.New(circuitbreaker.SiteConfig(site.Name)),
		retryConfig:    retry.SiteFetchConfig(),
	}
}

// Name implements Adapter.
func (a *SiteAdapter) Name() string {
	return a.site.Name
}

// Search implements Adapter.
func (a *SiteAdapter) Search(ctx context.Context, params entity.SearchParams) ([]entity.Listing, error) {
	searchURL := strings.ReplaceAll(a.site.SearchURL, "{query}", url.QueryEscape(params.QueryText()))

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	var listings []entity.Listing
	retryErr := retry.WithBackoff(ctx, a.retryConfig, func() error {
		cbResult, err := a.circuitBreaker.Execute(func() (interface{}, error) {
			return a.doFetch(ctx, searchURL, params)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("site circuit breaker open, request rejected",
					slog.String("site", a.site.Name),
					slog.String("url", searchURL))
			}
			return err
		}
		listings = cbResult.([]entity.Listing)
		return nil
	})
	if retryErr != nil {
		return nil, retryErr
	}

	return listings, nil
}

// doFetch performs one fetch-and-extract pass without retry or breaker.
func (a *SiteAdapter) doFetch(ctx context.Context, searchURL string, params entity.SearchParams) ([]entity.Listing, error) {
	doc, err := a.fetchHTML(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", a.site.Name, err)
	}
	return a.extractListings(doc, params), nil
}

// fetchHTML fetches and parses HTML from the given URL.
func (a *SiteAdapter) fetchHTML(ctx context.Context, urlStr string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}
	return doc, nil
}

// extractListings walks the repeated listing elements and parses each one.
// A malformed element is skipped; its siblings are still processed.
func (a *SiteAdapter) extractListings(doc *goquery.Document, params entity.SearchParams) []entity.Listing {
	var listings []entity.Listing

	doc.Find(a.site.Rules.ListingSelector).Each(func(i int, el *goquery.Selection) {
		listing, err := a.parseListing(el, params)
		if err != nil {
			slog.Debug("skipping malformed listing element",
				slog.String("site", a.site.Name),
				slog.Int("index", i),
				slog.Any("error", err))
			return
		}
		listings = append(listings, listing)
	})

	return listings
}

// parseListing extracts one canonical listing from a result-page element.
// Title and URL are mandatory; everything else degrades to its zero value.
func (a *SiteAdapter) parseListing(el *goquery.Selection, params entity.SearchParams) (entity.Listing, error) {
	rules := a.site.Rules

	title := strings.TrimSpace(el.Find(rules.TitleSelector).Text())
	if title == "" {
		return entity.Listing{}, errors.New("empty title")
	}

	listingURL := ""
	if rules.URLSelector != "" {
		if href, ok := el.Find(rules.URLSelector).Attr("href"); ok {
			listingURL = strings.TrimSpace(href)
		}
	}
	if listingURL == "" {
		return entity.Listing{}, errors.New("empty url")
	}
	listingURL = makeAbsoluteURL(listingURL, rules.URLPrefix)

	listing := entity.Listing{
		SiteSource:  a.site.Name,
		Title:       title,
		URL:         listingURL,
		Price:       parsePrice(el.Find(rules.PriceSelector).Text()),
		Year:        parseYear(el.Find(rules.YearSelector).Text()),
		Mileage:     parseNumber(el.Find(rules.MileageSelector).Text()),
		FuelType:    strings.TrimSpace(el.Find(rules.FuelSelector).Text()),
		Location:    strings.TrimSpace(el.Find(rules.LocationSelector).Text()),
		Description: strings.TrimSpace(el.Find(rules.DescriptionSelector).Text()),
		SellerType:  strings.TrimSpace(el.Find(rules.SellerSelector).Text()),
		PostingDate: parseDate(strings.TrimSpace(el.Find(rules.DateSelector).Text()), rules.DateFormat),
	}

	// Result pages rarely split make and model out of the title; the query
	// parameters are the best available source for raw matches.
	if params.Make != nil {
		listing.Make = *params.Make
	}
	if params.Model != nil {
		listing.Model = *params.Model
	}

	if rules.ImageSelector != "" {
		el.Find(rules.ImageSelector).Each(func(_ int, img *goquery.Selection) {
			if src, ok := img.Attr("src"); ok && src != "" {
				listing.Images = append(listing.Images, makeAbsoluteURL(strings.TrimSpace(src), rules.URLPrefix))
			}
		})
	}

	return listing, nil
}

// makeAbsoluteURL converts a relative URL to absolute using the given prefix.
func makeAbsoluteURL(urlStr string, prefix string) string {
	if strings.HasPrefix(urlStr, "http://") || strings.HasPrefix(urlStr, "https://") {
		return urlStr
	}
	if prefix == "" {
		return urlStr
	}
	prefix = strings.TrimRight(prefix, "/")
	urlStr = strings.TrimLeft(urlStr, "/")
	return prefix + "/" + urlStr
}

var _ Adapter = (*SiteAdapter)(nil)
