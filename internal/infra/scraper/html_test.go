package scraper_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"car-scout/internal/domain/entity"
	"car-scout/internal/infra/scraper"
)

func testSite(baseURL string) scraper.Site {
	return scraper.Site{
		Name:      "testsite",
		SearchURL: baseURL + "/search?q={query}",
		Rules: scraper.ExtractionRules{
			ListingSelector:  "div.ad-card",
			TitleSelector:    ".ad-title",
			URLSelector:      "a.ad-link",
			PriceSelector:    ".ad-price",
			YearSelector:     ".ad-year",
			MileageSelector:  ".ad-mileage",
			FuelSelector:     ".ad-fuel",
			LocationSelector: ".ad-location",
			DateSelector:     ".ad-date",
			DateFormat:       "02/01/2006",
			ImageSelector:    "img.ad-photo",
			URLPrefix:        baseURL,
		},
	}
}

func strPtr(s string) *string { return &s }

func TestSiteAdapter_Search_ParsesListings(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		html := `<!DOCTYPE html>
<html><body>
  <div class="ad-card">
    <a class="ad-link" href="/voitures/123"></a>
    <span class="ad-title">Renault Clio IV 1.5 dCi</span>
    <span class="ad-price">7 500 &euro;</span>
    <span class="ad-year">2016</span>
    <span class="ad-mileage">85 000 km</span>
    <span class="ad-fuel">Diesel</span>
    <span class="ad-location">Lyon</span>
    <span class="ad-date">12/03/2024</span>
    <img class="ad-photo" src="/img/123-1.jpg">
    <img class="ad-photo" src="/img/123-2.jpg">
  </div>
  <div class="ad-card">
    <a class="ad-link" href="https://other.example.com/456"></a>
    <span class="ad-title">Renault Clio V TCe 100</span>
    <span class="ad-price">12 900 &euro;</span>
  </div>
</body></html>`
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	adapter := scraper.NewSiteAdapter(testSite(server.URL), &http.Client{Timeout: 5 * time.Second})
	params := entity.SearchParams{Make: strPtr("Renault"), Model: strPtr("Clio")}

	listings, err := adapter.Search(context.Background(), params)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("listings length = %d, want 2", len(listings))
	}
	if gotQuery != "Renault Clio" {
		t.Errorf("query text = %q, want %q", gotQuery, "Renault Clio")
	}

	first := listings[0]
	if first.SiteSource != "testsite" {
		t.Errorf("SiteSource = %q, want %q", first.SiteSource, "testsite")
	}
	if first.Title != "Renault Clio IV 1.5 dCi" {
		t.Errorf("Title = %q", first.Title)
	}
	if want := server.URL + "/voitures/123"; first.URL != want {
		t.Errorf("URL = %q, want %q", first.URL, want)
	}
	if first.Price != 7500 {
		t.Errorf("Price = %v, want 7500", first.Price)
	}
	if first.Year != 2016 {
		t.Errorf("Year = %d, want 2016", first.Year)
	}
	if first.Mileage != 85000 {
		t.Errorf("Mileage = %d, want 85000", first.Mileage)
	}
	if first.FuelType != "Diesel" {
		t.Errorf("FuelType = %q, want Diesel", first.FuelType)
	}
	if first.Make != "Renault" || first.Model != "Clio" {
		t.Errorf("Make/Model = %q/%q, want Renault/Clio", first.Make, first.Model)
	}
	if wantDate := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC); !first.PostingDate.Equal(wantDate) {
		t.Errorf("PostingDate = %v, want %v", first.PostingDate, wantDate)
	}
	if len(first.Images) != 2 {
		t.Fatalf("Images length = %d, want 2", len(first.Images))
	}
	if want := server.URL + "/img/123-1.jpg"; first.Images[0] != want {
		t.Errorf("Images[0] = %q, want %q", first.Images[0], want)
	}

	// Absolute listing URLs must pass through untouched.
	if listings[1].URL != "https://other.example.com/456" {
		t.Errorf("listings[1].URL = %q", listings[1].URL)
	}
}

func TestSiteAdapter_Search_SkipsMalformedElements(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `<html><body>
  <div class="ad-card">
    <span class="ad-title">No link on this one</span>
  </div>
  <div class="ad-card">
    <a class="ad-link" href="/ok/1"></a>
  </div>
  <div class="ad-card">
    <a class="ad-link" href="/ok/2"></a>
    <span class="ad-title">Valid listing</span>
    <span class="ad-price">4 999 &euro;</span>
  </div>
</body></html>`
		_, _ = w.Write([]byte(html))
	}))
	defer server.Close()

	adapter := scraper.NewSiteAdapter(testSite(server.URL), &http.Client{Timeout: 5 * time.Second})

	listings, err := adapter.Search(context.Background(), entity.SearchParams{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("listings length = %d, want 1 (malformed siblings skipped)", len(listings))
	}
	if listings[0].Title != "Valid listing" {
		t.Errorf("Title = %q, want %q", listings[0].Title, "Valid listing")
	}
	if listings[0].Price != 4999 {
		t.Errorf("Price = %v, want 4999", listings[0].Price)
	}
}

func TestSiteAdapter_Search_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	adapter := scraper.NewSiteAdapter(testSite(server.URL), &http.Client{Timeout: 5 * time.Second})

	if _, err := adapter.Search(context.Background(), entity.SearchParams{}); err == nil {
		t.Fatal("Search() error = nil, want error for non-success status")
	}
}

func TestSiteAdapter_Search_EmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><p>no results</p></body></html>`))
	}))
	defer server.Close()

	adapter := scraper.NewSiteAdapter(testSite(server.URL), &http.Client{Timeout: 5 * time.Second})

	listings, err := adapter.Search(context.Background(), entity.SearchParams{})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(listings) != 0 {
		t.Errorf("listings length = %d, want 0", len(listings))
	}
}
