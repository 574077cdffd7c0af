package scraper

// Site describes one marketplace as data: where to search and how to extract
// listings from the result page. Adding a source is a registration of a new
// Site value, not a code change.
type Site struct {
	// Name is the source identifier stamped on every extracted listing.
	Name string `json:"name"`

	// SearchURL is the query URL template; the literal "{query}" is replaced
	// with the URL-escaped query text.
	SearchURL string `json:"search_url"`

	// Rules locates the repeated listing elements and their sub-fields.
	Rules ExtractionRules `json:"rules"`
}

// ExtractionRules is the CSS selector ruleset for one site's result page.
// ListingSelector locates the repeated listing elements; the remaining
// selectors are evaluated relative to each element and may be empty when the
// site does not expose a field on the result page.
type ExtractionRules struct {
	ListingSelector string `json:"listing_selector"`

	TitleSelector       string `json:"title_selector,omitempty"`
	URLSelector         string `json:"url_selector,omitempty"` // href attribute
	PriceSelector       string `json:"price_selector,omitempty"`
	YearSelector        string `json:"year_selector,omitempty"`
	MileageSelector     string `json:"mileage_selector,omitempty"`
	FuelSelector        string `json:"fuel_selector,omitempty"`
	LocationSelector    string `json:"location_selector,omitempty"`
	DescriptionSelector string `json:"description_selector,omitempty"`
	DateSelector        string `json:"date_selector,omitempty"`
	DateFormat          string `json:"date_format,omitempty"`
	SellerSelector      string `json:"seller_selector,omitempty"`
	ImageSelector       string `json:"image_selector,omitempty"` // src attribute per match

	// URLPrefix is prepended to relative listing and image URLs.
	URLPrefix string `json:"url_prefix,omitempty"`
}

// DefaultSites returns the built-in marketplace registry.
func DefaultSites() []Site {
	return []Site{
		{
			Name:      "leboncoin",
			SearchURL: "https://www.leboncoin.fr/recherche?category=2&text={query}",
			Rules: ExtractionRules{
				ListingSelector:  "article.styles_adCard__2YFTi",
				TitleSelector:    "p[data-qa-id=aditem_title]",
				URLSelector:      "a",
				PriceSelector:    "span[data-qa-id=aditem_price]",
				LocationSelector: "p[data-qa-id=aditem_location]",
				DateSelector:     "p[data-qa-id=aditem_date]",
				DateFormat:       "02/01/2006",
				ImageSelector:    "img",
				URLPrefix:        "https://www.leboncoin.fr",
			},
		},
		{
			Name:      "lacentrale",
			SearchURL: "https://www.lacentrale.fr/listing?makesModels={query}",
			Rules: ExtractionRules{
				ListingSelector: "div.searchCard",
				TitleSelector:   ".searchCard__title",
				URLSelector:     "a.searchCard__link",
				PriceSelector:   ".searchCard__fieldPrice",
				YearSelector:    ".searchCard__year",
				MileageSelector: ".searchCard__mileage",
				FuelSelector:    ".searchCard__fuel",
				ImageSelector:   "img.searchCard__visual",
				URLPrefix:       "https://www.lacentrale.fr",
			},
		},
	}
}
