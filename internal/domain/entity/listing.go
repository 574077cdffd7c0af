// Package entity defines the core domain entities and validation logic for the
// application. It contains the fundamental business objects such as Listing,
// SearchParams and Subscription, along with their validation rules and
// domain-specific errors.
package entity

import (
	"encoding/json"
	"time"
)

// Listing represents one normalized vehicle advertisement.
// The URL is the sole identity of a listing across all marketplaces: two
// listings with the same URL are the same real-world ad regardless of which
// site produced them.
//
// BodyType, Transmission and Color are optional extraction fields; most sites
// only expose them on the detail page, so an empty value means "no data".
type Listing struct {
	SiteSource   string    `json:"site_source" bson:"site_source"`
	Title        string    `json:"title" bson:"title"`
	Make         string    `json:"make" bson:"make"`
	Model        string    `json:"model" bson:"model"`
	Year         int       `json:"year" bson:"year"`
	Price        float64   `json:"price" bson:"price"`
	Mileage      int       `json:"mileage" bson:"mileage"`
	FuelType     string    `json:"fuel_type" bson:"fuel_type"`
	Location     string    `json:"location" bson:"location"`
	URL          string    `json:"url" bson:"url"`
	Description  string    `json:"description" bson:"description"`
	PostingDate  time.Time `json:"posting_date" bson:"posting_date"`
	SellerType   string    `json:"seller_type" bson:"seller_type"`
	Images       []string  `json:"images" bson:"images"`
	BodyType     string    `json:"body_type,omitempty" bson:"body_type,omitempty"`
	Transmission string    `json:"transmission,omitempty" bson:"transmission,omitempty"`
	Color        string    `json:"color,omitempty" bson:"color,omitempty"`
}

// MarshalJSON keeps the images field a list on the wire. A listing scraped
// without images carries a nil slice internally, which would otherwise
// serialize as null.
func (l Listing) MarshalJSON() ([]byte, error) {
	type listingAlias Listing
	a := listingAlias(l)
	if a.Images == nil {
		a.Images = []string{}
	}
	return json.Marshal(a)
}
