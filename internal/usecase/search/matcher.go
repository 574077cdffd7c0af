// Package search provides the one-shot listing search use case: concurrent
// aggregation across all registered marketplace adapters, criteria matching,
// and persistence of the results.
package search

import (
	"strings"

	"car-scout/internal/domain/entity"
)

// Matches reports whether the listing satisfies every filter set in params.
// Absent filters impose no constraint; present ones are combined with AND.
// Range bounds are inclusive. String filters are case-insensitive exact
// equality, and a listing with no data for a filtered field fails that
// filter rather than matching as a wildcard.
func Matches(l entity.Listing, p entity.SearchParams) bool {
	if p.Make != nil && !textEqual(l.Make, *p.Make) {
		return false
	}
	if p.Model != nil && !textEqual(l.Model, *p.Model) {
		return false
	}
	if p.MinPrice != nil && l.Price < *p.MinPrice {
		return false
	}
	if p.MaxPrice != nil && l.Price > *p.MaxPrice {
		return false
	}
	if p.MinYear != nil && l.Year < *p.MinYear {
		return false
	}
	if p.MaxYear != nil && l.Year > *p.MaxYear {
		return false
	}
	if p.MaxMileage != nil && l.Mileage > *p.MaxMileage {
		return false
	}
	if p.FuelType != nil && !textEqual(l.FuelType, *p.FuelType) {
		return false
	}
	if p.Location != nil && !textEqual(l.Location, *p.Location) {
		return false
	}
	if p.BodyType != nil && !textEqual(l.BodyType, *p.BodyType) {
		return false
	}
	if p.Transmission != nil && !textEqual(l.Transmission, *p.Transmission) {
		return false
	}
	if p.Color != nil && !textEqual(l.Color, *p.Color) {
		return false
	}
	return true
}

// textEqual is case-insensitive exact equality where an empty listing value
// never matches (no data fails the filter).
func textEqual(have, want string) bool {
	return have != "" && strings.EqualFold(have, want)
}
