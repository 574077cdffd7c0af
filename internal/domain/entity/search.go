package entity

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// SearchParams is an optional filter set for matching listings.
// A nil field imposes no constraint. Range bounds are inclusive.
type SearchParams struct {
	Make         *string  `json:"make,omitempty"`
	Model        *string  `json:"model,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinYear      *int     `json:"min_year,omitempty"`
	MaxYear      *int     `json:"max_year,omitempty"`
	MaxMileage   *int     `json:"max_mileage,omitempty"`
	FuelType     *string  `json:"fuel_type,omitempty"`
	Location     *string  `json:"location,omitempty"`
	BodyType     *string  `json:"body_type,omitempty"`
	Transmission *string  `json:"transmission,omitempty"`
	Color        *string  `json:"color,omitempty"`
}

// Validate checks the search parameters for client-input errors.
// It returns a ValidationError naming the offending field.
func (p *SearchParams) Validate() error {
	if p.MinPrice != nil && *p.MinPrice < 0 {
		return &ValidationError{Field: "min_price", Message: "must not be negative"}
	}
	if p.MaxPrice != nil && *p.MaxPrice < 0 {
		return &ValidationError{Field: "max_price", Message: "must not be negative"}
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return &ValidationError{Field: "min_price", Message: "must not exceed max_price"}
	}
	if p.MinYear != nil && *p.MinYear < 0 {
		return &ValidationError{Field: "min_year", Message: "must not be negative"}
	}
	if p.MinYear != nil && p.MaxYear != nil && *p.MinYear > *p.MaxYear {
		return &ValidationError{Field: "min_year", Message: "must not exceed max_year"}
	}
	if p.MaxMileage != nil && *p.MaxMileage < 0 {
		return &ValidationError{Field: "max_mileage", Message: "must not be negative"}
	}
	return nil
}

// QueryText returns the free-text query submitted to marketplace search pages,
// built from the make and model filters.
func (p *SearchParams) QueryText() string {
	var parts []string
	if p.Make != nil && *p.Make != "" {
		parts = append(parts, *p.Make)
	}
	if p.Model != nil && *p.Model != "" {
		parts = append(parts, *p.Model)
	}
	return strings.Join(parts, " ")
}

// Key returns a canonical representation of the parameter set. Two parameter
// sets produce the same key if and only if every field matches exactly,
// including which fields are absent: an absent field is written without the
// "=" separator, so it can never collide with a present-but-empty value, and
// values are query-escaped so separator characters inside them cannot forge
// another field's token.
func (p *SearchParams) Key() string {
	var b strings.Builder
	writeStr := func(name string, v *string) {
		b.WriteString(name)
		if v != nil {
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(*v))
		}
		b.WriteByte(';')
	}
	writeInt := func(name string, v *int) {
		b.WriteString(name)
		if v != nil {
			b.WriteByte('=')
			b.WriteString(strconv.Itoa(*v))
		}
		b.WriteByte(';')
	}
	writeFloat := func(name string, v *float64) {
		b.WriteString(name)
		if v != nil {
			b.WriteByte('=')
			b.WriteString(strconv.FormatFloat(*v, 'f', -1, 64))
		}
		b.WriteByte(';')
	}
	writeStr("make", p.Make)
	writeStr("model", p.Model)
	writeFloat("min_price", p.MinPrice)
	writeFloat("max_price", p.MaxPrice)
	writeInt("min_year", p.MinYear)
	writeInt("max_year", p.MaxYear)
	writeInt("max_mileage", p.MaxMileage)
	writeStr("fuel_type", p.FuelType)
	writeStr("location", p.Location)
	writeStr("body_type", p.BodyType)
	writeStr("transmission", p.Transmission)
	writeStr("color", p.Color)
	return b.String()
}

// String implements fmt.Stringer for log output. Absent fields are omitted.
func (p *SearchParams) String() string {
	var parts []string
	add := func(name, v string) { parts = append(parts, fmt.Sprintf("%s=%s", name, v)) }
	if p.Make != nil {
		add("make", *p.Make)
	}
	if p.Model != nil {
		add("model", *p.Model)
	}
	if p.MinPrice != nil {
		add("min_price", strconv.FormatFloat(*p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice != nil {
		add("max_price", strconv.FormatFloat(*p.MaxPrice, 'f', -1, 64))
	}
	if p.MinYear != nil {
		add("min_year", strconv.Itoa(*p.MinYear))
	}
	if p.MaxYear != nil {
		add("max_year", strconv.Itoa(*p.MaxYear))
	}
	if p.MaxMileage != nil {
		add("max_mileage", strconv.Itoa(*p.MaxMileage))
	}
	if p.FuelType != nil {
		add("fuel_type", *p.FuelType)
	}
	if p.Location != nil {
		add("location", *p.Location)
	}
	if p.BodyType != nil {
		add("body_type", *p.BodyType)
	}
	if p.Transmission != nil {
		add("transmission", *p.Transmission)
	}
	if p.Color != nil {
		add("color", *p.Color)
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}
