package geocode

import (
	"context"
	"errors"
	"strings"
)

// ErrNoResults is returned when the provider answered but found nothing.
var ErrNoResults = errors.New("no geocoding results")

type Client interface {
	Geocode(ctx context.Context, query string) (*Location, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error)
}

type Location struct {
	Latitude    float64 `json:"lat"`
	Longitude   float64 `json:"lon"`
	Name        string  `json:"name"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
}

// NormalizeQuery trims the free-text query. Two queries that normalize to the
// same string are the same lookup.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}
