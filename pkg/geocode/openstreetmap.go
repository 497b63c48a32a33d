package geocode

import (
	"context"
	"fmt"
	"strings"

	"github.com/codingsince1985/geo-golang"
	"github.com/codingsince1985/geo-golang/openstreetmap"

	"github.com/manzanit0/tourplanner/pkg/metrics"
)

const providerOpenstreetmap = "openstreetmap"

// NewOpenstreetmapClient wraps the geo-golang OpenStreetMap geocoder. It has
// no notion of contexts so cancellation is only checked before each call.
func NewOpenstreetmapClient() *oc {
	return &oc{geocoder: openstreetmap.Geocoder()}
}

type oc struct {
	geocoder geo.Geocoder
}

var _ Client = (*oc)(nil)

func (c *oc) Geocode(ctx context.Context, query string) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	location, err := c.geocoder.Geocode(NormalizeQuery(query))
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(providerOpenstreetmap, "error").Inc()
		return nil, err
	}

	if location == nil {
		metrics.GeocodeRequests.WithLabelValues(providerOpenstreetmap, "empty").Inc()
		return nil, ErrNoResults
	}

	metrics.GeocodeRequests.WithLabelValues(providerOpenstreetmap, "hit").Inc()
	return &Location{
		Latitude:  location.Lat,
		Longitude: location.Lng,
		Name:      NormalizeQuery(query),
	}, nil
}

func (c *oc) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return reverseGeocode(c.geocoder, lat, lon)
}

func reverseGeocode(g geo.Geocoder, lat, lon float64) (*Location, error) {
	address, err := g.ReverseGeocode(lat, lon)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(providerOpenstreetmap, "error").Inc()
		return nil, fmt.Errorf("reverse geocode: %w", err)
	}

	if address == nil {
		metrics.GeocodeRequests.WithLabelValues(providerOpenstreetmap, "empty").Inc()
		return nil, ErrNoResults
	}

	metrics.GeocodeRequests.WithLabelValues(providerOpenstreetmap, "hit").Inc()
	return &Location{
		Latitude:    lat,
		Longitude:   lon,
		Name:        addressName(address),
		Country:     address.Country,
		CountryCode: strings.ToUpper(address.CountryCode),
	}, nil
}

func addressName(a *geo.Address) string {
	switch {
	case a.City != "" && a.Country != "":
		return fmt.Sprintf("%s, %s", a.City, a.Country)
	case a.FormattedAddress != "":
		return a.FormattedAddress
	default:
		return a.Country
	}
}
