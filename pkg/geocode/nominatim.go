package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/manzanit0/tourplanner/pkg/metrics"
)

const providerNominatim = "nominatim"

// NominatimOption tweaks the Nominatim client.
type NominatimOption func(*NominatimClient)

// WithRateLimit overrides the outbound rate limit. The public instance allows
// one request per second.
func WithRateLimit(limit rate.Limit, burst int) NominatimOption {
	return func(c *NominatimClient) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

func WithUserAgent(ua string) NominatimOption {
	return func(c *NominatimClient) {
		c.userAgent = ua
	}
}

// NominatimClient talks to the Nominatim search and reverse APIs.
type NominatimClient struct {
	h         *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

var _ Client = (*NominatimClient)(nil)

func NewNominatimClient(h *http.Client, baseURL string, opts ...NominatimOption) *NominatimClient {
	baseURL = strings.TrimRight(baseURL, "/")

	c := &NominatimClient{
		h:         h,
		baseURL:   baseURL,
		userAgent: "tourplanner/1.0",
		limiter:   rate.NewLimiter(rate.Limit(1), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SearchURL builds the search request for query, asking for a single result.
func (c *NominatimClient) SearchURL(query string) string {
	params := url.Values{}
	params.Set("q", NormalizeQuery(query))
	params.Set("format", "json")
	params.Set("limit", "1")

	return fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())
}

// ReverseURL builds the reverse lookup request for a point.
func (c *NominatimClient) ReverseURL(lat, lon float64) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")

	return fmt.Sprintf("%s/reverse?%s", c.baseURL, params.Encode())
}

func (c *NominatimClient) Geocode(ctx context.Context, query string) (*Location, error) {
	var results []nominatimResult
	if err := c.get(ctx, c.SearchURL(query), &results); err != nil {
		return nil, err
	}

	if len(results) == 0 {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "empty").Inc()
		return nil, ErrNoResults
	}

	location, err := results[0].Map()
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "error").Inc()
		return nil, err
	}

	metrics.GeocodeRequests.WithLabelValues(providerNominatim, "hit").Inc()
	return location, nil
}

// ReverseGeocode answers ErrNoResults when Nominatim has no address at the
// point, which it reports as {"error": "Unable to geocode"}.
func (c *NominatimClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	var result nominatimReverseResult
	if err := c.get(ctx, c.ReverseURL(lat, lon), &result); err != nil {
		return nil, err
	}

	if result.Error != "" || result.Lat == "" {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "empty").Inc()
		return nil, ErrNoResults
	}

	location, err := result.Map()
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "error").Inc()
		return nil, err
	}

	location.Country = result.Address.Country
	location.CountryCode = strings.ToUpper(result.Address.CountryCode)

	metrics.GeocodeRequests.WithLabelValues(providerNominatim, "hit").Inc()
	return location, nil
}

// get waits for the rate limiter and decodes the JSON answer into v.
func (c *NominatimClient) get(ctx context.Context, endpoint string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.h.Do(req)
	if err != nil {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "error").Inc()
		return fmt.Errorf("nominatim request: %w", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "error").Inc()
		return fmt.Errorf("nominatim returned status %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		metrics.GeocodeRequests.WithLabelValues(providerNominatim, "error").Inc()
		return fmt.Errorf("decode nominatim response: %w", err)
	}

	return nil
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatimReverseResult struct {
	nominatimResult
	Error   string `json:"error"`
	Address struct {
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
}

func (r nominatimResult) Map() (*Location, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q: %w", r.Lat, err)
	}

	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q: %w", r.Lon, err)
	}

	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return nil, fmt.Errorf("coordinates out of range: %f, %f", lat, lon)
	}

	return &Location{Latitude: lat, Longitude: lon, Name: r.DisplayName}, nil
}
