// Package routing computes tour distance and duration through
// OpenRouteService.
package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/metrics"
)

const (
	codeLocationNotFound = 2010
	codeRouteNotFound    = 2003
	codeDistanceTooLong  = 2008
	codeTooManyPoints    = 2009
	codeInvalidProfile   = 2070
)

var errorCodeRx = regexp.MustCompile(`"code"\s*:\s*(\d+)`)

type Route struct {
	Profile string
	// DistanceKm is the route length in kilometres.
	DistanceKm float64
	// Duration is HH:MM:SS.
	Duration string
}

type Client interface {
	RouteInfo(ctx context.Context, start, end, transport string) (*Route, error)
}

type ORSClient struct {
	h       *http.Client
	baseURL string
	apiKey  string
}

var _ Client = (*ORSClient)(nil)

func NewORSClient(h *http.Client, baseURL, apiKey string) *ORSClient {
	return &ORSClient{h: h, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

// RouteInfo geocodes both ends concurrently and asks for directions between
// them with the profile matching transport.
func (c *ORSClient) RouteInfo(ctx context.Context, start, end, transport string) (*Route, error) {
	profile, err := Profile(transport)
	if err != nil {
		metrics.RouteRequests.WithLabelValues("unknown", "invalid").Inc()
		return nil, err
	}

	var from, to [2]float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		from, err = c.geocode(gctx, start)
		return err
	})
	g.Go(func() (err error) {
		to, err = c.geocode(gctx, end)
		return err
	})

	if err := g.Wait(); err != nil {
		metrics.RouteRequests.WithLabelValues(profile, "error").Inc()
		return nil, err
	}

	route, err := c.directions(ctx, profile, from, to, start, end)
	if err != nil {
		metrics.RouteRequests.WithLabelValues(profile, "error").Inc()
		return nil, err
	}

	metrics.RouteRequests.WithLabelValues(profile, "ok").Inc()
	return route, nil
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			// Coordinates are [lon, lat].
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

func (c *ORSClient) geocode(ctx context.Context, address string) ([2]float64, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("text", address)
	params.Set("size", "1")

	endpoint := fmt.Sprintf("%s/geocode/search?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return [2]float64{}, fmt.Errorf("create request: %w", err)
	}

	res, err := c.h.Do(req)
	if err != nil {
		return [2]float64{}, apperr.External("openrouteservice geocode", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return [2]float64{}, apperr.New(apperr.KindExternal, "openrouteservice rate limit exceeded")
	}

	if res.StatusCode != http.StatusOK {
		return [2]float64{}, apperr.New(apperr.KindExternal, fmt.Sprintf("openrouteservice geocode returned %d", res.StatusCode))
	}

	var body geocodeResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return [2]float64{}, apperr.External("decode openrouteservice geocode response", err)
	}

	if len(body.Features) == 0 || len(body.Features[0].Geometry.Coordinates) < 2 {
		return [2]float64{}, apperr.Validation("location not found: %s", address)
	}

	coords := body.Features[0].Geometry.Coordinates
	return [2]float64{coords[0], coords[1]}, nil
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

func (c *ORSClient) directions(ctx context.Context, profile string, from, to [2]float64, start, end string) (*Route, error) {
	payload, err := json.Marshal(directionsRequest{Coordinates: [][2]float64{from, to}})
	if err != nil {
		return nil, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", c.baseURL, profile)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.h.Do(req)
	if err != nil {
		return nil, apperr.External("openrouteservice directions", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, apperr.External("read openrouteservice directions response", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, directionsError(ctx, res.StatusCode, body, start, end)
	}

	var dr directionsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, apperr.External("decode openrouteservice directions response", err)
	}

	if len(dr.Routes) == 0 {
		return nil, routeNotFound(start, end)
	}

	summary := dr.Routes[0].Summary
	return &Route{
		Profile:    profile,
		DistanceKm: summary.Distance / 1000,
		Duration:   FormatDuration(int64(summary.Duration)),
	}, nil
}

func directionsError(ctx context.Context, status int, body []byte, start, end string) error {
	if status == http.StatusTooManyRequests {
		return apperr.New(apperr.KindExternal, "openrouteservice rate limit exceeded")
	}

	if status < 400 || status >= 500 {
		return apperr.New(apperr.KindExternal, fmt.Sprintf("openrouteservice directions returned %d", status))
	}

	code := ErrorCode(body)
	slog.DebugContext(ctx, "directions rejected", "status", status, "code", code)

	switch code {
	case codeLocationNotFound:
		if strings.Contains(string(body), "coordinate 0") {
			return apperr.Validation("location not found: %s", start)
		}
		return apperr.Validation("location not found: %s", end)
	case codeRouteNotFound, codeDistanceTooLong, codeTooManyPoints:
		return routeNotFound(start, end)
	case codeInvalidProfile:
		return apperr.Validation("invalid transport type: profile")
	default:
		return routeNotFound(start, end)
	}
}

func routeNotFound(start, end string) error {
	return apperr.NotFound("no route found from %s to %s", start, end)
}

// ErrorCode extracts error.code from an OpenRouteService error body, or -1.
func ErrorCode(body []byte) int {
	var parsed struct {
		Error struct {
			Code int `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Code != 0 {
		return parsed.Error.Code
	}

	m := errorCodeRx.FindSubmatch(body)
	if m == nil {
		return -1
	}

	code, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return -1
	}

	return code
}
