// Package search implements the map widget search: geocode a free-text place
// name and move the map there.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/manzanit0/tourplanner/pkg/geocode"
	"github.com/manzanit0/tourplanner/pkg/mapview"
	"github.com/manzanit0/tourplanner/pkg/metrics"
)

var ErrMapNotReady = errors.New("map is not attached yet")

type Outcome string

const (
	// OutcomeBlank means the query was empty after trimming.
	OutcomeBlank   Outcome = "blank"
	OutcomeApplied Outcome = "applied"
	// OutcomeEmpty means the geocoder found nothing.
	OutcomeEmpty Outcome = "empty"
	// OutcomeStale means a newer search on the same map was started while
	// this one was in flight.
	OutcomeStale Outcome = "stale"
	OutcomeError Outcome = "error"
)

type Result struct {
	Query    string            `json:"query"`
	Outcome  Outcome           `json:"outcome"`
	Location *geocode.Location `json:"location,omitempty"`
}

func (r Result) Applied() bool {
	return r.Outcome == OutcomeApplied
}

type Handler struct {
	geocoder geocode.Client
}

func NewHandler(g geocode.Client) *Handler {
	return &Handler{geocoder: g}
}

// Search geocodes query and, when there is a result, recenters m on it and
// drops a marker there. Blank queries return without a network call. Failed
// lookups leave the map untouched; the error is returned for logging only.
func (h *Handler) Search(ctx context.Context, m *mapview.Map, query string) (Result, error) {
	q := geocode.NormalizeQuery(query)
	if q == "" {
		metrics.Searches.WithLabelValues(string(OutcomeBlank)).Inc()
		return Result{Outcome: OutcomeBlank}, nil
	}

	res := Result{Query: q}

	if !m.Ready() {
		metrics.Searches.WithLabelValues(string(OutcomeError)).Inc()
		res.Outcome = OutcomeError
		return res, ErrMapNotReady
	}

	ticket := m.BeginSearch()

	loc, err := h.geocoder.Geocode(ctx, q)
	if errors.Is(err, geocode.ErrNoResults) {
		metrics.Searches.WithLabelValues(string(OutcomeEmpty)).Inc()
		res.Outcome = OutcomeEmpty
		return res, nil
	}

	if err != nil {
		metrics.Searches.WithLabelValues(string(OutcomeError)).Inc()
		res.Outcome = OutcomeError
		return res, fmt.Errorf("geocode %q: %w", q, err)
	}

	res.Location = loc

	applied, err := m.ApplySearch(ticket, mapview.Marker{
		Position: mapview.LatLng{Lat: loc.Latitude, Lng: loc.Longitude},
		Label:    loc.Name,
	})
	if err != nil {
		metrics.Searches.WithLabelValues(string(OutcomeError)).Inc()
		res.Outcome = OutcomeError
		return res, fmt.Errorf("apply search result: %w", err)
	}

	if !applied {
		metrics.Searches.WithLabelValues(string(OutcomeStale)).Inc()
		res.Outcome = OutcomeStale
		return res, nil
	}

	metrics.Searches.WithLabelValues(string(OutcomeApplied)).Inc()
	res.Outcome = OutcomeApplied
	return res, nil
}
