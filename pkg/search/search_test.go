package search_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/manzanit0/tourplanner/pkg/geocode"
	"github.com/manzanit0/tourplanner/pkg/mapview"
	"github.com/manzanit0/tourplanner/pkg/search"
)

// fakeNominatim answers every search with body and records the q parameter.
type fakeNominatim struct {
	mu      sync.Mutex
	queries []string
	body    string
	status  int
}

func (f *fakeNominatim) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query().Get("q"))
	f.mu.Unlock()

	status := f.status
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(f.body))
}

func newHandler(t *testing.T, f *fakeNominatim) *search.Handler {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	g := geocode.NewNominatimClient(srv.Client(), srv.URL, geocode.WithRateLimit(rate.Inf, 1))
	return search.NewHandler(g)
}

func attachedMap() *mapview.Map {
	m := mapview.New()
	m.Attach("map")
	return m
}

func TestBlankQueriesAreNoOps(t *testing.T) {
	testCases := []struct {
		desc  string
		query string
	}{
		{desc: "empty", query: ""},
		{desc: "spaces", query: "   "},
		{desc: "tabs and newlines", query: "\t\n \r"},
		{desc: "unicode whitespace", query: "  "},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			f := &fakeNominatim{body: `[{"lat": "48.2", "lon": "16.3"}]`}
			h := newHandler(t, f)
			m := attachedMap()
			before := m.Snapshot()

			res, err := h.Search(context.Background(), m, tC.query)
			require.NoError(t, err)

			assert.Equal(t, search.OutcomeBlank, res.Outcome)
			assert.Empty(t, f.queries)
			assert.Equal(t, before, m.Snapshot())
		})
	}
}

func TestSearchRecentersAndMarks(t *testing.T) {
	f := &fakeNominatim{body: `[{ "lat": "48.2", "lon": "16.3", "display_name": "Wien" }]`}
	h := newHandler(t, f)
	m := attachedMap()

	res, err := h.Search(context.Background(), m, "Vienna")
	require.NoError(t, err)
	assert.True(t, res.Applied())

	s := m.Snapshot()
	assert.Equal(t, mapview.LatLng{Lat: 48.2, Lng: 16.3}, s.View.Center)
	assert.Equal(t, mapview.SearchZoom, s.View.Zoom)
	require.Len(t, s.Markers, 1)
	assert.Equal(t, mapview.LatLng{Lat: 48.2, Lng: 16.3}, s.Markers[0].Position)
	assert.Equal(t, "Wien", s.Markers[0].Label)
}

func TestEmptyResultLeavesMapUnchanged(t *testing.T) {
	f := &fakeNominatim{body: `[]`}
	h := newHandler(t, f)
	m := attachedMap()
	before := m.Snapshot()

	res, err := h.Search(context.Background(), m, "Atlantis")
	require.NoError(t, err)

	assert.Equal(t, search.OutcomeEmpty, res.Outcome)
	assert.Equal(t, before, m.Snapshot())
	assert.Empty(t, m.Snapshot().Markers)
}

func TestFailuresLeaveMapUnchanged(t *testing.T) {
	testCases := []struct {
		desc   string
		status int
		body   string
	}{
		{desc: "upstream error", status: http.StatusBadGateway, body: `oops`},
		{desc: "malformed json", body: `[{"lat": `},
		{desc: "non numeric coordinates", body: `[{"lat": "a", "lon": "b"}]`},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			f := &fakeNominatim{status: tC.status, body: tC.body}
			h := newHandler(t, f)
			m := attachedMap()
			before := m.Snapshot()

			res, err := h.Search(context.Background(), m, "Vienna")
			assert.Error(t, err)
			assert.Equal(t, search.OutcomeError, res.Outcome)
			assert.Equal(t, before, m.Snapshot())
		})
	}
}

func TestSearchTrimsQuery(t *testing.T) {
	f := &fakeNominatim{body: `[]`}
	h := newHandler(t, f)
	m := attachedMap()

	_, _ = h.Search(context.Background(), m, "  Vienna  ")
	_, _ = h.Search(context.Background(), m, "Vienna")

	require.Len(t, f.queries, 2)
	assert.Equal(t, "Vienna", f.queries[0])
	assert.Equal(t, f.queries[0], f.queries[1])
}

func TestSearchBeforeAttachDoesNotCallOut(t *testing.T) {
	f := &fakeNominatim{body: `[{"lat": "48.2", "lon": "16.3"}]`}
	h := newHandler(t, f)

	_, err := h.Search(context.Background(), mapview.New(), "Vienna")
	assert.ErrorIs(t, err, search.ErrMapNotReady)
	assert.Empty(t, f.queries)
}

// blockingGeocoder returns a different place per query and lets the test
// decide the order in which responses come back.
type blockingGeocoder struct {
	started chan string
	gates   map[string]chan struct{}
	locs    map[string]*geocode.Location
}

func (g *blockingGeocoder) Geocode(ctx context.Context, q string) (*geocode.Location, error) {
	g.started <- q

	select {
	case <-g.gates[q]:
		return g.locs[q], nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *blockingGeocoder) ReverseGeocode(context.Context, float64, float64) (*geocode.Location, error) {
	return nil, errors.New("not implemented")
}

func TestLatestIssuedSearchWins(t *testing.T) {
	g := &blockingGeocoder{
		started: make(chan string),
		gates:   map[string]chan struct{}{"Vienna": make(chan struct{}), "Graz": make(chan struct{})},
		locs: map[string]*geocode.Location{
			"Vienna": {Latitude: 48.2, Longitude: 16.3},
			"Graz":   {Latitude: 47.07, Longitude: 15.44},
		},
	}
	h := search.NewHandler(g)
	m := attachedMap()

	viennaDone := make(chan search.Result)
	go func() {
		res, _ := h.Search(context.Background(), m, "Vienna")
		viennaDone <- res
	}()
	require.Equal(t, "Vienna", <-g.started)

	grazDone := make(chan search.Result)
	go func() {
		res, _ := h.Search(context.Background(), m, "Graz")
		grazDone <- res
	}()
	require.Equal(t, "Graz", <-g.started)

	close(g.gates["Graz"])
	graz := <-grazDone
	assert.Equal(t, search.OutcomeApplied, graz.Outcome)

	close(g.gates["Vienna"])
	vienna := <-viennaDone
	assert.Equal(t, search.OutcomeStale, vienna.Outcome)

	s := m.Snapshot()
	assert.Equal(t, mapview.LatLng{Lat: 47.07, Lng: 15.44}, s.View.Center)
	assert.Len(t, s.Markers, 1)
}
