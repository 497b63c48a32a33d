package routing_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/routing"
)

type fakeORS struct {
	coords     map[string][2]float64
	dirStatus  int
	dirBody    string
	gotProfile string
	gotAuth    string
	gotBody    map[string][][]float64
}

func (f *fakeORS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/geocode/search", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("api_key"))
		assert.Equal(t, "1", r.URL.Query().Get("size"))

		c, ok := f.coords[r.URL.Query().Get("text")]
		if !ok {
			_, _ = w.Write([]byte(`{"features": []}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"features": []any{map[string]any{
				"geometry": map[string]any{"coordinates": []float64{c[0], c[1]}},
			}},
		})
	})

	mux.HandleFunc("/v2/directions/", func(w http.ResponseWriter, r *http.Request) {
		f.gotProfile = r.URL.Path[len("/v2/directions/"):]
		f.gotAuth = r.Header.Get("Authorization")

		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &f.gotBody)

		if f.dirStatus != 0 {
			w.WriteHeader(f.dirStatus)
		}
		_, _ = w.Write([]byte(f.dirBody))
	})

	return mux
}

func newClient(t *testing.T, f *fakeORS) *routing.ORSClient {
	t.Helper()

	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	return routing.NewORSClient(srv.Client(), srv.URL, "secret")
}

func places() map[string][2]float64 {
	return map[string][2]float64{
		"Vienna": {16.37, 48.21},
		"Graz":   {15.44, 47.07},
	}
}

func TestRouteInfo(t *testing.T) {
	f := &fakeORS{
		coords:  places(),
		dirBody: `{"routes": [{"summary": {"distance": 191234.5, "duration": 7384.9}}]}`,
	}
	c := newClient(t, f)

	route, err := c.RouteInfo(context.Background(), "Vienna", "Graz", "bike")
	require.NoError(t, err)

	assert.Equal(t, "cycling-regular", route.Profile)
	assert.InDelta(t, 191.2345, route.DistanceKm, 1e-9)
	assert.Equal(t, "02:03:04", route.Duration)

	assert.Equal(t, "cycling-regular", f.gotProfile)
	assert.Equal(t, "secret", f.gotAuth)
	assert.Equal(t, [][]float64{{16.37, 48.21}, {15.44, 47.07}}, f.gotBody["coordinates"])
}

func TestRouteInfoErrors(t *testing.T) {
	testCases := []struct {
		desc      string
		start     string
		end       string
		transport string
		dirStatus int
		dirBody   string
		wantKind  apperr.Kind
		wantMsg   string
	}{
		{
			desc: "unknown transport", start: "Vienna", end: "Graz", transport: "rocket",
			wantKind: apperr.KindValidation, wantMsg: "invalid transport type",
		},
		{
			desc: "start cannot be geocoded", start: "Atlantis", end: "Graz", transport: "car",
			wantKind: apperr.KindValidation, wantMsg: "location not found: Atlantis",
		},
		{
			desc: "start not routable", start: "Vienna", end: "Graz", transport: "car",
			dirStatus: 404, dirBody: `{"error": {"code": 2010, "message": "Could not find routable point within a radius of 350.0 meters of specified coordinate 0"}}`,
			wantKind: apperr.KindValidation, wantMsg: "location not found: Vienna",
		},
		{
			desc: "end not routable", start: "Vienna", end: "Graz", transport: "car",
			dirStatus: 404, dirBody: `{"error": {"code": 2010, "message": "specified coordinate 1"}}`,
			wantKind: apperr.KindValidation, wantMsg: "location not found: Graz",
		},
		{
			desc: "no route", start: "Vienna", end: "Graz", transport: "walking",
			dirStatus: 404, dirBody: `{"error": {"code": 2009}}`,
			wantKind: apperr.KindNotFound, wantMsg: "no route found",
		},
		{
			desc: "route too long", start: "Vienna", end: "Graz", transport: "walking",
			dirStatus: 400, dirBody: `{"error": {"code": 2008}}`,
			wantKind: apperr.KindNotFound, wantMsg: "no route found",
		},
		{
			desc: "profile rejected upstream", start: "Vienna", end: "Graz", transport: "car",
			dirStatus: 400, dirBody: `{"error": {"code": 2070}}`,
			wantKind: apperr.KindValidation, wantMsg: "invalid transport type",
		},
		{
			desc: "other client error", start: "Vienna", end: "Graz", transport: "car",
			dirStatus: 400, dirBody: `not json`,
			wantKind: apperr.KindNotFound, wantMsg: "no route found",
		},
		{
			desc: "rate limited", start: "Vienna", end: "Graz", transport: "car",
			dirStatus: 429, dirBody: `{}`,
			wantKind: apperr.KindExternal, wantMsg: "rate limit",
		},
		{
			desc: "upstream down", start: "Vienna", end: "Graz", transport: "car",
			dirStatus: 502, dirBody: `bad gateway`,
			wantKind: apperr.KindExternal, wantMsg: "returned 502",
		},
		{
			desc: "empty routes", start: "Vienna", end: "Graz", transport: "car",
			dirBody: `{"routes": []}`,
			wantKind: apperr.KindNotFound, wantMsg: "no route found",
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			f := &fakeORS{coords: places(), dirStatus: tC.dirStatus, dirBody: tC.dirBody}
			c := newClient(t, f)

			_, err := c.RouteInfo(context.Background(), tC.start, tC.end, tC.transport)
			require.Error(t, err)
			assert.Equal(t, tC.wantKind, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tC.wantMsg)
		})
	}
}

func TestErrorCode(t *testing.T) {
	testCases := []struct {
		desc string
		body string
		want int
	}{
		{desc: "json body", body: `{"error": {"code": 2003, "message": "x"}}`, want: 2003},
		{desc: "truncated json falls back to regex", body: `{"error": {"code" : 2010, "mess`, want: 2010},
		{desc: "no code", body: `gateway timeout`, want: -1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, routing.ErrorCode([]byte(tC.body)))
		})
	}
}
