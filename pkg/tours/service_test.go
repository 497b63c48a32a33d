package tours_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/routing"
	"github.com/manzanit0/tourplanner/pkg/tours"
)

type fakeRouter struct {
	calls int
	err   error
}

func (f *fakeRouter) RouteInfo(_ context.Context, start, end, transport string) (*routing.Route, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	profile, err := routing.Profile(transport)
	if err != nil {
		return nil, err
	}

	return &routing.Route{Profile: profile, DistanceKm: 80.5, Duration: "01:02:03"}, nil
}

func danube() tours.TourInput {
	return tours.TourInput{
		Name:          "Danube",
		Description:   "along the river",
		StartLocation: "Vienna",
		EndLocation:   "Krems",
		TransportType: "bike",
	}
}

func TestCreateTourComputesRoute(t *testing.T) {
	svc := tours.NewService(tours.NewMemoryRepository(), &fakeRouter{})

	created, err := svc.Create(context.Background(), danube())
	require.NoError(t, err)

	assert.NotZero(t, created.ID)
	assert.Equal(t, 80.5, created.Distance)
	assert.Equal(t, "01:02:03", created.EstimatedTime)
	assert.Equal(t, 0, created.Popularity)
	assert.Nil(t, created.ChildFriendliness)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestCreateTourFailures(t *testing.T) {
	testCases := []struct {
		desc     string
		in       tours.TourInput
		router   *fakeRouter
		wantKind apperr.Kind
		wantCall bool
	}{
		{
			desc:     "missing name",
			in:       tours.TourInput{StartLocation: "Vienna", EndLocation: "Krems", TransportType: "bike"},
			router:   &fakeRouter{},
			wantKind: apperr.KindValidation,
		},
		{
			desc:     "unknown transport",
			in:       tours.TourInput{Name: "x", StartLocation: "Vienna", EndLocation: "Krems", TransportType: "zeppelin"},
			router:   &fakeRouter{},
			wantKind: apperr.KindValidation,
			wantCall: true,
		},
		{
			desc:     "router unavailable",
			in:       danube(),
			router:   &fakeRouter{err: apperr.New(apperr.KindExternal, "down")},
			wantKind: apperr.KindExternal,
			wantCall: true,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			repo := tours.NewMemoryRepository()
			svc := tours.NewService(repo, tC.router)

			_, err := svc.Create(context.Background(), tC.in)
			assert.Equal(t, tC.wantKind, apperr.KindOf(err))
			assert.Equal(t, tC.wantCall, tC.router.calls > 0)

			all, err := svc.List(context.Background())
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestUpdateTour(t *testing.T) {
	repo := tours.NewMemoryRepository()
	router := &fakeRouter{}
	svc := tours.NewService(repo, router)
	logs := tours.NewLogService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, danube())
	require.NoError(t, err)

	_, err = logs.Create(ctx, created.ID, validLog())
	require.NoError(t, err)

	in := danube()
	in.EndLocation = "Melk"
	in.TransportType = "car"

	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Melk", updated.EndLocation)
	assert.Equal(t, 2, router.calls)
	assert.Equal(t, 4, updated.Popularity, "aggregates survive an update")
	assert.NotNil(t, updated.ChildFriendliness)
}

func TestUpdateMissingTour(t *testing.T) {
	router := &fakeRouter{}
	svc := tours.NewService(tours.NewMemoryRepository(), router)

	_, err := svc.Update(context.Background(), 42, danube())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, router.calls)
}

func TestDeleteTourIsIdempotent(t *testing.T) {
	repo := tours.NewMemoryRepository()
	svc := tours.NewService(repo, &fakeRouter{})
	ctx := context.Background()

	created, err := svc.Create(ctx, danube())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
