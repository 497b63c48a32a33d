package tours_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/tours"
)

func setup(t *testing.T) (*tours.Service, *tours.LogService, *tours.Tour) {
	t.Helper()

	repo := tours.NewMemoryRepository()
	svc := tours.NewService(repo, &fakeRouter{})

	tour, err := svc.Create(context.Background(), danube())
	require.NoError(t, err)

	return svc, tours.NewLogService(repo), tour
}

func TestCreateLogRecomputesAggregates(t *testing.T) {
	svc, logs, tour := setup(t)
	ctx := context.Background()

	l, err := logs.Create(ctx, tour.ID, validLog())
	require.NoError(t, err)

	assert.Equal(t, tour.ID, l.TourID)
	assert.Equal(t, "2025-05-31T14:20:00", l.LogTime.String())
	assert.Equal(t, "windy", l.Comment)

	got, err := svc.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Popularity)
	require.NotNil(t, got.ChildFriendliness)
	// difficulty 3 → 3, 12.5 km → 3.8, 2.25 h → 4.286
	assert.InDelta(t, 3.7, *got.ChildFriendliness, 1e-9)
}

func TestCreateLogAcceptsTimesWithoutSeconds(t *testing.T) {
	_, logs, tour := setup(t)

	in := validLog()
	in.LogTime = ptr("2025-05-31T14:20")
	in.TotalTime = ptr("01:30")

	l, err := logs.Create(context.Background(), tour.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "2025-05-31T14:20:00", l.LogTime.String())
	assert.Equal(t, "01:30:00", l.TotalTime)
}

func TestCreateLogForMissingTour(t *testing.T) {
	_, logs, _ := setup(t)

	_, err := logs.Create(context.Background(), 999, validLog())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateInvalidLogDoesNotStore(t *testing.T) {
	_, logs, tour := setup(t)
	ctx := context.Background()

	in := validLog()
	in.Rating = ptr(7)

	_, err := logs.Create(ctx, tour.ID, in)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	all, err := logs.List(ctx, tour.ID)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestUpdateLogAppliesPresentFields(t *testing.T) {
	svc, logs, tour := setup(t)
	ctx := context.Background()

	l, err := logs.Create(ctx, tour.ID, validLog())
	require.NoError(t, err)

	updated, err := logs.Update(ctx, tour.ID, l.ID, tours.LogInput{Rating: ptr(2)})
	require.NoError(t, err)

	assert.Equal(t, 2, updated.Rating)
	assert.Equal(t, "windy", updated.Comment)
	assert.Equal(t, 3, updated.Difficulty)

	got, err := svc.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Popularity)
}

func TestLogsAreScopedToTheirTour(t *testing.T) {
	svc, logs, tour := setup(t)
	ctx := context.Background()

	other, err := svc.Create(ctx, danube())
	require.NoError(t, err)

	l, err := logs.Create(ctx, tour.ID, validLog())
	require.NoError(t, err)

	_, err = logs.Get(ctx, other.ID, l.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = logs.Update(ctx, other.ID, l.ID, tours.LogInput{Rating: ptr(1)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = logs.Delete(ctx, other.ID, l.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteLastLogResetsAggregates(t *testing.T) {
	svc, logs, tour := setup(t)
	ctx := context.Background()

	l, err := logs.Create(ctx, tour.ID, validLog())
	require.NoError(t, err)

	require.NoError(t, logs.Delete(ctx, tour.ID, l.ID))

	got, err := svc.Get(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Popularity)
	assert.Nil(t, got.ChildFriendliness)
}

func TestListLogsOfMissingTour(t *testing.T) {
	_, logs, _ := setup(t)

	_, err := logs.List(context.Background(), 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
