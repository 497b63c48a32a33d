package routing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manzanit0/tourplanner/pkg/apperr"
	"github.com/manzanit0/tourplanner/pkg/routing"
)

func TestProfile(t *testing.T) {
	testCases := []struct {
		transport string
		want      string
	}{
		{transport: "cycling", want: routing.ProfileCycling},
		{transport: "Bike", want: routing.ProfileCycling},
		{transport: "bicycle", want: routing.ProfileCycling},
		{transport: "cycling-regular", want: routing.ProfileCycling},
		{transport: "foot", want: routing.ProfileWalking},
		{transport: "WALKING", want: routing.ProfileWalking},
		{transport: "hiking", want: routing.ProfileWalking},
		{transport: "foot-walking", want: routing.ProfileWalking},
		{transport: "driving-car", want: routing.ProfileDriving},
		{transport: "car", want: routing.ProfileDriving},
		{transport: " auto ", want: routing.ProfileDriving},
	}
	for _, tC := range testCases {
		t.Run(tC.transport, func(t *testing.T) {
			got, err := routing.Profile(tC.transport)
			assert.NoError(t, err)
			assert.Equal(t, tC.want, got)
		})
	}
}

func TestProfileRejectsUnknown(t *testing.T) {
	for _, transport := range []string{"", "plane", "train"} {
		_, err := routing.Profile(transport)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "transport %q", transport)
	}
}

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		desc    string
		seconds int64
		want    string
	}{
		{desc: "zero", seconds: 0, want: "00:00:00"},
		{desc: "minutes and seconds", seconds: 125, want: "00:02:05"},
		{desc: "hours", seconds: 3*3600 + 4*60 + 5, want: "03:04:05"},
		{desc: "more than a day", seconds: 26 * 3600, want: "26:00:00"},
		{desc: "negative clamps", seconds: -5, want: "00:00:00"},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			assert.Equal(t, tC.want, routing.FormatDuration(tC.seconds))
		})
	}
}
