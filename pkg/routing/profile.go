package routing

import (
	"fmt"
	"strings"

	"github.com/manzanit0/tourplanner/pkg/apperr"
)

const (
	ProfileCycling = "cycling-regular"
	ProfileWalking = "foot-walking"
	ProfileDriving = "driving-car"
)

// Profile maps the free-form transport types users type into tours to the
// OpenRouteService profile names.
func Profile(transport string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transport)) {
	case "cycling", "bike", "bicycle", "cycling-regular":
		return ProfileCycling, nil
	case "foot", "walking", "hiking", "foot-walking":
		return ProfileWalking, nil
	case "driving-car", "car", "auto":
		return ProfileDriving, nil
	default:
		return "", apperr.Validation("invalid transport type: %q", transport)
	}
}

// FormatDuration renders seconds as HH:MM:SS. Hours are not capped at 24.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
