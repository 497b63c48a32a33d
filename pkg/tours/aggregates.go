package tours

import "math"

const (
	bestDistanceKm  = 5
	worstDistanceKm = 30
	bestHours       = 1
	worstHours      = 8
)

// Aggregates derives a tour's popularity and child-friendliness from its
// logs. Popularity is the log count times the mean rating. Child-friendliness
// averages three 1..5 scores (difficulty, distance, duration) and is nil
// without logs.
func Aggregates(logs []TourLog) (int, *float64) {
	if len(logs) == 0 {
		return 0, nil
	}

	var ratings, difficulty, km, seconds float64
	for _, l := range logs {
		ratings += float64(l.Rating)
		difficulty += float64(l.Difficulty)
		km += l.TotalDistance
		seconds += float64(TotalSeconds(l.TotalTime))
	}

	n := float64(len(logs))
	popularity := int(math.Round(n * (ratings / n)))

	diffScore := 6 - difficulty/n
	distScore := scale(km/n, bestDistanceKm, worstDistanceKm)
	timeScore := scale(seconds/n/3600, bestHours, worstHours)

	child := math.Round((diffScore+distScore+timeScore)/3*10) / 10
	return popularity, &child
}

// scale maps value to 5 at or below best, 1 at or above worst, linearly in
// between.
func scale(value, best, worst float64) float64 {
	if value <= best {
		return 5
	}

	if value >= worst {
		return 1
	}

	return 5 - (value-best)/(worst-best)*4
}

// TotalSeconds parses an HH:MM[:SS] duration, returning 0 when malformed.
func TotalSeconds(hhmmss string) int {
	t, err := parseAny(totalTimeLayouts, hhmmss)
	if err != nil {
		return 0
	}

	h, m, s := t.Clock()
	return h*3600 + m*60 + s
}
