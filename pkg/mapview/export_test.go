package mapview

import "time"

// SetClock swaps the registry clock.
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}
