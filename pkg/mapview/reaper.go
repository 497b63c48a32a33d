package mapview

import (
	"context"
	"log/slog"
	"time"
)

// Reaper periodically closes map sessions whose widget went away without
// deleting them.
type Reaper struct {
	r       *Registry
	every   time.Duration
	maxIdle time.Duration
}

func NewReaper(r *Registry, every, maxIdle time.Duration) *Reaper {
	return &Reaper{r: r, every: every, maxIdle: maxIdle}
}

// Run blocks until ctx is cancelled.
func (p *Reaper) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := p.r.Sweep(p.maxIdle); n > 0 {
				slog.InfoContext(ctx, "closed idle map sessions", "count", n, "remaining", p.r.Len())
			}
		}
	}
}
