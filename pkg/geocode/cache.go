package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/manzanit0/tourplanner/pkg/metrics"
)

// Store is the byte cache behind CachedClient.
type Store interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// sharedLookupTimeout bounds an upstream lookup shared by several callers.
const sharedLookupTimeout = 30 * time.Second

// CachedClient memoizes forward lookups, including empty answers, and
// collapses concurrent lookups of the same query into one upstream call.
// Reverse lookups go straight through.
type CachedClient struct {
	next  Client
	store Store
	ttl   time.Duration
	group singleflight.Group
}

var _ Client = (*CachedClient)(nil)

func NewCachedClient(next Client, store Store, ttl time.Duration) *CachedClient {
	return &CachedClient{next: next, store: store, ttl: ttl}
}

type cacheEntry struct {
	Location *Location `json:"location"`
}

func cacheKey(query string) string {
	return "geocode:" + strings.ToLower(NormalizeQuery(query))
}

func (c *CachedClient) Geocode(ctx context.Context, query string) (*Location, error) {
	key := cacheKey(query)

	if loc, ok := c.lookup(ctx, key); ok {
		metrics.GeocodeCache.WithLabelValues("hit").Inc()
		if loc == nil {
			return nil, ErrNoResults
		}
		return loc, nil
	}

	metrics.GeocodeCache.WithLabelValues("miss").Inc()

	ch := c.group.DoChan(key, func() (any, error) {
		// The call is shared, so it must not die with whichever caller
		// happened to start it.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()

		loc, err := c.next.Geocode(sctx, query)
		if err != nil && !errors.Is(err, ErrNoResults) {
			return nil, err
		}

		c.save(sctx, key, loc)
		return loc, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		return nil, res.Err
	}

	loc, _ := res.Val.(*Location)
	if loc == nil {
		return nil, ErrNoResults
	}

	// Callers may mutate what they get back.
	cp := *loc
	return &cp, nil
}

func (c *CachedClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*Location, error) {
	return c.next.ReverseGeocode(ctx, lat, lon)
}

// lookup treats a broken cache as a miss.
func (c *CachedClient) lookup(ctx context.Context, key string) (*Location, bool) {
	b, ok, err := c.store.Get(ctx, key)
	if err != nil {
		slog.WarnContext(ctx, "geocode cache get", "error", err.Error(), "key", key)
		return nil, false
	}

	if !ok {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal(b, &entry); err != nil {
		slog.WarnContext(ctx, "geocode cache entry is corrupt", "error", err.Error(), "key", key)
		return nil, false
	}

	return entry.Location, true
}

func (c *CachedClient) save(ctx context.Context, key string, loc *Location) {
	b, err := json.Marshal(cacheEntry{Location: loc})
	if err != nil {
		slog.WarnContext(ctx, "geocode cache marshal", "error", err.Error())
		return
	}

	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		slog.WarnContext(ctx, "geocode cache set", "error", fmt.Errorf("key %s: %w", key, err).Error())
	}
}
