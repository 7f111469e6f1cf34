// Package coalesce implements in-process request coalescing for cache-miss
// stampede prevention: when multiple concurrent callers miss the cache for
// the same key, only one fetch runs and every caller shares its result.
package coalesce

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/claremont-dine/menu-api/internal/menu"
	"github.com/claremont-dine/menu-api/internal/pkg/metrics"
)

// Timeout bounds a single coalesced fetch; exceeding it surfaces a
// *menu.TimeoutError to every waiter rather than leaving them blocked
// indefinitely on a stuck upstream call.
const Timeout = 30 * time.Second

// Group deduplicates concurrent Fetch calls sharing a key, backed by
// golang.org/x/sync/singleflight.
type Group struct {
	g singleflight.Group
}

// New builds an empty coalescing Group.
func New() *Group {
	return &Group{}
}

// Fetch runs fn once per key among concurrently-overlapping callers; every
// caller waiting on the same key receives the same (value, error). fn is
// given a context that is cancelled if Timeout elapses before it returns.
func (g *Group) Fetch(ctx context.Context, key string, fn func(ctx context.Context) (any, error)) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	v, err, shared := g.g.Do(key, func() (any, error) {
		type result struct {
			v   any
			err error
		}
		done := make(chan result, 1)
		go func() {
			v, err := fn(ctx)
			done <- result{v, err}
		}()

		select {
		case r := <-done:
			if r.err != nil && ctx.Err() != nil {
				return nil, &menu.TimeoutError{Key: key}
			}
			return r.v, r.err
		case <-ctx.Done():
			return nil, &menu.TimeoutError{Key: key}
		}
	})
	if shared {
		metrics.CoalesceJoinsTotal.Inc()
	}
	return v, err
}
