package mongo

import (
	"context"
	"time"

	"kbmetrics/internal/cache"
	imetrics "kbmetrics/internal/metrics"
)

// Cached report methods
const (
	methodStaffUsernames  = "ListStaffUsernames"
	methodWsOwners        = "ListWsOwners"
	methodNarrativeOwners = "ListNarrativeOwners"
	methodWsNarratives    = "ListWsNarratives"
	methodUserObjects     = "ListUserObjectsFromWsObjs"
	methodWsFirstAccess   = "ListWsFirstAccess"
	methodExecTasks       = "ListExecTasks"
	methodUJSResults      = "ListUJSResults"
)

const oneDay = 24 * time.Hour

var cachePolicies = map[string]cache.Policy{
	methodStaffUsernames:  {Limit: 128, TTL: oneDay},
	methodWsOwners:        {Limit: 1024},
	methodNarrativeOwners: {Limit: 1024},
	methodWsNarratives:    {Limit: 128, TTL: oneDay},
	methodUserObjects:     {Limit: 128, TTL: oneDay},
	methodWsFirstAccess:   {Limit: 128, TTL: oneDay},
	methodExecTasks:       {Limit: 128, TTL: oneDay},
	methodUJSResults:      {Limit: 128, TTL: oneDay},
}

// cached serves method(args) from the cache, loading and storing it on a
// miss. Concurrent misses for the same key share one load, which is not
// cancelled with the caller that started it. Cache failures are logged and
// fall through to the store.
func cached[T any](ctx context.Context, r *MetricsRepository, method string, args []any, load func(context.Context) (T, error)) (T, error) {
	key, err := cache.NewKey(method, args...)
	if err != nil {
		r.log.Warnw("Cache key unavailable, querying store", "method", method, "error", err)
		return load(ctx)
	}

	var out T
	hit, err := r.cache.Get(ctx, key, &out)
	switch {
	case err != nil:
		imetrics.RecordCacheLookup(method, "error")
		r.log.Warnw("Cache lookup failed, querying store", "method", method, "error", err)
	case hit:
		imetrics.RecordCacheLookup(method, "hit")
		return out, nil
	default:
		imetrics.RecordCacheLookup(method, "miss")
	}

	// The shared load is detached from the caller that starts it. Each waiter
	// stops on its own context.
	loadCtx := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key.String(), func() (any, error) {
		fresh, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if err := r.cache.Put(loadCtx, key, fresh, cachePolicies[method]); err != nil {
			r.log.Warnw("Cache store failed", "method", method, "error", err)
		}
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
