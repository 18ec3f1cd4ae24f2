package geolib

import (
	"context"

	"golang.org/x/sync/singleflight"
)

type resolveFunc func(context.Context) (GeoResult, error)

// dedupGroup makes sure that only one resolution per IP address is in
// flight. Everyone who comes while it runs attaches to it and gets the
// same outcome, either success or failure.
type dedupGroup struct {
	group singleflight.Group
}

// Do runs fn for a given key unless it is already running. fn gets a
// context which is detached from the cancellation of the caller: if
// the first caller gives up, the rest of attached callers still want
// the result. A caller whose context is done stops waiting and gets
// its context error.
func (d *dedupGroup) Do(ctx context.Context, key string, fn resolveFunc) (GeoResult, bool, error) {
	flightCtx := context.WithoutCancel(ctx)
	resultChan := d.group.DoChan(key, func() (interface{}, error) {
		return fn(flightCtx)
	})

	select {
	case <-ctx.Done():
		return GeoResult{}, false, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return GeoResult{}, res.Shared, res.Err
		}

		return res.Val.(GeoResult), res.Shared, nil
	}
}
