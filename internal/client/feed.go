package client

import (
	"context"

	"sisteminha/internal/cache"
	"sisteminha/internal/filter"
	"sisteminha/internal/model"
)

// Feed composes the order list a screen shows: fetch from the service,
// filter, and fall back to the offline cache when the network fails. Cached
// orders are already canonical and skip normalization.
type Feed struct {
	client *Client
	cache  *cache.Store
	latest Latest
}

func NewFeed(c *Client, cs *cache.Store) *Feed {
	return &Feed{client: c, cache: cs}
}

// Result is one refresh outcome. LocalOnly marks data served from the
// offline cache; Err then carries the transport failure that caused the
// fallback, reported once alongside the stale data.
type Result struct {
	Kits      []model.Kit
	LocalOnly bool
	Err       error
}

// Refresh fetches and filters the order list. A newer Refresh supersedes
// this one, in which case (nil, false) is returned and the caller keeps
// whatever it is showing. Transport failure falls back to the cache instead
// of failing the screen.
func (f *Feed) Refresh(ctx context.Context, spec filter.Spec) (*Result, bool) {
	var res Result
	latest, err := f.latest.Do(ctx, func(ctx context.Context) error {
		kits, err := f.client.ListKits(ctx)
		if err != nil {
			return err
		}
		res.Kits = filter.Apply(kits, spec)
		return nil
	})
	if !latest {
		return nil, false
	}
	if err != nil {
		res.Err = err
		res.LocalOnly = true
		if f.cache != nil {
			res.Kits = filter.Apply(f.cache.Load(), spec)
		} else {
			res.Kits = []model.Kit{}
		}
	}
	return &res, true
}

// Submit sends a new order and mirrors it into the offline cache so the
// list keeps showing it if the network goes away afterwards. A transport
// failure stores the order locally with a locally-assigned number instead.
func (f *Feed) Submit(ctx context.Context, k model.Kit) (*model.Kit, bool, error) {
	created, err := f.client.CreateKit(ctx, k)
	if err == nil {
		if f.cache != nil {
			f.cache.Append(*created)
		}
		return created, false, nil
	}
	if _, ok := err.(*APIError); ok {
		// The service rejected the order; do not stash rejects locally.
		return nil, false, err
	}
	if f.cache == nil {
		return nil, false, err
	}
	local, cacheErr := f.cache.Append(k)
	if cacheErr != nil {
		return nil, false, err
	}
	return &local, true, err
}

// Stop cancels any refresh in flight.
func (f *Feed) Stop() {
	f.latest.Stop()
}
