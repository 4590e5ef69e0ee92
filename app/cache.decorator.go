package app

import (
	"context"
	"encoding/json"
)

// Cache stores serialised query responses.
// Implementations are in the package cache.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// NewCachedQuery returns the response of query from cache, if present.
// Otherwise, the query is executed and its response is cached as JSON.
// A failing cache never fails the query, it is as if nothing was cached.
//
// A query that read before a change was committed can still store its old response after
// the change invalidated the key. That response is served until the entry expires with the TTL
// of the cache, so keep the TTL short for data that must not be stale.
func NewCachedQuery[Q any, Res any](cache Cache, key func(Q) string, query Query[Q, Res]) Query[Q, Res] {
	return &queryCachingDecorator[Q, Res]{
		cache: cache,
		key:   key,
		base:  query,
	}
}

type queryCachingDecorator[Q any, Res any] struct {
	cache Cache
	key   func(Q) string
	base  Query[Q, Res]
}

func (d *queryCachingDecorator[Q, Res]) H(ctx context.Context, query Q) (Res, error) { //nolint:ireturn,lll // valid use of generics
	key := d.key(query)

	if data, found, err := d.cache.Get(ctx, key); err == nil && found {
		var res Res
		if err := json.Unmarshal(data, &res); err == nil {
			return res, nil
		}
	}

	res, err := d.base.H(ctx, query)
	if err != nil {
		return res, err //nolint:wrapcheck // decorate but not change anything
	}

	if data, err := json.Marshal(res); err == nil {
		_ = d.cache.Set(ctx, key, data)
	}

	return res, nil
}

// NewCacheInvalidatingCommand deletes the given keys after cmd succeeded.
// Failing to delete is not reported, as the change is already committed. Entries expire with their TTL.
func NewCacheInvalidatingCommand[C any](cache Cache, keys func(C) []string, cmd Command[C]) Command[C] {
	return &commandCacheInvalidatingDecorator[C]{
		cache: cache,
		keys:  keys,
		base:  cmd,
	}
}

type commandCacheInvalidatingDecorator[C any] struct {
	cache Cache
	keys  func(C) []string
	base  Command[C]
}

func (d *commandCacheInvalidatingDecorator[C]) H(ctx context.Context, cmd C) error {
	if err := d.base.H(ctx, cmd); err != nil {
		return err //nolint:wrapcheck // decorate but not change anything
	}

	_ = d.cache.Delete(context.WithoutCancel(ctx), d.keys(cmd)...)

	return nil
}

func NewCacheInvalidatingRequest[Req any, Res any](cache Cache, keys func(Req) []string, req Request[Req, Res]) Request[Req, Res] {
	return &requestCacheInvalidatingDecorator[Req, Res]{
		cache: cache,
		keys:  keys,
		base:  req,
	}
}

type requestCacheInvalidatingDecorator[Req any, Res any] struct {
	cache Cache
	keys  func(Req) []string
	base  Request[Req, Res]
}

func (d *requestCacheInvalidatingDecorator[Req, Res]) H(ctx context.Context, req Req) (Res, error) { //nolint:ireturn,lll // valid use of generics
	res, err := d.base.H(ctx, req)
	if err != nil {
		return res, err //nolint:wrapcheck // decorate but not change anything
	}

	_ = d.cache.Delete(context.WithoutCancel(ctx), d.keys(req)...)

	return res, nil
}
