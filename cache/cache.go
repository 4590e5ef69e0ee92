// Package cache stores serialised query responses, either in redis or in memory.
package cache

import (
	"errors"

	"github.com/go-arrower/bizadmin/app"
)

var ErrCache = errors.New("cache failed")

var (
	_ app.Cache = (*Redis)(nil)
	_ app.Cache = (*LRU)(nil)
)
