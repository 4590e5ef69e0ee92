package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LRU keeps up to size entries in memory, each for ttl.
// Use it if no redis is configured, e.g. for local development.
type LRU struct {
	lru *expirable.LRU[string, []byte]
}

func NewLRU(size int, ttl time.Duration) *LRU {
	return &LRU{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (l *LRU) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := l.lru.Get(key)

	return v, ok, nil
}

func (l *LRU) Set(_ context.Context, key string, value []byte) error {
	l.lru.Add(key, value)

	return nil
}

func (l *LRU) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		l.lru.Remove(k)
	}

	return nil
}
