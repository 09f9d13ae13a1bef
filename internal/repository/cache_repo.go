package repository

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by PageCache.Get when nothing is cached for a URL.
var ErrCacheMiss = errors.New("page not cached")

// PageCache defines the interface for keeping recently fetched page bodies.
type PageCache interface {
	// Get returns the cached body for url or ErrCacheMiss.
	Get(ctx context.Context, url string) (string, error)
	// Put caches body for url with the given expiry.
	Put(ctx context.Context, url, body string, expiry time.Duration) error
	// Evict removes url from the cache, used for forced refetches.
	Evict(ctx context.Context, url string) error
}
