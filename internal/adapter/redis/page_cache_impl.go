package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/user/memorial-extractor/internal/repository"
	"github.com/user/memorial-extractor/pkg/utils"
)

const pageKeyPrefix = "memorial:page:"

// PageCacheImpl provides a concrete implementation for the PageCache interface using Redis.
type PageCacheImpl struct {
	client redis.Cmdable
}

// NewPageCache creates a new instance of PageCacheImpl.
func NewPageCache(client redis.Cmdable) *PageCacheImpl {
	return &PageCacheImpl{client: client}
}

var _ repository.PageCache = (*PageCacheImpl)(nil)

// pageKey creates a consistent Redis key for a given URL by hashing it.
func pageKey(url string) string {
	return fmt.Sprintf("%s%s", pageKeyPrefix, utils.HashURL(url))
}

// Get returns the cached body of url or repository.ErrCacheMiss.
func (r *PageCacheImpl) Get(ctx context.Context, url string) (string, error) {
	body, err := r.client.Get(ctx, pageKey(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrCacheMiss
	}
	return body, err
}

// Put stores the body of url with an expiry. A zero expiry keeps it until evicted.
func (r *PageCacheImpl) Put(ctx context.Context, url, body string, expiry time.Duration) error {
	return r.client.Set(ctx, pageKey(url), body, expiry).Err()
}

// Evict removes the cached body of url.
func (r *PageCacheImpl) Evict(ctx context.Context, url string) error {
	return r.client.Del(ctx, pageKey(url)).Err()
}
